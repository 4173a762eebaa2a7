package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sariva/clinic/internal/platform/apperr"
)

// -- Mock Repository --

type mockRepo struct {
	mu    sync.Mutex
	store map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.Email == u.Email {
			return apperr.Conflict("User already exists")
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (m *mockRepo) DeactivateByDoctor(_ context.Context, doctorID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.store {
		if u.DoctorID != nil && *u.DoctorID == doctorID {
			u.IsActive = false
		}
	}
	return nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo)
	svc.cost = bcrypt.MinCost
	return svc, repo
}

func TestService_Register_DefaultsToStaff(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.Register(context.Background(), RegisterInput{Name: "Reception", Email: " Desk@Clinic.in ", Password: "secret1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != "staff" {
		t.Errorf("expected staff role, got %s", u.Role)
	}
	if u.Email != "desk@clinic.in" {
		t.Errorf("expected normalized email, got %s", u.Email)
	}
	if u.PasswordHash == "secret1" || u.PasswordHash == "" {
		t.Error("expected password to be hashed")
	}
	if !u.IsActive {
		t.Error("expected new user to be active")
	}
}

func TestService_Register_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"missing name", RegisterInput{Email: "a@b.in", Password: "secret1"}, "Please add a name"},
		{"missing email", RegisterInput{Name: "A", Password: "secret1"}, "Please add an email"},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"}, "Please add a valid email"},
		{"short password", RegisterInput{Name: "A", Email: "a@b.in", Password: "123"}, "Password must be at least 6 characters"},
		{"bad role", RegisterInput{Name: "A", Email: "a@b.in", Password: "secret1", Role: "nurse"}, "Invalid role: nurse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService()
			_, err := svc.Register(context.Background(), tt.in)
			if !apperr.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if apperr.Message(err) != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, apperr.Message(err))
			}
		})
	}
}

func TestService_Register_Duplicate(t *testing.T) {
	svc, _ := newTestService()
	in := RegisterInput{Name: "A", Email: "a@b.in", Password: "secret1"}
	svc.Register(context.Background(), in)

	_, err := svc.Register(context.Background(), in)
	if !apperr.IsConflict(err) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService()
	svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.in", Password: "secret1"})

	u, err := svc.Login(context.Background(), LoginInput{Email: "A@B.in", Password: "secret1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "a@b.in" {
		t.Errorf("unexpected user %s", u.Email)
	}
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	svc, repo := newTestService()
	u, _ := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.in", Password: "secret1"})

	cases := map[string]LoginInput{
		"unknown email":  {Email: "x@b.in", Password: "secret1"},
		"wrong password": {Email: "a@b.in", Password: "secret2"},
	}
	for name, in := range cases {
		_, err := svc.Login(context.Background(), in)
		if apperr.KindOf(err) != apperr.KindUnauthorized || apperr.Message(err) != "Invalid credentials" {
			t.Errorf("%s: expected invalid credentials, got %v", name, err)
		}
	}

	repo.store[u.ID].IsActive = false
	_, err := svc.Login(context.Background(), LoginInput{Email: "a@b.in", Password: "secret1"})
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("inactive: expected unauthorized, got %v", err)
	}
}

func TestService_CreateLinkedUser(t *testing.T) {
	svc, repo := newTestService()
	doctorID := uuid.New()

	if err := svc.CreateLinkedUser(context.Background(), "Dr. Rao", "Rao@Clinic.in", "secret1", doctorID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, err := repo.GetByEmail(context.Background(), "rao@clinic.in")
	if err != nil {
		t.Fatalf("expected linked user: %v", err)
	}
	if u.Role != "doctor" || u.DoctorID == nil || *u.DoctorID != doctorID {
		t.Errorf("unexpected linked user %+v", u)
	}

	// A second call with the same email is a no-op.
	if err := svc.CreateLinkedUser(context.Background(), "Dr. Rao", "rao@clinic.in", "secret1", uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.store) != 1 {
		t.Errorf("expected 1 user, got %d", len(repo.store))
	}
}

func TestService_DeactivateByDoctor(t *testing.T) {
	svc, repo := newTestService()
	doctorID := uuid.New()
	svc.CreateLinkedUser(context.Background(), "Dr. Rao", "rao@clinic.in", "secret1", doctorID)

	if err := svc.DeactivateByDoctor(context.Background(), doctorID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, _ := repo.GetByEmail(context.Background(), "rao@clinic.in")
	if u.IsActive {
		t.Error("expected linked user to be deactivated")
	}
	if err := svc.DeactivateByDoctor(context.Background(), uuid.New()); err != nil {
		t.Errorf("expected no error without a linked user, got %v", err)
	}
}

func TestService_CreateAdmin(t *testing.T) {
	svc, _ := newTestService()
	u, err := svc.CreateAdmin(context.Background(), "Owner", "owner@clinic.in", "s3cret!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != "admin" {
		t.Errorf("expected admin role, got %s", u.Role)
	}
}
