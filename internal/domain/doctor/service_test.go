package doctor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/db/dbtest"
)

// -- Mock Repository --

type mockRepo struct {
	mu    sync.Mutex
	store map[uuid.UUID]*Doctor
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Doctor)}
}

func (m *mockRepo) Create(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.Email == d.Email {
			return apperr.Conflict(duplicateEmailMsg)
		}
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	cp := *d
	m.store[d.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return nil, apperr.NotFound("Doctor not found")
	}
	cp := *d
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.store {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Doctor not found")
}

func (m *mockRepo) Update(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[d.ID]; !ok {
		return apperr.NotFound("Doctor not found")
	}
	d.UpdatedAt = time.Now()
	cp := *d
	m.store[d.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return apperr.NotFound("Doctor not found")
	}
	delete(m.store, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter) ([]*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []*Doctor{}
	for _, d := range m.store {
		if f.Search != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.Specialization != "" && !strings.EqualFold(d.Specialization, f.Specialization) {
			continue
		}
		if f.Active == "true" && !d.IsActive || f.Active == "false" && d.IsActive {
			continue
		}
		items = append(items, d)
	}
	return items, nil
}

// -- Mock UserLinker --

type linkCall struct {
	Name, Email, Password string
	DoctorID              uuid.UUID
}

type mockUsers struct {
	created     []linkCall
	deactivated []uuid.UUID
	err         error
}

func (m *mockUsers) CreateLinkedUser(_ context.Context, name, email, password string, doctorID uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, linkCall{name, email, password, doctorID})
	return nil
}

func (m *mockUsers) DeactivateByDoctor(_ context.Context, doctorID uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.deactivated = append(m.deactivated, doctorID)
	return nil
}

func newTestService() (*Service, *mockRepo, *mockUsers, *dbtest.TxRunner) {
	repo := newMockRepo()
	users := &mockUsers{}
	tx := &dbtest.TxRunner{}
	return NewService(repo, tx, users), repo, users, tx
}

func floatPtr(f float64) *float64 { return &f }

func validInput() Input {
	return Input{
		Name:            "Dr. Meera Kulkarni",
		Email:           "Meera@Clinic.in",
		Phone:           "9876543210",
		Specialization:  "General Physician",
		Qualification:   "MBBS",
		ConsultationFee: floatPtr(300),
		Availability: []Availability{
			{Day: "Monday", MorningStart: "09:00", MorningEnd: "13:00"},
		},
	}
}

func TestService_Create_Defaults(t *testing.T) {
	svc, _, users, _ := newTestService()

	d, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Email != "meera@clinic.in" {
		t.Errorf("expected lowercased email, got %s", d.Email)
	}
	if !d.IsActive {
		t.Error("expected new doctor to be active")
	}
	if d.Signature != nil {
		t.Error("expected nil signature")
	}
	if len(users.created) != 0 {
		t.Error("expected no linked user without createUser")
	}
}

func TestService_Create_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService()
	svc.Create(context.Background(), validInput())

	in := validInput()
	in.Email = "MEERA@clinic.in"
	_, err := svc.Create(context.Background(), in)
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if apperr.Message(err) != "Doctor with this email already exists" {
		t.Errorf("unexpected message %q", apperr.Message(err))
	}
}

func TestService_Create_LinkedUserInSameTx(t *testing.T) {
	svc, _, users, tx := newTestService()

	in := validInput()
	in.CreateUser = true
	in.Password = "secret123"
	d, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Calls != 1 {
		t.Errorf("expected 1 transaction, got %d", tx.Calls)
	}
	if len(users.created) != 1 {
		t.Fatalf("expected 1 linked user, got %d", len(users.created))
	}
	got := users.created[0]
	if got.DoctorID != d.ID || got.Email != "meera@clinic.in" || got.Password != "secret123" {
		t.Errorf("unexpected linked user %+v", got)
	}
}

func TestService_Create_CreateUserWithoutPassword(t *testing.T) {
	svc, _, users, _ := newTestService()

	in := validInput()
	in.CreateUser = true
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users.created) != 0 {
		t.Error("expected no linked user without a password")
	}
}

func TestService_Create_LinkedUserFailureAborts(t *testing.T) {
	svc, _, users, _ := newTestService()
	users.err = errors.New("users table unavailable")

	in := validInput()
	in.CreateUser = true
	in.Password = "secret123"
	if _, err := svc.Create(context.Background(), in); err == nil {
		t.Fatal("expected error from linked user creation")
	}
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		msg    string
	}{
		{"missing name", func(in *Input) { in.Name = " " }, "Please add doctor name"},
		{"missing email", func(in *Input) { in.Email = "" }, "Please add an email"},
		{"missing phone", func(in *Input) { in.Phone = "" }, "Please add phone number"},
		{"bad phone", func(in *Input) { in.Phone = "12" }, "Invalid phone number: 12"},
		{"missing specialization", func(in *Input) { in.Specialization = "" }, "Please add specialization"},
		{"missing qualification", func(in *Input) { in.Qualification = "" }, "Please add qualification"},
		{"negative fee", func(in *Input) { in.ConsultationFee = floatPtr(-1) }, "Consultation fee cannot be negative"},
		{"bad day", func(in *Input) { in.Availability = []Availability{{Day: "Funday"}} }, "Invalid availability day: Funday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newTestService()
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			if !apperr.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if apperr.Message(err) != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, apperr.Message(err))
			}
		})
	}
}

func TestService_Update_SignatureOnlyWhenPresent(t *testing.T) {
	svc, _, _, _ := newTestService()
	d, _ := svc.Create(context.Background(), validInput())

	sig := "data:image/png;base64,AAAA"
	in := validInput()
	in.Signature = OptionalString{Set: true, Value: &sig}
	updated, err := svc.Update(context.Background(), d.ID, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Signature == nil || *updated.Signature != sig {
		t.Fatalf("expected signature to be stored")
	}

	in = validInput()
	in.Name = "Dr. Meera K."
	updated, err = svc.Update(context.Background(), d.ID, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Signature == nil || *updated.Signature != sig {
		t.Error("expected omitted signature to keep the stored one")
	}

	in.Signature = OptionalString{Set: true}
	updated, _ = svc.Update(context.Background(), d.ID, in)
	if updated.Signature != nil {
		t.Error("expected explicit null to clear the signature")
	}
}

func TestService_Update_IsActive(t *testing.T) {
	svc, _, _, _ := newTestService()
	d, _ := svc.Create(context.Background(), validInput())

	in := validInput()
	off := false
	in.IsActive = &off
	updated, err := svc.Update(context.Background(), d.ID, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.IsActive {
		t.Error("expected doctor to be deactivated")
	}

	updated, _ = svc.Update(context.Background(), d.ID, validInput())
	if updated.IsActive {
		t.Error("expected omitted isActive to keep the stored value")
	}
}

func TestService_Update_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Update(context.Background(), uuid.New(), validInput())
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestService_Delete_DeactivatesUser(t *testing.T) {
	svc, repo, users, tx := newTestService()
	d, _ := svc.Create(context.Background(), validInput())
	tx.Calls = 0

	if err := svc.Delete(context.Background(), d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Calls != 1 {
		t.Errorf("expected delete in one transaction, got %d", tx.Calls)
	}
	if len(users.deactivated) != 1 || users.deactivated[0] != d.ID {
		t.Errorf("expected linked user deactivation, got %v", users.deactivated)
	}
	if len(repo.store) != 0 {
		t.Error("expected doctor to be removed")
	}
}

func TestService_Delete_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	if err := svc.Delete(context.Background(), uuid.New()); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestOptionalString_UnmarshalJSON(t *testing.T) {
	var in Input
	if err := jsonUnmarshal(`{"name":"x"}`, &in); err != nil {
		t.Fatal(err)
	}
	if in.Signature.Set {
		t.Error("expected absent key to be unset")
	}

	in = Input{}
	jsonUnmarshal(`{"signature":null}`, &in)
	if !in.Signature.Set || in.Signature.Value != nil {
		t.Errorf("expected explicit null, got %+v", in.Signature)
	}

	in = Input{}
	jsonUnmarshal(`{"signature":"data:image/png;base64,AA"}`, &in)
	if !in.Signature.Set || in.Signature.Value == nil || *in.Signature.Value != "data:image/png;base64,AA" {
		t.Errorf("expected value, got %+v", in.Signature)
	}
}
