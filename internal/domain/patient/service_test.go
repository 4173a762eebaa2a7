package patient

import (
	"context"
	"errors"
	"sort"
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
	store map[uuid.UUID]*Patient
	err   error
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.PatientID == p.PatientID {
			return apperr.Conflict("duplicate patient id")
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, apperr.NotFound("Patient not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.store[p.ID]
	if !ok {
		return apperr.NotFound("Patient not found")
	}
	p.PatientID = existing.PatientID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return apperr.NotFound("Patient not found")
	}
	delete(m.store, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter) ([]*Patient, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	term := strings.ToLower(f.Search)
	var all []*Patient
	for _, p := range m.store {
		if term == "" || strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(p.Phone, term) || strings.Contains(strings.ToLower(p.PatientID), term) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PatientID > all[j].PatientID })
	total := len(all)
	if f.Offset >= total {
		return []*Patient{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return all[f.Offset:end], total, nil
}

func newTestService() (*Service, *mockRepo, *dbtest.Sequencer, *dbtest.TxRunner) {
	repo := newMockRepo()
	seq := dbtest.NewSequencer()
	tx := &dbtest.TxRunner{}
	return NewService(repo, tx, seq), repo, seq, tx
}

func intPtr(i int) *int { return &i }

func validInput() Input {
	return Input{Name: "Asha Rao", Age: intPtr(30), Gender: "female", Phone: "9000000000"}
}

func TestService_Create_AssignsPatientID(t *testing.T) {
	svc, _, seq, tx := newTestService()
	seq.Set(CounterName, 41)

	p, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PatientID != "PAT000042" {
		t.Errorf("expected PAT000042, got %s", p.PatientID)
	}
	if p.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if tx.Calls != 1 {
		t.Errorf("expected create to run in one transaction, got %d", tx.Calls)
	}
}

func TestService_Create_SequentialIDs(t *testing.T) {
	svc, _, _, _ := newTestService()
	var prev string
	for i := 1; i <= 3; i++ {
		p, err := svc.Create(context.Background(), validInput())
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if p.PatientID != FormatPatientID(int64(i)) {
			t.Errorf("expected %s, got %s", FormatPatientID(int64(i)), p.PatientID)
		}
		if prev != "" && p.PatientID <= prev {
			t.Errorf("expected increasing ids, %s after %s", p.PatientID, prev)
		}
		prev = p.PatientID
	}
}

func TestService_Create_ConcurrentIDsUnique(t *testing.T) {
	svc, _, _, _ := newTestService()
	var wg sync.WaitGroup
	ids := make(chan string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.Create(context.Background(), validInput())
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			ids <- p.PatientID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate patient id %s", id)
		}
		seen[id] = true
	}
	if len(seen) != 20 {
		t.Errorf("expected 20 ids, got %d", len(seen))
	}
}

func TestService_Create_CounterError(t *testing.T) {
	svc, repo, seq, _ := newTestService()
	seq.Err = errors.New("connection reset")

	if _, err := svc.Create(context.Background(), validInput()); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.store) != 0 {
		t.Error("expected nothing stored")
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()

	tests := []struct {
		name string
		mod  func(*Input)
		msg  string
	}{
		{"missing name", func(in *Input) { in.Name = "  " }, "Please add patient name"},
		{"missing age", func(in *Input) { in.Age = nil }, "Please add age"},
		{"age too high", func(in *Input) { in.Age = intPtr(151) }, "Age must be between 0 and 150"},
		{"negative age", func(in *Input) { in.Age = intPtr(-1) }, "Age must be between 0 and 150"},
		{"missing gender", func(in *Input) { in.Gender = "" }, "Please specify gender"},
		{"bad gender", func(in *Input) { in.Gender = "unknown" }, "Invalid gender: unknown"},
		{"missing phone", func(in *Input) { in.Phone = "" }, "Please add phone number"},
		{"bad phone", func(in *Input) { in.Phone = "12" }, "Invalid phone number: 12"},
		{"bad blood group", func(in *Input) { in.BloodGroup = "C+" }, "Invalid blood group: C+"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mod(&in)
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

func TestService_Create_AgeBoundaries(t *testing.T) {
	svc, _, _, _ := newTestService()
	for _, age := range []int{0, 150} {
		in := validInput()
		in.Age = intPtr(age)
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Errorf("age %d: unexpected error %v", age, err)
		}
	}
}

func TestService_Create_NormalizesFields(t *testing.T) {
	svc, _, _, _ := newTestService()
	in := validInput()
	in.Email = " Asha@Example.COM "
	in.MedicalHistory = []string{" diabetes ", ""}

	p, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Email != "asha@example.com" {
		t.Errorf("expected lowercased email, got %q", p.Email)
	}
	if len(p.MedicalHistory) != 1 || p.MedicalHistory[0] != "diabetes" {
		t.Errorf("unexpected medical history %v", p.MedicalHistory)
	}
	if p.Allergies == nil {
		t.Error("expected empty allergies slice, got nil")
	}
}

func TestService_Update_KeepsPatientID(t *testing.T) {
	svc, _, _, _ := newTestService()
	p, _ := svc.Create(context.Background(), validInput())

	in := validInput()
	in.Name = "Asha R. Rao"
	in.Age = intPtr(31)
	updated, err := svc.Update(context.Background(), p.ID, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.PatientID != p.PatientID {
		t.Errorf("expected patientId %s to be kept, got %s", p.PatientID, updated.PatientID)
	}
	if updated.Name != "Asha R. Rao" || updated.Age != 31 {
		t.Errorf("update not applied: %+v", updated)
	}
}

func TestService_Update_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Update(context.Background(), uuid.New(), validInput())
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc, _, _, _ := newTestService()
	p, _ := svc.Create(context.Background(), validInput())

	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), p.ID); !apperr.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestFormatPatientID(t *testing.T) {
	if got := FormatPatientID(1); got != "PAT000001" {
		t.Errorf("expected PAT000001, got %s", got)
	}
	if got := FormatPatientID(1234567); got != "PAT1234567" {
		t.Errorf("expected PAT1234567, got %s", got)
	}
}
