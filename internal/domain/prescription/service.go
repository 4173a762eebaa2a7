package prescription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sariva/clinic/internal/domain/doctor"
	"github.com/sariva/clinic/internal/domain/patient"
	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/db"
	"github.com/sariva/clinic/pkg/dates"
)

type PatientReader interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type DoctorReader interface {
	Get(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
}

type Service struct {
	repo     Repository
	tx       db.TxRunner
	seq      db.Sequencer
	patients PatientReader
	doctors  DoctorReader
	loc      *time.Location
	now      func() time.Time
}

func NewService(repo Repository, tx db.TxRunner, seq db.Sequencer, patients PatientReader, doctors DoctorReader, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, tx: tx, seq: seq, patients: patients, doctors: doctors, loc: loc, now: time.Now}
}

// Create writes a prescription and numbers it from the all-time counter,
// prefixed with the current clinic month.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Detail, error) {
	patientID, err := parseRef(in.Patient, "patient")
	if err != nil {
		return nil, err
	}
	doctorID, err := parseRef(in.Doctor, "doctor")
	if err != nil {
		return nil, err
	}
	now := s.now()
	p := &Prescription{
		PatientID: &patientID,
		DoctorID:  &doctorID,
		Date:      in.Date.Time,
		DietPlan:  strings.TrimSpace(in.DietPlan),
		Advice:    strings.TrimSpace(in.Advice),
	}
	if p.Date.IsZero() {
		p.Date = now
	}
	if err := applyContent(p, in.Diagnosis, in.Medicines, in.FollowUpDate); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.snapshotNames(ctx, p.Medicines); err != nil {
			return err
		}
		n, err := s.seq.Next(ctx, CounterName)
		if err != nil {
			return err
		}
		p.PrescriptionID = FormatPrescriptionID(now.In(s.loc), n)
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, p.ID)
}

// Get returns the prescription with the full patient and doctor records.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &Detail{Prescription: p}
	if p.PatientID != nil {
		pt, err := s.patients.Get(ctx, *p.PatientID)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
		d.Patient = pt
	}
	if p.DoctorID != nil {
		doc, err := s.doctors.Get(ctx, *p.DoctorID)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
		d.Doctor = doc
	}
	return d, nil
}

// Update replaces diagnosis, medicines, diet plan, advice and follow-up.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Detail, error) {
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := applyContent(p, in.Diagnosis, in.Medicines, in.FollowUpDate); err != nil {
			return err
		}
		p.DietPlan = strings.TrimSpace(in.DietPlan)
		p.Advice = strings.TrimSpace(in.Advice)
		if err := s.snapshotNames(ctx, p.Medicines); err != nil {
			return err
		}
		return s.repo.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// List filters by patient, doctor and date range. An end date without a
// clock time covers the whole day.
func (s *Service) List(ctx context.Context, q ListQuery, limit, offset int) ([]*Prescription, int, error) {
	f := ListFilter{Limit: limit, Offset: offset}
	if q.Patient != "" {
		id, err := parseRef(q.Patient, "patient")
		if err != nil {
			return nil, 0, err
		}
		f.PatientID = &id
	}
	if q.Doctor != "" {
		id, err := parseRef(q.Doctor, "doctor")
		if err != nil {
			return nil, 0, err
		}
		f.DoctorID = &id
	}
	if q.StartDate != "" {
		t, err := dates.Parse(q.StartDate, s.loc)
		if err != nil {
			return nil, 0, apperr.Validationf("Invalid date: %s", q.StartDate)
		}
		f.From = t
	}
	if q.EndDate != "" {
		t, err := dates.Parse(q.EndDate, s.loc)
		if err != nil {
			return nil, 0, apperr.Validationf("Invalid date: %s", q.EndDate)
		}
		if len(strings.TrimSpace(q.EndDate)) == len(dates.DayLayout) {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.To = t
	}
	return s.repo.List(ctx, f)
}

// ForPatient returns the patient's prescription history, newest first.
func (s *Service) ForPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}
	items, err := s.repo.ForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if err := s.populateMedicines(ctx, items); err != nil {
		return nil, fmt.Errorf("populate medicines: %w", err)
	}
	return items, nil
}

// populateMedicines attaches the inventory entry to every item whose
// medicine still exists.
func (s *Service) populateMedicines(ctx context.Context, list []*Prescription) error {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, p := range list {
		for _, it := range p.Medicines {
			if it.Medicine != nil && !seen[*it.Medicine] {
				seen[*it.Medicine] = true
				ids = append(ids, *it.Medicine)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	refs, err := s.repo.MedicineRefs(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range list {
		for i := range p.Medicines {
			it := &p.Medicines[i]
			if it.Medicine == nil {
				continue
			}
			if ref, ok := refs[*it.Medicine]; ok {
				it.Ref = &ref
			}
		}
	}
	return nil
}

// snapshotNames fills empty medicine names from the inventory.
func (s *Service) snapshotNames(ctx context.Context, items []Item) error {
	var ids []uuid.UUID
	for _, it := range items {
		if it.MedicineName == "" && it.Medicine != nil {
			ids = append(ids, *it.Medicine)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	refs, err := s.repo.MedicineRefs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].MedicineName != "" || items[i].Medicine == nil {
			continue
		}
		ref, ok := refs[*items[i].Medicine]
		if !ok {
			return apperr.Validationf("Medicine not found: %s", *items[i].Medicine)
		}
		items[i].MedicineName = ref.Name
	}
	return nil
}

func applyContent(p *Prescription, diagnosis string, items []Item, followUp dates.Date) error {
	diagnosis = strings.TrimSpace(diagnosis)
	if diagnosis == "" {
		return apperr.Validation("Please add diagnosis")
	}
	out := make([]Item, 0, len(items))
	for i, it := range items {
		it.MedicineName = strings.TrimSpace(it.MedicineName)
		it.Instructions = strings.TrimSpace(it.Instructions)
		if it.Medicine == nil && it.MedicineName == "" {
			return apperr.Validationf("Please select a medicine for item %d", i+1)
		}
		if it.Duration < 1 {
			return apperr.Validationf("Duration must be at least 1 day for item %d", i+1)
		}
		out = append(out, it)
	}
	p.Diagnosis = diagnosis
	p.Medicines = out
	p.FollowUpDate = followUp.Ptr()
	return nil
}

func parseRef(raw, field string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, apperr.Validationf("Please select a %s", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validationf("Invalid %s id: %s", field, raw)
	}
	return id, nil
}
