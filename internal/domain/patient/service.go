package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/db"
	"github.com/sariva/clinic/internal/platform/phone"
)

type Service struct {
	repo Repository
	tx   db.TxRunner
	seq  db.Sequencer
}

func NewService(repo Repository, tx db.TxRunner, seq db.Sequencer) *Service {
	return &Service{repo: repo, tx: tx, seq: seq}
}

func (s *Service) Create(ctx context.Context, in Input) (*Patient, error) {
	p := &Patient{}
	if err := apply(p, in); err != nil {
		return nil, err
	}

	// Counter increment and insert commit together; a failed insert burns
	// the number but never hands it out twice.
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		n, err := s.seq.Next(ctx, CounterName)
		if err != nil {
			return err
		}
		p.PatientID = FormatPatientID(n)
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces every writable field; patientId never changes.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Patient, error) {
	p := &Patient{ID: id}
	if err := apply(p, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Patient, int, error) {
	return s.repo.List(ctx, f)
}

func apply(p *Patient, in Input) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperr.Validation("Please add patient name")
	}
	if in.Age == nil {
		return apperr.Validation("Please add age")
	}
	if *in.Age < 0 || *in.Age > 150 {
		return apperr.Validation("Age must be between 0 and 150")
	}
	if in.Gender == "" {
		return apperr.Validation("Please specify gender")
	}
	if !validGenders[in.Gender] {
		return apperr.Validationf("Invalid gender: %s", in.Gender)
	}
	ph := strings.TrimSpace(in.Phone)
	if ph == "" {
		return apperr.Validation("Please add phone number")
	}
	if err := phone.Validate(ph); err != nil {
		return apperr.Validationf("Invalid phone number: %s", ph)
	}
	if !validBloodGroups[in.BloodGroup] {
		return apperr.Validationf("Invalid blood group: %s", in.BloodGroup)
	}

	p.Name = name
	p.Age = *in.Age
	p.Gender = in.Gender
	p.Phone = ph
	p.Email = strings.ToLower(strings.TrimSpace(in.Email))
	p.Address = in.Address
	p.BloodGroup = in.BloodGroup
	p.MedicalHistory = cleanList(in.MedicalHistory)
	p.Allergies = cleanList(in.Allergies)
	return nil
}

// cleanList trims entries and drops empty ones.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
