package doctor

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/db"
	"github.com/sariva/clinic/internal/platform/phone"
)

// UserLinker manages the login account that may belong to a doctor.
type UserLinker interface {
	// CreateLinkedUser creates a doctor-role user unless one with the email
	// already exists.
	CreateLinkedUser(ctx context.Context, name, email, password string, doctorID uuid.UUID) error
	DeactivateByDoctor(ctx context.Context, doctorID uuid.UUID) error
}

type Service struct {
	repo  Repository
	tx    db.TxRunner
	users UserLinker
}

func NewService(repo Repository, tx db.TxRunner, users UserLinker) *Service {
	return &Service{repo: repo, tx: tx, users: users}
}

// Create inserts the doctor and, when requested, its login account in one
// transaction.
func (s *Service) Create(ctx context.Context, in Input) (*Doctor, error) {
	d := &Doctor{IsActive: true}
	if err := apply(d, in); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, d.Email); err == nil {
		return nil, apperr.Conflict(duplicateEmailMsg)
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, d); err != nil {
			return err
		}
		if in.CreateUser && in.Password != "" && s.users != nil {
			return s.users.CreateLinkedUser(ctx, d.Name, d.Email, in.Password, d.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces the profile. isActive is kept when omitted and the
// signature is only touched when the key is present.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(d, in); err != nil {
		return nil, err
	}
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}
	if in.Signature.Set {
		d.Signature = in.Signature.Value
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes the doctor and deactivates its login account.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if s.users != nil {
			if err := s.users.DeactivateByDoctor(ctx, id); err != nil {
				return err
			}
		}
		return s.repo.Delete(ctx, id)
	})
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Doctor, error) {
	return s.repo.List(ctx, f)
}

func apply(d *Doctor, in Input) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperr.Validation("Please add doctor name")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return apperr.Validation("Please add an email")
	}
	ph := strings.TrimSpace(in.Phone)
	if ph == "" {
		return apperr.Validation("Please add phone number")
	}
	if err := phone.Validate(ph); err != nil {
		return apperr.Validationf("Invalid phone number: %s", ph)
	}
	spec := strings.TrimSpace(in.Specialization)
	if spec == "" {
		return apperr.Validation("Please add specialization")
	}
	qual := strings.TrimSpace(in.Qualification)
	if qual == "" {
		return apperr.Validation("Please add qualification")
	}
	fee := 0.0
	if in.ConsultationFee != nil {
		fee = *in.ConsultationFee
	}
	if fee < 0 {
		return apperr.Validation("Consultation fee cannot be negative")
	}
	for _, a := range in.Availability {
		if !validDays[a.Day] {
			return apperr.Validationf("Invalid availability day: %s", a.Day)
		}
	}

	d.Name = name
	d.Email = email
	d.Phone = ph
	d.Specialization = spec
	d.Qualification = qual
	d.RegistrationNo = strings.TrimSpace(in.RegistrationNo)
	d.ConsultationFee = fee
	d.Availability = in.Availability
	if d.Availability == nil {
		d.Availability = []Availability{}
	}
	return nil
}
