package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/db"
	"github.com/sariva/clinic/pkg/dates"
)

type Service struct {
	repo Repository
	tx   db.TxRunner
	loc  *time.Location
	now  func() time.Time
}

// NewService returns a Service that reads calendar days in loc, the clinic's
// time zone.
func NewService(repo Repository, tx db.TxRunner, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, tx: tx, loc: loc, now: time.Now}
}

// Create books a pending appointment after checking the doctor's slot. The
// partial unique index backs the check when two bookings race.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	patientID, err := parseRef(in.Patient, "patient")
	if err != nil {
		return nil, err
	}
	doctorID, err := parseRef(in.Doctor, "doctor")
	if err != nil {
		return nil, err
	}
	a := &Appointment{PatientID: &patientID, DoctorID: &doctorID, Status: StatusPending}
	if err := s.schedule(a, in.Date, in.Time); err != nil {
		return nil, err
	}
	a.Reason = strings.TrimSpace(in.Reason)
	a.Notes = strings.TrimSpace(in.Notes)

	var out *Appointment
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.checkSlot(ctx, a); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return err
		}
		created, err := s.repo.GetByID(ctx, a.ID)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces date, time, reason, status and notes. Moving a live booking
// onto a slot the doctor already holds is rejected.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Appointment, error) {
	var out *Appointment
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.schedule(a, in.Date, in.Time); err != nil {
			return err
		}
		if in.Status != "" {
			if !validStatuses[in.Status] {
				return apperr.Validationf("Invalid status: %s", in.Status)
			}
			a.Status = in.Status
		}
		a.Reason = strings.TrimSpace(in.Reason)
		a.Notes = strings.TrimSpace(in.Notes)

		if err := s.checkSlot(ctx, a); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
		out, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListQuery, limit, offset int) ([]*Appointment, int, error) {
	f := ListFilter{Limit: limit, Offset: offset}
	var err error
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
	if q.Status != "" {
		if !validStatuses[q.Status] {
			return nil, 0, apperr.Validationf("Invalid status: %s", q.Status)
		}
		f.Status = q.Status
	}
	if f.Day, err = s.day(q.Date); err != nil {
		return nil, 0, err
	}
	if f.From, err = s.day(q.StartDate); err != nil {
		return nil, 0, err
	}
	if f.To, err = s.day(q.EndDate); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, f)
}

// Today lists the appointments of the current clinic day by time.
func (s *Service) Today(ctx context.Context) ([]*Appointment, error) {
	return s.repo.OnDay(ctx, calendarDay(s.now(), s.loc))
}

func (s *Service) schedule(a *Appointment, date, hhmm string) error {
	if strings.TrimSpace(date) == "" {
		return apperr.Validation("Please add appointment date")
	}
	day, err := s.day(date)
	if err != nil {
		return err
	}
	hhmm = strings.TrimSpace(hhmm)
	if hhmm == "" {
		return apperr.Validation("Please add appointment time")
	}
	if !slotTime.MatchString(hhmm) {
		return apperr.Validationf("Invalid time: %s", hhmm)
	}
	a.Date = day
	a.Time = hhmm
	return nil
}

func (s *Service) checkSlot(ctx context.Context, a *Appointment) error {
	if a.DoctorID == nil || a.Status == StatusCancelled {
		return nil
	}
	taken, err := s.repo.SlotTaken(ctx, *a.DoctorID, a.Date, a.Time, a.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict(slotTakenMsg)
	}
	return nil
}

// day parses a calendar day in the clinic zone. Empty input yields zero.
func (s *Service) day(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	t, err := dates.Parse(raw, s.loc)
	if err != nil {
		return time.Time{}, apperr.Validationf("Invalid date: %s", raw)
	}
	return calendarDay(t, s.loc), nil
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
