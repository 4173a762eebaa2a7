package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter selects appointments. Zero values are ignored; Day wins over
// From/To.
type ListFilter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    string
	Day       time.Time
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter) ([]*Appointment, int, error)
	OnDay(ctx context.Context, day time.Time) ([]*Appointment, error)
	// SlotTaken reports whether a non-cancelled appointment other than
	// exclude holds the doctor's slot.
	SlotTaken(ctx context.Context, doctorID uuid.UUID, day time.Time, hhmm string, exclude uuid.UUID) (bool, error)
}
