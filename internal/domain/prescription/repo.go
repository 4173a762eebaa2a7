package prescription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ListFilter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter) ([]*Prescription, int, error)
	ForPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)
	// MedicineRefs returns the inventory entries of the given medicines.
	// Unknown ids are absent from the map.
	MedicineRefs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]MedicineRef, error)
}
