package doctor

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	Search         string
	Specialization string
	// Active is "true", "false" or empty for both.
	Active string
}

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter) ([]*Doctor, error)
}
