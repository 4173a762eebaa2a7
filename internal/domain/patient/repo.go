package patient

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter) ([]*Patient, int, error)
}
