package reference

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	Search string
	Active string
}

type Repository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter) ([]*Item, error)
	// NameTaken reports whether another item (not exclude) has name,
	// compared case-insensitively.
	NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
}
