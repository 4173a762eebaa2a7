package medicine

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ListFilter struct {
	Search   string
	Category string
	Active   string
	// NotExpiredAt keeps only medicines expiring after it, when set.
	NotExpiredAt time.Time
}

type Repository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter) ([]*Medicine, error)
	Count(ctx context.Context) (int, error)

	// Alert queries consider active medicines only.
	LowStock(ctx context.Context) ([]*Medicine, error)
	ExpiredBefore(ctx context.Context, t time.Time) ([]*Medicine, error)
	ExpiringBetween(ctx context.Context, from, to time.Time) ([]*Medicine, error)
}
