package clinicsettings

import "context"

type Repository interface {
	// Get returns the singleton row or a not-found error.
	Get(ctx context.Context) (*Settings, error)
	// Create inserts s unless a row already exists, in which case s is
	// overwritten with the stored row.
	Create(ctx context.Context, s *Settings) error
	Update(ctx context.Context, s *Settings) error
}
