package user

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// DeactivateByDoctor clears is_active on accounts linked to doctorID.
	// Having no linked account is not an error.
	DeactivateByDoctor(ctx context.Context, doctorID uuid.UUID) error
}
