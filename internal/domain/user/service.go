package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/auth"
)

const invalidCredentialsMsg = "Invalid credentials"

type Service struct {
	repo Repository
	cost int
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// Register creates a login account. Role defaults to staff.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	role := in.Role
	if role == "" {
		role = auth.RoleStaff
	}
	if !validRoles[role] {
		return nil, apperr.Validationf("Invalid role: %s", role)
	}
	return s.create(ctx, in.Name, in.Email, in.Password, role, nil)
}

// CreateAdmin bootstraps an administrator from the command line.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (*User, error) {
	return s.create(ctx, name, email, password, auth.RoleAdmin, nil)
}

// CreateLinkedUser creates a doctor account bound to doctorID. An existing
// account with the same email is left alone.
func (s *Service) CreateLinkedUser(ctx context.Context, name, email, password string, doctorID uuid.UUID) error {
	email = normalizeEmail(email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !apperr.IsNotFound(err) {
		return err
	}
	_, err := s.create(ctx, name, email, password, auth.RoleDoctor, &doctorID)
	return err
}

func (s *Service) DeactivateByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	return s.repo.DeactivateByDoctor(ctx, doctorID)
}

// Login checks the password and returns the account. Unknown email, wrong
// password and inactive account all yield the same error.
func (s *Service) Login(ctx context.Context, in LoginInput) (*User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperr.Validation("Please provide an email and password")
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized(invalidCredentialsMsg)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperr.Unauthorized(invalidCredentialsMsg)
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !u.IsActive {
		return nil, apperr.Unauthorized(invalidCredentialsMsg)
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) create(ctx context.Context, name, email, password, role string, doctorID *uuid.UUID) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Please add a name")
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperr.Validation("Please add an email")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("Please add a valid email")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Validationf("Password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("User already exists")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		DoctorID:     doctorID,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
