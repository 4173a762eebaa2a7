package reference

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sariva/clinic/internal/platform/apperr"
)

type Service struct {
	kind Kind
	repo Repository
}

func NewService(kind Kind, repo Repository) *Service {
	return &Service{kind: kind, repo: repo}
}

func (s *Service) Kind() Kind { return s.kind }

func (s *Service) Create(ctx context.Context, in Input) (*Item, error) {
	name := ""
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	if name == "" {
		return nil, apperr.Validationf("Please add %s name", strings.ToLower(s.kind.Label))
	}
	if err := s.checkName(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	it := &Item{Name: name, IsActive: true}
	if s.kind.ShortName && in.ShortName != nil {
		it.ShortName = strings.TrimSpace(*in.ShortName)
	}
	if in.Description != nil {
		it.Description = strings.TrimSpace(*in.Description)
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the fields present in the body. The duplicate check only
// runs when a new name is given.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Item, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name != "" {
			if err := s.checkName(ctx, name, id); err != nil {
				return nil, err
			}
			it.Name = name
		}
	}
	if s.kind.ShortName && in.ShortName != nil {
		it.ShortName = strings.TrimSpace(*in.ShortName)
	}
	if in.Description != nil {
		it.Description = strings.TrimSpace(*in.Description)
	}
	if in.IsActive != nil {
		it.IsActive = *in.IsActive
	}
	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Item, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) checkName(ctx context.Context, name string, exclude uuid.UUID) error {
	taken, err := s.repo.NameTaken(ctx, name, exclude)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict(s.kind.duplicateMsg())
	}
	return nil
}
