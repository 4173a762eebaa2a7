package clinicsettings

import (
	"context"
	"strings"

	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/db"
)

var validDays = func() map[string]bool {
	m := make(map[string]bool, len(Weekdays))
	for _, d := range Weekdays {
		m[d] = true
	}
	return m
}()

type Service struct {
	repo Repository
	tx   db.TxRunner
}

func NewService(repo Repository, tx db.TxRunner) *Service {
	return &Service{repo: repo, tx: tx}
}

// Get returns the clinic settings, creating the defaults on first use.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	cur, err := s.repo.Get(ctx)
	if err == nil {
		return cur, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}
	cur = Default()
	if err := s.repo.Create(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

// Update creates the row when missing, otherwise replaces it. Both paths run
// in one transaction holding the row lock.
func (s *Service) Update(ctx context.Context, in Input) (*Settings, error) {
	if err := validateTimings(in.Timings); err != nil {
		return nil, err
	}

	var out *Settings
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		cur, err := s.repo.Get(ctx)
		if apperr.IsNotFound(err) {
			cur = Default()
			if err := s.repo.Create(ctx, cur); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		apply(cur, in)
		if err := s.repo.Update(ctx, cur); err != nil {
			return err
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func validateTimings(timings []Timing) error {
	seen := map[string]bool{}
	for _, t := range timings {
		if !validDays[t.Day] {
			return apperr.Validationf("Invalid day: %s", t.Day)
		}
		if seen[t.Day] {
			return apperr.Validationf("Duplicate timing for %s", t.Day)
		}
		seen[t.Day] = true
		if t.SlotType != "" && t.SlotType != SlotSingle && t.SlotType != SlotDouble {
			return apperr.Validationf("Invalid slot type: %s", t.SlotType)
		}
	}
	return nil
}

func apply(cur *Settings, in Input) {
	if name := strings.TrimSpace(in.ClinicName); name != "" {
		cur.ClinicName = name
	}
	cur.Address = in.Address
	cur.City = in.City
	cur.State = in.State
	cur.Pincode = in.Pincode
	cur.Phone = in.Phone
	cur.Email = strings.TrimSpace(in.Email)
	cur.Website = in.Website
	cur.Tagline = in.Tagline
	cur.RegistrationNo = in.RegistrationNo
	if in.Logo != nil {
		cur.Logo = *in.Logo
	}
	if in.Timings != nil {
		timings := make([]Timing, len(in.Timings))
		for i, t := range in.Timings {
			if t.SlotType == "" {
				t.SlotType = SlotDouble
			}
			timings[i] = t
		}
		cur.Timings = timings
	}
}
