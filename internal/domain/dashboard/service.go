package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/sariva/clinic/pkg/dates"
)

type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService returns a Service that reads "today" and "this month" in loc.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// Stats computes the dashboard afresh.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	w := NewWindow(s.now(), s.loc)

	counts, err := s.repo.Counts(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	monthly, err := s.repo.Monthly(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("dashboard monthly: %w", err)
	}
	recent, err := s.repo.Upcoming(ctx, w.Day, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("dashboard upcoming appointments: %w", err)
	}
	trends, err := s.trends(ctx, w.Day)
	if err != nil {
		return nil, err
	}
	genders, err := s.repo.Genders(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard genders: %w", err)
	}

	return &Stats{
		Counts:             counts,
		Monthly:            monthly,
		RecentAppointments: recent,
		AppointmentTrends:  trends,
		GenderDistribution: genders,
	}, nil
}

// trends returns one point per day for the last TrendDays days ending
// today, oldest first, with zero for days without bookings.
func (s *Service) trends(ctx context.Context, today time.Time) ([]TrendPoint, error) {
	from := today.AddDate(0, 0, -(TrendDays - 1))
	byDay, err := s.repo.DailyAppointments(ctx, from, today)
	if err != nil {
		return nil, fmt.Errorf("dashboard trends: %w", err)
	}
	out := make([]TrendPoint, 0, TrendDays)
	for d := from; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(dates.DayLayout)
		out = append(out, TrendPoint{Date: key, Count: byDay[key]})
	}
	return out, nil
}
