package dashboard

import (
	"context"
	"time"
)

type Repository interface {
	Counts(ctx context.Context, w Window) (Counts, error)
	Monthly(ctx context.Context, w Window) (Monthly, error)
	Upcoming(ctx context.Context, from time.Time, limit int) ([]RecentAppointment, error)
	// DailyAppointments counts bookings per calendar day in [from, to],
	// keyed "YYYY-MM-DD". Days without bookings are absent.
	DailyAppointments(ctx context.Context, from, to time.Time) (map[string]int, error)
	Genders(ctx context.Context) (GenderDistribution, error)
}
