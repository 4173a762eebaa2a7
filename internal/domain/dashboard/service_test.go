package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	counts   Counts
	monthly  Monthly
	upcoming []RecentAppointment
	daily    map[string]int
	genders  GenderDistribution
	err      error

	window   Window
	from, to time.Time
	upFrom   time.Time
	upLimit  int
}

func (m *mockRepo) Counts(_ context.Context, w Window) (Counts, error) {
	m.window = w
	return m.counts, m.err
}

func (m *mockRepo) Monthly(_ context.Context, w Window) (Monthly, error) {
	return m.monthly, nil
}

func (m *mockRepo) Upcoming(_ context.Context, from time.Time, limit int) ([]RecentAppointment, error) {
	m.upFrom, m.upLimit = from, limit
	return m.upcoming, nil
}

func (m *mockRepo) DailyAppointments(_ context.Context, from, to time.Time) (map[string]int, error) {
	m.from, m.to = from, to
	return m.daily, nil
}

func (m *mockRepo) Genders(context.Context) (GenderDistribution, error) {
	return m.genders, nil
}

var kolkata = time.FixedZone("IST", 5*3600+1800)

func newTestService(repo *mockRepo, now time.Time) *Service {
	svc := NewService(repo, kolkata)
	svc.now = func() time.Time { return now }
	return svc
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewWindow_UsesClinicDay(t *testing.T) {
	// 20:00 UTC on 31 Jan is already 1 Feb in the clinic.
	w := NewWindow(time.Date(2025, 1, 31, 20, 0, 0, 0, time.UTC), kolkata)

	if !w.Day.Equal(day(2025, 2, 1)) {
		t.Errorf("expected day 2025-02-01, got %s", w.Day)
	}
	if !w.DayStart.Equal(time.Date(2025, 1, 31, 18, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected day start %s", w.DayStart.UTC())
	}
	if !w.MonthFirst.Equal(day(2025, 2, 1)) || !w.MonthLast.Equal(day(2025, 2, 28)) {
		t.Errorf("unexpected month days %s..%s", w.MonthFirst, w.MonthLast)
	}
	if !w.MonthStart.Equal(time.Date(2025, 1, 31, 18, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected month start %s", w.MonthStart.UTC())
	}
	if !w.MonthEnd.Equal(time.Date(2025, 2, 28, 18, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected month end %s", w.MonthEnd.UTC())
	}
}

func TestNewWindow_December(t *testing.T) {
	w := NewWindow(time.Date(2024, 12, 15, 6, 0, 0, 0, time.UTC), kolkata)
	if !w.MonthLast.Equal(day(2024, 12, 31)) {
		t.Errorf("expected 2024-12-31, got %s", w.MonthLast)
	}
	if w.MonthEnd.In(kolkata).Year() != 2025 || w.MonthEnd.In(kolkata).Month() != time.January {
		t.Errorf("expected month end in January 2025, got %s", w.MonthEnd)
	}
}

func TestService_Stats(t *testing.T) {
	repo := &mockRepo{
		counts:  Counts{TotalPatients: 12, TotalDoctors: 3, TodayAppointments: 2, PendingAppointments: 4},
		monthly: Monthly{Patients: 5, Prescriptions: 7, Appointments: 9},
		upcoming: []RecentAppointment{
			{ID: uuid.New(), Date: day(2024, 6, 11), Time: "09:00", Patient: &PatientRef{Name: "Asha Rao"}},
		},
		daily:   map[string]int{"2024-06-05": 1, "2024-06-11": 3},
		genders: GenderDistribution{Male: 4, Female: 7, Other: 1},
	}
	svc := newTestService(repo, time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Counts.TotalPatients != 12 || stats.Monthly.Prescriptions != 7 || stats.GenderDistribution.Female != 7 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if len(stats.RecentAppointments) != 1 {
		t.Errorf("expected 1 recent appointment, got %d", len(stats.RecentAppointments))
	}
	if !repo.upFrom.Equal(day(2024, 6, 11)) || repo.upLimit != RecentLimit {
		t.Errorf("expected upcoming from clinic today with limit %d, got %s/%d", RecentLimit, repo.upFrom, repo.upLimit)
	}
	if !repo.window.Day.Equal(day(2024, 6, 11)) {
		t.Errorf("expected counts for 2024-06-11, got %s", repo.window.Day)
	}
}

func TestService_Stats_Trends(t *testing.T) {
	repo := &mockRepo{daily: map[string]int{"2024-06-05": 1, "2024-06-08": 2, "2024-06-11": 3}}
	svc := newTestService(repo, time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TrendPoint{
		{"2024-06-05", 1}, {"2024-06-06", 0}, {"2024-06-07", 0}, {"2024-06-08", 2},
		{"2024-06-09", 0}, {"2024-06-10", 0}, {"2024-06-11", 3},
	}
	if len(stats.AppointmentTrends) != TrendDays {
		t.Fatalf("expected %d points, got %d", TrendDays, len(stats.AppointmentTrends))
	}
	for i, p := range want {
		if stats.AppointmentTrends[i] != p {
			t.Errorf("point %d: expected %+v, got %+v", i, p, stats.AppointmentTrends[i])
		}
	}
	if !repo.from.Equal(day(2024, 6, 5)) || !repo.to.Equal(day(2024, 6, 11)) {
		t.Errorf("unexpected trend range %s..%s", repo.from, repo.to)
	}
}

func TestService_Stats_EmptyRecent(t *testing.T) {
	repo := &mockRepo{upcoming: []RecentAppointment{}}
	svc := newTestService(repo, time.Now())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.RecentAppointments == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestService_Stats_RepoError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := newTestService(&mockRepo{err: boom}, time.Now())

	if _, err := svc.Stats(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped repo error, got %v", err)
	}
}
