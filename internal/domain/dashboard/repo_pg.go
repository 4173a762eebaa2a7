package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sariva/clinic/pkg/dates"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Counts(ctx context.Context, w Window) (Counts, error) {
	var c Counts
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM doctors WHERE is_active),
			(SELECT COUNT(*) FROM medicines WHERE is_active),
			(SELECT COUNT(*) FROM appointments WHERE appointment_date = $1),
			(SELECT COUNT(*) FROM appointments WHERE status = 'pending' AND appointment_date >= $1),
			(SELECT COUNT(*) FROM medicines WHERE is_active AND stock_quantity <= minimum_stock),
			(SELECT COUNT(*) FROM medicines WHERE is_active AND expiry_date < $2)`,
		w.Day, w.DayStart).Scan(&c.TotalPatients, &c.TotalDoctors, &c.TotalMedicines,
		&c.TodayAppointments, &c.PendingAppointments, &c.LowStockMedicines, &c.ExpiredMedicines)
	return c, err
}

func (r *repoPG) Monthly(ctx context.Context, w Window) (Monthly, error) {
	var m Monthly
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM prescriptions WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM appointments WHERE appointment_date BETWEEN $3 AND $4)`,
		w.MonthStart, w.MonthEnd, w.MonthFirst, w.MonthLast).Scan(&m.Patients, &m.Prescriptions, &m.Appointments)
	return m, err
}

func (r *repoPG) Upcoming(ctx context.Context, from time.Time, limit int) ([]RecentAppointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.appointment_date, a.appointment_time, a.reason, a.status,
			p.id, p.name, p.patient_id, d.id, d.name, d.specialization
		FROM appointments a
		LEFT JOIN patients p ON p.id = a.patient_id
		LEFT JOIN doctors d ON d.id = a.doctor_id
		WHERE a.appointment_date >= $1
		ORDER BY a.appointment_date ASC, a.appointment_time ASC
		LIMIT $2`, from, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RecentAppointment{}
	for rows.Next() {
		var (
			a            RecentAppointment
			pID, dID     *uuid.UUID
			pName, pCode *string
			dName, dSpec *string
		)
		if err := rows.Scan(&a.ID, &a.Date, &a.Time, &a.Reason, &a.Status,
			&pID, &pName, &pCode, &dID, &dName, &dSpec); err != nil {
			return nil, err
		}
		if pID != nil {
			a.Patient = &PatientRef{ID: *pID, Name: deref(pName), PatientID: deref(pCode)}
		}
		if dID != nil {
			a.Doctor = &DoctorRef{ID: *dID, Name: deref(dName), Specialization: deref(dSpec)}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repoPG) DailyAppointments(ctx context.Context, from, to time.Time) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT appointment_date, COUNT(*)
		FROM appointments
		WHERE appointment_date BETWEEN $1 AND $2
		GROUP BY appointment_date`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			day   time.Time
			count int
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		out[day.Format(dates.DayLayout)] = count
	}
	return out, rows.Err()
}

func (r *repoPG) Genders(ctx context.Context) (GenderDistribution, error) {
	var g GenderDistribution
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE gender = 'male'),
			COUNT(*) FILTER (WHERE gender = 'female'),
			COUNT(*) FILTER (WHERE gender = 'other')
		FROM patients`).Scan(&g.Male, &g.Female, &g.Other)
	return g, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
