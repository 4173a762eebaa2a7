package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/db"
	"github.com/sariva/clinic/internal/platform/query"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const slotConstraint = "appointments_doctor_slot_key"

const appointmentFrom = `appointments a
	LEFT JOIN patients p ON p.id = a.patient_id
	LEFT JOIN doctors d ON d.id = a.doctor_id`

const appointmentCols = `a.id, a.patient_id, a.doctor_id, a.appointment_date, a.appointment_time, a.reason,
	a.notes, a.status, a.created_at, a.updated_at,
	p.name, p.patient_id, p.phone, p.age, p.gender,
	d.name, d.specialization, d.consultation_fee`

func (r *repoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a                     Appointment
		pName, pCode, pPhone  *string
		pGender, dName, dSpec *string
		pAge                  *int
		dFee                  *float64
	)
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time, &a.Reason,
		&a.Notes, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		&pName, &pCode, &pPhone, &pAge, &pGender,
		&dName, &dSpec, &dFee)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("Appointment not found")
		}
		return nil, err
	}
	if a.PatientID != nil && pName != nil {
		a.Patient = &PatientSummary{ID: *a.PatientID, Name: *pName, PatientID: deref(pCode), Phone: deref(pPhone), Gender: deref(pGender)}
		if pAge != nil {
			a.Patient.Age = *pAge
		}
	}
	if a.DoctorID != nil && dName != nil {
		a.Doctor = &DoctorSummary{ID: *a.DoctorID, Name: *dName, Specialization: deref(dSpec)}
		if dFee != nil {
			a.Doctor.ConsultationFee = *dFee
		}
	}
	a.Date = time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), 0, 0, 0, 0, time.UTC)
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, appointment_date, appointment_time, reason, notes, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Reason, a.Notes, a.Status).Scan(&a.CreatedAt, &a.UpdatedAt)
	return mapWriteErr(err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM `+appointmentFrom+` WHERE a.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE appointments SET appointment_date=$2, appointment_time=$3, reason=$4, notes=$5, status=$6,
			updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		a.ID, a.Date, a.Time, a.Reason, a.Notes, a.Status).Scan(&a.CreatedAt, &a.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("Appointment not found")
	}
	return mapWriteErr(err)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Appointment not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter) ([]*Appointment, int, error) {
	qb := query.New(appointmentFrom, appointmentCols)
	if f.PatientID != nil {
		qb.Eq("a.patient_id", *f.PatientID)
	}
	if f.DoctorID != nil {
		qb.Eq("a.doctor_id", *f.DoctorID)
	}
	if f.Status != "" {
		qb.Eq("a.status", f.Status)
	}
	if !f.Day.IsZero() {
		qb.Eq("a.appointment_date", f.Day)
	} else {
		qb.Between("a.appointment_date", f.From, f.To)
	}
	qb.OrderBy("a.appointment_date ASC, a.appointment_time ASC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.collect(ctx, qb.DataSQL(), qb.DataArgs(f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) OnDay(ctx context.Context, day time.Time) ([]*Appointment, error) {
	return r.collect(ctx, `SELECT `+appointmentCols+` FROM `+appointmentFrom+`
		WHERE a.appointment_date = $1
		ORDER BY a.appointment_time ASC`, day)
}

func (r *repoPG) SlotTaken(ctx context.Context, doctorID uuid.UUID, day time.Time, hhmm string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND appointment_date = $2 AND appointment_time = $3
				AND status <> 'cancelled' AND id <> $4
		)`, doctorID, day, hhmm, exclude).Scan(&taken)
	return taken, err
}

func (r *repoPG) collect(ctx context.Context, sql string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Appointment{}
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func mapWriteErr(err error) error {
	switch {
	case db.IsUniqueViolation(err, slotConstraint):
		return apperr.Conflict(slotTakenMsg)
	case db.IsForeignKeyViolation(err):
		return apperr.Validation("Patient or doctor does not exist")
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
