package doctor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/db"
	"github.com/sariva/clinic/internal/platform/query"
)

const duplicateEmailMsg = "Doctor with this email already exists"

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

const doctorCols = `id, name, email, phone, specialization, qualification, registration_no,
	consultation_fee, availability, is_active, signature, created_at, updated_at`

func (r *repoPG) scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var avail []byte
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.Specialization, &d.Qualification, &d.RegistrationNo,
		&d.ConsultationFee, &avail, &d.IsActive, &d.Signature, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("Doctor not found")
		}
		return nil, err
	}
	if len(avail) > 0 {
		if err := json.Unmarshal(avail, &d.Availability); err != nil {
			return nil, fmt.Errorf("decode availability: %w", err)
		}
	}
	if d.Availability == nil {
		d.Availability = []Availability{}
	}
	return &d, nil
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	avail, err := marshalAvailability(d.Availability)
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctors (id, name, email, phone, specialization, qualification, registration_no,
			consultation_fee, availability, is_active, signature)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		d.ID, d.Name, d.Email, d.Phone, d.Specialization, d.Qualification, d.RegistrationNo,
		d.ConsultationFee, avail, d.IsActive, d.Signature).Scan(&d.CreatedAt, &d.UpdatedAt)
	if db.IsUniqueViolation(err, "doctors_email_key") {
		return apperr.Conflict(duplicateEmailMsg)
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return r.scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	return r.scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE email = $1`, email))
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	avail, err := marshalAvailability(d.Availability)
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		UPDATE doctors SET name=$2, email=$3, phone=$4, specialization=$5, qualification=$6,
			registration_no=$7, consultation_fee=$8, availability=$9, is_active=$10, signature=$11,
			updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		d.ID, d.Name, d.Email, d.Phone, d.Specialization, d.Qualification,
		d.RegistrationNo, d.ConsultationFee, avail, d.IsActive, d.Signature).Scan(&d.CreatedAt, &d.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("Doctor not found")
	}
	if db.IsUniqueViolation(err, "doctors_email_key") {
		return apperr.Conflict(duplicateEmailMsg)
	}
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Doctor not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter) ([]*Doctor, error) {
	qb := query.New("doctors", doctorCols)
	qb.Search(f.Search, "name", "email", "phone")
	qb.Contains("specialization", f.Specialization)
	qb.Bool("is_active", f.Active)
	qb.OrderBy("created_at DESC")

	rows, err := r.conn(ctx).Query(ctx, qb.AllSQL(), qb.CountArgs()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Doctor{}
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func marshalAvailability(a []Availability) ([]byte, error) {
	if a == nil {
		a = []Availability{}
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode availability: %w", err)
	}
	return b, nil
}
