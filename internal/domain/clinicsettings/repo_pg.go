package clinicsettings

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

const settingsCols = `id, clinic_name, address, city, state, pincode, phone, email, website, tagline,
	registration_no, logo, timings, created_at, updated_at`

func (r *repoPG) scanSettings(row pgx.Row) (*Settings, error) {
	var s Settings
	var timings []byte
	err := row.Scan(&s.ID, &s.ClinicName, &s.Address, &s.City, &s.State, &s.Pincode, &s.Phone, &s.Email,
		&s.Website, &s.Tagline, &s.RegistrationNo, &s.Logo, &timings, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("Clinic settings not found")
		}
		return nil, err
	}
	if len(timings) > 0 {
		if err := json.Unmarshal(timings, &s.Timings); err != nil {
			return nil, fmt.Errorf("decode timings: %w", err)
		}
	}
	if s.Timings == nil {
		s.Timings = []Timing{}
	}
	return &s, nil
}

func (r *repoPG) Get(ctx context.Context) (*Settings, error) {
	sql := `SELECT ` + settingsCols + ` FROM clinic_settings WHERE singleton`
	if db.TxFromContext(ctx) != nil {
		sql += ` FOR UPDATE`
	}
	return r.scanSettings(r.conn(ctx).QueryRow(ctx, sql))
}

func (r *repoPG) Create(ctx context.Context, s *Settings) error {
	timings, err := marshalTimings(s.Timings)
	if err != nil {
		return err
	}
	s.ID = uuid.New()
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO clinic_settings (id, clinic_name, address, city, state, pincode, phone, email, website,
			tagline, registration_no, logo, timings)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT ON CONSTRAINT clinic_settings_singleton_key DO NOTHING
		RETURNING created_at, updated_at`,
		s.ID, s.ClinicName, s.Address, s.City, s.State, s.Pincode, s.Phone, s.Email, s.Website,
		s.Tagline, s.RegistrationNo, s.Logo, timings).Scan(&s.CreatedAt, &s.UpdatedAt)
	if db.IsNoRows(err) {
		// Lost the race to a concurrent first request.
		existing, err := r.Get(ctx)
		if err != nil {
			return err
		}
		*s = *existing
		return nil
	}
	return err
}

func (r *repoPG) Update(ctx context.Context, s *Settings) error {
	timings, err := marshalTimings(s.Timings)
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		UPDATE clinic_settings SET clinic_name=$1, address=$2, city=$3, state=$4, pincode=$5, phone=$6,
			email=$7, website=$8, tagline=$9, registration_no=$10, logo=$11, timings=$12, updated_at=NOW()
		WHERE singleton
		RETURNING id, created_at, updated_at`,
		s.ClinicName, s.Address, s.City, s.State, s.Pincode, s.Phone,
		s.Email, s.Website, s.Tagline, s.RegistrationNo, s.Logo, timings).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("Clinic settings not found")
	}
	return err
}

func marshalTimings(t []Timing) ([]byte, error) {
	if t == nil {
		t = []Timing{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode timings: %w", err)
	}
	return b, nil
}
