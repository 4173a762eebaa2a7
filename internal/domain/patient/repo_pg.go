package patient

import (
	"context"
	"fmt"

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

const patientCols = `id, patient_id, name, age, gender, phone, email, address, blood_group,
	medical_history, allergies, created_at, updated_at`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.PatientID, &p.Name, &p.Age, &p.Gender, &p.Phone, &p.Email, &p.Address, &p.BloodGroup,
		&p.MedicalHistory, &p.Allergies, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("Patient not found")
		}
		return nil, err
	}
	normalize(&p)
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	normalize(p)
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (id, patient_id, name, age, gender, phone, email, address, blood_group,
			medical_history, allergies)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		p.ID, p.PatientID, p.Name, p.Age, p.Gender, p.Phone, p.Email, p.Address, p.BloodGroup,
		p.MedicalHistory, p.Allergies).Scan(&p.CreatedAt, &p.UpdatedAt)
	if db.IsUniqueViolation(err, "patients_patient_id_key") {
		return apperr.Conflict(fmt.Sprintf("Patient ID %s already exists", p.PatientID))
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	normalize(p)
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patients SET name=$2, age=$3, gender=$4, phone=$5, email=$6, address=$7, blood_group=$8,
			medical_history=$9, allergies=$10, updated_at=NOW()
		WHERE id = $1
		RETURNING patient_id, created_at, updated_at`,
		p.ID, p.Name, p.Age, p.Gender, p.Phone, p.Email, p.Address, p.BloodGroup,
		p.MedicalHistory, p.Allergies).Scan(&p.PatientID, &p.CreatedAt, &p.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("Patient not found")
	}
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Patient not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter) ([]*Patient, int, error) {
	qb := query.New("patients", patientCols)
	qb.Search(f.Search, "name", "phone", "patient_id", "email")
	qb.OrderBy("created_at DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []*Patient{}
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func normalize(p *Patient) {
	if p.MedicalHistory == nil {
		p.MedicalHistory = []string{}
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
}
