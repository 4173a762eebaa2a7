package prescription

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

const prescriptionFrom = `prescriptions rx
	LEFT JOIN patients p ON p.id = rx.patient_id
	LEFT JOIN doctors d ON d.id = rx.doctor_id`

const prescriptionCols = `rx.id, rx.prescription_id, rx.patient_id, rx.doctor_id, rx.date, rx.diagnosis,
	rx.medicines, rx.diet_plan, rx.advice, rx.follow_up_date, rx.created_at, rx.updated_at,
	p.name, p.patient_id, p.phone, p.age, p.gender,
	d.name, d.specialization`

func (r *repoPG) scanPrescription(row pgx.Row) (*Prescription, error) {
	var (
		p                     Prescription
		medicinesJSON         []byte
		pName, pCode, pPhone  *string
		pGender, dName, dSpec *string
		pAge                  *int
	)
	err := row.Scan(&p.ID, &p.PrescriptionID, &p.PatientID, &p.DoctorID, &p.Date, &p.Diagnosis,
		&medicinesJSON, &p.DietPlan, &p.Advice, &p.FollowUpDate, &p.CreatedAt, &p.UpdatedAt,
		&pName, &pCode, &pPhone, &pAge, &pGender,
		&dName, &dSpec)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("Prescription not found")
		}
		return nil, err
	}
	if err := json.Unmarshal(medicinesJSON, &p.Medicines); err != nil {
		return nil, fmt.Errorf("decode medicines of %s: %w", p.PrescriptionID, err)
	}
	if p.Medicines == nil {
		p.Medicines = []Item{}
	}
	if p.PatientID != nil && pName != nil {
		p.Patient = &PatientSummary{ID: *p.PatientID, Name: *pName, PatientID: deref(pCode), Phone: deref(pPhone), Gender: deref(pGender)}
		if pAge != nil {
			p.Patient.Age = *pAge
		}
	}
	if p.DoctorID != nil && dName != nil {
		p.Doctor = &DoctorSummary{ID: *p.DoctorID, Name: *dName, Specialization: deref(dSpec)}
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	medicinesJSON, err := marshalItems(p.Medicines)
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescriptions (id, prescription_id, patient_id, doctor_id, date, diagnosis, medicines,
			diet_plan, advice, follow_up_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		p.ID, p.PrescriptionID, p.PatientID, p.DoctorID, p.Date, p.Diagnosis, medicinesJSON,
		p.DietPlan, p.Advice, p.FollowUpDate).Scan(&p.CreatedAt, &p.UpdatedAt)
	switch {
	case db.IsUniqueViolation(err, "prescriptions_prescription_id_key"):
		return apperr.Conflict(fmt.Sprintf("Prescription ID %s already exists", p.PrescriptionID))
	case db.IsForeignKeyViolation(err):
		return apperr.Validation("Patient or doctor does not exist")
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return r.scanPrescription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM `+prescriptionFrom+` WHERE rx.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Prescription) error {
	medicinesJSON, err := marshalItems(p.Medicines)
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		UPDATE prescriptions SET diagnosis=$2, medicines=$3, diet_plan=$4, advice=$5, follow_up_date=$6,
			updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		p.ID, p.Diagnosis, medicinesJSON, p.DietPlan, p.Advice, p.FollowUpDate).Scan(&p.CreatedAt, &p.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("Prescription not found")
	}
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescriptions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Prescription not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter) ([]*Prescription, int, error) {
	qb := query.New(prescriptionFrom, prescriptionCols)
	if f.PatientID != nil {
		qb.Eq("rx.patient_id", *f.PatientID)
	}
	if f.DoctorID != nil {
		qb.Eq("rx.doctor_id", *f.DoctorID)
	}
	qb.Between("rx.date", f.From, f.To)
	qb.OrderBy("rx.date DESC")

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

func (r *repoPG) ForPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	return r.collect(ctx, `SELECT `+prescriptionCols+` FROM `+prescriptionFrom+`
		WHERE rx.patient_id = $1
		ORDER BY rx.date DESC`, patientID)
}

func (r *repoPG) MedicineRefs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]MedicineRef, error) {
	refs := make(map[uuid.UUID]MedicineRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, COALESCE(generic_name, '') FROM medicines WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref MedicineRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.GenericName); err != nil {
			return nil, err
		}
		refs[ref.ID] = ref
	}
	return refs, rows.Err()
}

func (r *repoPG) collect(ctx context.Context, sql string, args ...interface{}) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Prescription{}
	for rows.Next() {
		p, err := r.scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func marshalItems(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode medicines: %w", err)
	}
	return b, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
