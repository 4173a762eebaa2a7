package medicine

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

const medicineCols = `id, name, generic_name, category, batch_number, expiry_date, stock_quantity,
	minimum_stock, price, manufacturer, is_active, created_at, updated_at`

func (r *repoPG) scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	err := row.Scan(&m.ID, &m.Name, &m.GenericName, &m.Category, &m.BatchNumber, &m.ExpiryDate, &m.StockQuantity,
		&m.MinimumStock, &m.Price, &m.Manufacturer, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("Medicine not found")
		}
		return nil, err
	}
	return &m, nil
}

func (r *repoPG) Create(ctx context.Context, m *Medicine) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medicines (id, name, generic_name, category, batch_number, expiry_date, stock_quantity,
			minimum_stock, price, manufacturer, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		m.ID, m.Name, m.GenericName, m.Category, m.BatchNumber, m.ExpiryDate, m.StockQuantity,
		m.MinimumStock, m.Price, m.Manufacturer, m.IsActive).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return r.scanMedicine(r.conn(ctx).QueryRow(ctx, `SELECT `+medicineCols+` FROM medicines WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, m *Medicine) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE medicines SET name=$2, generic_name=$3, category=$4, batch_number=$5, expiry_date=$6,
			stock_quantity=$7, minimum_stock=$8, price=$9, manufacturer=$10, is_active=$11, updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		m.ID, m.Name, m.GenericName, m.Category, m.BatchNumber, m.ExpiryDate,
		m.StockQuantity, m.MinimumStock, m.Price, m.Manufacturer, m.IsActive).Scan(&m.CreatedAt, &m.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("Medicine not found")
	}
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Medicine not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter) ([]*Medicine, error) {
	qb := query.New("medicines", medicineCols)
	qb.Search(f.Search, "name", "generic_name", "manufacturer")
	qb.Contains("category", f.Category)
	qb.Bool("is_active", f.Active)
	if !f.NotExpiredAt.IsZero() {
		qb.Gt("expiry_date", f.NotExpiredAt)
	}
	qb.OrderBy("name ASC")
	return r.collect(ctx, qb.AllSQL(), qb.CountArgs()...)
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medicines`).Scan(&n)
	return n, err
}

func (r *repoPG) LowStock(ctx context.Context) ([]*Medicine, error) {
	return r.collect(ctx, `SELECT `+medicineCols+` FROM medicines
		WHERE is_active AND stock_quantity <= minimum_stock
		ORDER BY stock_quantity ASC`)
}

func (r *repoPG) ExpiredBefore(ctx context.Context, t time.Time) ([]*Medicine, error) {
	return r.collect(ctx, `SELECT `+medicineCols+` FROM medicines
		WHERE is_active AND expiry_date < $1
		ORDER BY expiry_date ASC`, t)
}

func (r *repoPG) ExpiringBetween(ctx context.Context, from, to time.Time) ([]*Medicine, error) {
	return r.collect(ctx, `SELECT `+medicineCols+` FROM medicines
		WHERE is_active AND expiry_date >= $1 AND expiry_date <= $2
		ORDER BY expiry_date ASC`, from, to)
}

func (r *repoPG) collect(ctx context.Context, sql string, args ...interface{}) ([]*Medicine, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Medicine{}
	for rows.Next() {
		m, err := r.scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
