package reference

import (
	"context"

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

type repoPG struct {
	pool *pgxpool.Pool
	kind Kind
	cols string
}

// NewRepoPG returns a repository over kind's table. Tables without a short
// name column read it as an empty string.
func NewRepoPG(pool *pgxpool.Pool, kind Kind) Repository {
	short := "''"
	if kind.ShortName {
		short = "short_name"
	}
	return &repoPG{
		pool: pool,
		kind: kind,
		cols: "id, name, " + short + ", description, is_active, created_at, updated_at",
	}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.ShortName, &it.Description, &it.IsActive, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound(r.kind.notFoundMsg())
		}
		return nil, err
	}
	return &it, nil
}

func (r *repoPG) Create(ctx context.Context, it *Item) error {
	it.ID = uuid.New()
	var row pgx.Row
	if r.kind.ShortName {
		row = r.conn(ctx).QueryRow(ctx, `
			INSERT INTO `+r.kind.Table+` (id, name, short_name, description, is_active)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING created_at, updated_at`,
			it.ID, it.Name, it.ShortName, it.Description, it.IsActive)
	} else {
		row = r.conn(ctx).QueryRow(ctx, `
			INSERT INTO `+r.kind.Table+` (id, name, description, is_active)
			VALUES ($1,$2,$3,$4)
			RETURNING created_at, updated_at`,
			it.ID, it.Name, it.Description, it.IsActive)
	}
	err := row.Scan(&it.CreatedAt, &it.UpdatedAt)
	if db.IsUniqueViolation(err, r.kind.NameIndex) {
		return apperr.Conflict(r.kind.duplicateMsg())
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	return r.scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+r.cols+` FROM `+r.kind.Table+` WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, it *Item) error {
	var row pgx.Row
	if r.kind.ShortName {
		row = r.conn(ctx).QueryRow(ctx, `
			UPDATE `+r.kind.Table+` SET name=$2, short_name=$3, description=$4, is_active=$5, updated_at=NOW()
			WHERE id = $1
			RETURNING created_at, updated_at`,
			it.ID, it.Name, it.ShortName, it.Description, it.IsActive)
	} else {
		row = r.conn(ctx).QueryRow(ctx, `
			UPDATE `+r.kind.Table+` SET name=$2, description=$3, is_active=$4, updated_at=NOW()
			WHERE id = $1
			RETURNING created_at, updated_at`,
			it.ID, it.Name, it.Description, it.IsActive)
	}
	err := row.Scan(&it.CreatedAt, &it.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound(r.kind.notFoundMsg())
	}
	if db.IsUniqueViolation(err, r.kind.NameIndex) {
		return apperr.Conflict(r.kind.duplicateMsg())
	}
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM `+r.kind.Table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(r.kind.notFoundMsg())
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter) ([]*Item, error) {
	qb := query.New(r.kind.Table, r.cols)
	if r.kind.ShortName {
		qb.Search(f.Search, "name", "short_name")
	} else {
		qb.Search(f.Search, "name")
	}
	qb.Bool("is_active", f.Active)
	qb.OrderBy("name ASC")

	rows, err := r.conn(ctx).Query(ctx, qb.AllSQL(), qb.CountArgs()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Item{}
	for rows.Next() {
		it, err := r.scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repoPG) NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+r.kind.Table+` WHERE LOWER(name) = LOWER($1) AND id <> $2)`,
		name, exclude).Scan(&taken)
	return taken, err
}
