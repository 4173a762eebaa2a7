// Package query builds the WHERE/ORDER/LIMIT part of list queries from
// request filters while keeping every value a bind parameter.
package query

import (
	"fmt"
	"strings"
	"time"
)

// Builder accumulates filter clauses for a single SELECT. from may contain
// joins; cols is the projected column list.
type Builder struct {
	from    string
	cols    string
	where   string
	args    []interface{}
	idx     int
	orderBy string
}

func New(from, cols string) *Builder {
	return &Builder{from: from, cols: cols, idx: 1}
}

// Idx returns the next available parameter index.
func (q *Builder) Idx() int { return q.idx }

// Add appends a raw clause (without leading "AND"). Placeholders in clause
// must start at Idx().
func (q *Builder) Add(clause string, args ...interface{}) {
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx += len(args)
}

// Eq adds column = value.
func (q *Builder) Eq(column string, value interface{}) {
	q.Add(fmt.Sprintf("%s = $%d", column, q.idx), value)
}

// Gt adds column > value.
func (q *Builder) Gt(column string, value interface{}) {
	q.Add(fmt.Sprintf("%s > $%d", column, q.idx), value)
}

// Search adds a case-insensitive substring match of term across columns,
// OR-ed together. An empty term adds nothing.
func (q *Builder) Search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", col, q.idx)
	}
	q.Add("("+strings.Join(parts, " OR ")+")", "%"+EscapeLike(term)+"%")
}

// Contains adds a single-column case-insensitive substring match.
func (q *Builder) Contains(column, value string) {
	q.Search(value, column)
}

// Bool adds column = true/false when raw is "true" or "false".
func (q *Builder) Bool(column, raw string) {
	switch raw {
	case "true":
		q.Eq(column, true)
	case "false":
		q.Eq(column, false)
	}
}

// Between adds from <= column and column <= to for the non-zero bounds.
func (q *Builder) Between(column string, from, to time.Time) {
	if !from.IsZero() {
		q.Add(fmt.Sprintf("%s >= $%d", column, q.idx), from)
	}
	if !to.IsZero() {
		q.Add(fmt.Sprintf("%s <= $%d", column, q.idx), to)
	}
}

// OrderBy sets the ORDER BY clause (without the "ORDER BY" keyword).
func (q *Builder) OrderBy(orderBy string) {
	q.orderBy = orderBy
}

func (q *Builder) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", q.from, q.where)
}

func (q *Builder) CountArgs() []interface{} {
	return q.args
}

// AllSQL returns the unpaginated data query.
func (q *Builder) AllSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", q.cols, q.from, q.where)
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	return sql
}

// DataSQL returns the data query with LIMIT/OFFSET placeholders appended.
func (q *Builder) DataSQL() string {
	return q.AllSQL() + fmt.Sprintf(" LIMIT $%d OFFSET $%d", q.idx, q.idx+1)
}

// DataArgs returns the filter args followed by limit and offset.
func (q *Builder) DataArgs(limit, offset int) []interface{} {
	result := make([]interface{}, len(q.args)+2)
	copy(result, q.args)
	result[len(q.args)] = limit
	result[len(q.args)+1] = offset
	return result
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so user input matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
