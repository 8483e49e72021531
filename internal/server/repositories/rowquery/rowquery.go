// Package rowquery turns generic row queries (equality filters, orderings,
// column values) into squirrel builders, rejecting any column that is not on
// the table's whitelist.
package rowquery

import (
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const invalidTextRepresentation = "22P02"

// Builder is the shared statement builder with Postgres placeholders.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Columns is a column whitelist.
type Columns []string

func (c Columns) Has(name string) bool {
	for _, col := range c {
		if col == name {
			return true
		}
	}
	return false
}

// Where appends one equality predicate per filter, in order.
func Where(b sq.SelectBuilder, filters []models.Filter, allowed Columns) (sq.SelectBuilder, error) {
	for _, f := range filters {
		eq, err := equal(f, allowed)
		if err != nil {
			return b, err
		}
		b = b.Where(eq)
	}
	return b, nil
}

// UpdateWhere is Where for UPDATE statements.
func UpdateWhere(b sq.UpdateBuilder, filters []models.Filter, allowed Columns) (sq.UpdateBuilder, error) {
	for _, f := range filters {
		eq, err := equal(f, allowed)
		if err != nil {
			return b, err
		}
		b = b.Where(eq)
	}
	return b, nil
}

// DeleteWhere is Where for DELETE statements.
func DeleteWhere(b sq.DeleteBuilder, filters []models.Filter, allowed Columns) (sq.DeleteBuilder, error) {
	for _, f := range filters {
		eq, err := equal(f, allowed)
		if err != nil {
			return b, err
		}
		b = b.Where(eq)
	}
	return b, nil
}

// OrderBy appends the ORDER BY terms. Without orders, fallback is used.
func OrderBy(b sq.SelectBuilder, orders []models.Order, allowed Columns, fallback ...string) (sq.SelectBuilder, error) {
	if len(orders) == 0 {
		if len(fallback) == 0 {
			return b, nil
		}
		return b.OrderBy(fallback...), nil
	}
	for _, o := range orders {
		if !allowed.Has(o.Column) {
			return b, common.Invalidf("cannot order by %q", o.Column)
		}
		dir := "DESC"
		if o.Ascending {
			dir = "ASC"
		}
		b = b.OrderBy(o.Column + " " + dir)
	}
	return b, nil
}

// SetMap checks values against allowed before they reach UpdateBuilder.SetMap,
// which emits the columns in sorted order.
func SetMap(values map[string]any, allowed Columns) (map[string]any, error) {
	if len(values) == 0 {
		return nil, common.Invalidf("nothing to update")
	}
	for k, v := range values {
		if !allowed.Has(k) {
			return nil, common.Invalidf("column %q is not writable", k)
		}
		if !scalar(v) {
			return nil, common.Invalidf("column %q needs a scalar value", k)
		}
	}
	return values, nil
}

func equal(f models.Filter, allowed Columns) (sq.Eq, error) {
	if !allowed.Has(f.Column) {
		return nil, common.Invalidf("cannot filter by %q", f.Column)
	}
	if f.Value == nil || !scalar(f.Value) {
		return nil, common.Invalidf("filter on %q needs a scalar value", f.Column)
	}
	return sq.Eq{f.Column: f.Value}, nil
}

// scalar rejects slices and maps, which squirrel would expand into IN lists.
func scalar(v any) bool {
	switch v.(type) {
	case string, bool, float64, float32, int, int32, int64:
		return true
	default:
		return false
	}
}

// DBError wraps a driver error. A value Postgres cannot cast to the column
// type, such as a malformed uuid in a filter, is the caller's mistake and
// becomes a validation error.
func DBError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return common.Invalidf("invalid value: %s", pgErr.Message)
	}
	return fmt.Errorf("db error: %w", err)
}
