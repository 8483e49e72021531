package items

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/dbx"
	"github.com/dmitrijs2005/shoplist/internal/server/models"
	"github.com/dmitrijs2005/shoplist/internal/server/repositories/rowquery"
)

const table = common.TableItems

var selectColumns = []string{"id", "name", "quantity", "list_id", "completed", "created_at"}

// ownedBy limits items to lists of the given owner.
func ownedBy(ownerID string) sq.Sqlizer {
	return sq.Expr("list_id IN (SELECT id FROM lists WHERE owner_id = ?)", ownerID)
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Select(ctx context.Context, ownerID string, filters []models.Filter, orders []models.Order) ([]*models.Item, error) {
	b := rowquery.Builder.Select(selectColumns...).From(table).Where(ownedBy(ownerID))

	b, err := rowquery.Where(b, filters, Columns)
	if err != nil {
		return nil, err
	}
	b, err = rowquery.OrderBy(b, orders, Columns, "completed ASC", "created_at ASC")
	if err != nil {
		return nil, err
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, rowquery.DBError(err)
	}
	defer rows.Close()

	result := []*models.Item{}
	for rows.Next() {
		i := &models.Item{}
		if err := rows.Scan(&i.ID, &i.Name, &i.Quantity, &i.ListID, &i.Completed, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if item.Quantity == "" {
		item.Quantity = common.DefaultItemQuantity
	}

	query, args, err := rowquery.Builder.Insert(table).
		Columns("name", "quantity", "list_id", "completed").
		Values(item.Name, item.Quantity, item.ListID, item.Completed).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&item.ID, &item.CreatedAt); err != nil {
		return nil, rowquery.DBError(err)
	}
	return item, nil
}

func (r *PostgresRepository) Update(ctx context.Context, ownerID string, values map[string]any, filters []models.Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, common.Invalidf("update needs at least one filter")
	}
	set, err := rowquery.SetMap(values, Writable)
	if err != nil {
		return 0, err
	}

	b := rowquery.Builder.Update(table).SetMap(set).Where(ownedBy(ownerID))
	b, err = rowquery.UpdateWhere(b, filters, Columns)
	if err != nil {
		return 0, err
	}

	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	return exec(ctx, r.db, query, args)
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID string, filters []models.Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, common.Invalidf("delete needs at least one filter")
	}

	b := rowquery.Builder.Delete(table).Where(ownedBy(ownerID))
	b, err := rowquery.DeleteWhere(b, filters, Columns)
	if err != nil {
		return 0, err
	}

	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	return exec(ctx, r.db, query, args)
}

func exec(ctx context.Context, db dbx.DBTX, query string, args []any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, rowquery.DBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
