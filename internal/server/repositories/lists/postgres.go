package lists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/dbx"
	"github.com/dmitrijs2005/shoplist/internal/server/models"
	"github.com/dmitrijs2005/shoplist/internal/server/repositories/rowquery"
)

const table = common.TableLists

var selectColumns = []string{"id", "name", "owner_id", "created_at"}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Select(ctx context.Context, ownerID string, filters []models.Filter, orders []models.Order) ([]*models.List, error) {
	b := rowquery.Builder.Select(selectColumns...).From(table).Where(sq.Eq{"owner_id": ownerID})

	b, err := rowquery.Where(b, filters, Columns)
	if err != nil {
		return nil, err
	}
	b, err = rowquery.OrderBy(b, orders, Columns, "created_at DESC")
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

	result := []*models.List{}
	for rows.Next() {
		l := &models.List{}
		if err := rows.Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID string, id string) (*models.List, error) {
	query, args, err := rowquery.Builder.Select(selectColumns...).From(table).
		Where(sq.Eq{"owner_id": ownerID}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	l := &models.List{}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, rowquery.DBError(err)
	}
	return l, nil
}

func (r *PostgresRepository) Create(ctx context.Context, list *models.List) (*models.List, error) {
	query, args, err := rowquery.Builder.Insert(table).
		Columns("name", "owner_id").
		Values(list.Name, list.OwnerID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&list.ID, &list.CreatedAt); err != nil {
		return nil, rowquery.DBError(err)
	}
	return list, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID string, filters []models.Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, common.Invalidf("delete needs at least one filter")
	}

	b := rowquery.Builder.Delete(table).Where(sq.Eq{"owner_id": ownerID})
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
