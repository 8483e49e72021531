package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/dbx"
	"github.com/dmitrijs2005/shoplist/internal/server/models"
	"github.com/dmitrijs2005/shoplist/internal/server/repositories/repomanager"
)

// TableService is the generic row API over the lists and items tables.
// Every call is made on behalf of userID and only ever reaches that user's
// rows.
type TableService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTableService(db *sql.DB, m repomanager.RepositoryManager) *TableService {
	return &TableService{db: db, repomanager: m}
}

func unknownTable(table string) error {
	return fmt.Errorf("%w: relation %q does not exist", common.ErrorNotFound, table)
}

func (s *TableService) Select(ctx context.Context, userID string, q models.Query) ([]map[string]any, error) {
	switch q.Table {
	case common.TableLists:
		lists, err := s.repomanager.Lists(s.db).Select(ctx, userID, q.Filters, q.Orders)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, 0, len(lists))
		for _, l := range lists {
			rows = append(rows, l.Row())
		}
		return rows, nil

	case common.TableItems:
		items, err := s.repomanager.Items(s.db).Select(ctx, userID, q.Filters, q.Orders)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, 0, len(items))
		for _, i := range items {
			rows = append(rows, i.Row())
		}
		return rows, nil
	}
	return nil, unknownTable(q.Table)
}

// Insert stores rows and returns them as created. Either all rows are
// stored or none.
func (s *TableService) Insert(ctx context.Context, userID string, table string, rows []map[string]any) ([]map[string]any, error) {
	if len(rows) == 0 {
		return nil, common.Invalidf("nothing to insert")
	}

	var out []map[string]any
	var err error

	switch table {
	case common.TableLists:
		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := s.repomanager.Lists(tx)
			for _, row := range rows {
				l, err := listFromRow(userID, row)
				if err != nil {
					return err
				}
				if l, err = repo.Create(ctx, l); err != nil {
					return err
				}
				out = append(out, l.Row())
			}
			return nil
		})

	case common.TableItems:
		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			listsRepo := s.repomanager.Lists(tx)
			itemsRepo := s.repomanager.Items(tx)
			for _, row := range rows {
				it, err := itemFromRow(row)
				if err != nil {
					return err
				}
				if _, err := listsRepo.Get(ctx, userID, it.ListID); err != nil {
					if errors.Is(err, common.ErrorNotFound) {
						return fmt.Errorf("%w: list %s is not yours", common.ErrorForbidden, it.ListID)
					}
					return err
				}
				if it, err = itemsRepo.Create(ctx, it); err != nil {
					return err
				}
				out = append(out, it.Row())
			}
			return nil
		})

	default:
		return nil, unknownTable(table)
	}

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies values to every matching row and reports how many changed.
func (s *TableService) Update(ctx context.Context, userID string, table string, values map[string]any, filters []models.Filter) (int64, error) {
	values, err := normalizeValues(values)
	if err != nil {
		return 0, err
	}
	switch table {
	case common.TableLists:
		return 0, common.Invalidf("lists cannot be updated")
	case common.TableItems:
		return s.repomanager.Items(s.db).Update(ctx, userID, values, filters)
	}
	return 0, unknownTable(table)
}

// Delete removes every matching row. Matching nothing is not an error.
func (s *TableService) Delete(ctx context.Context, userID string, table string, filters []models.Filter) (int64, error) {
	switch table {
	case common.TableLists:
		return s.repomanager.Lists(s.db).Delete(ctx, userID, filters)
	case common.TableItems:
		return s.repomanager.Items(s.db).Delete(ctx, userID, filters)
	}
	return 0, unknownTable(table)
}

func listFromRow(userID string, row map[string]any) (*models.List, error) {
	l := &models.List{OwnerID: userID}
	for k, v := range row {
		switch k {
		case "name":
			name, err := requiredText(k, v)
			if err != nil {
				return nil, err
			}
			l.Name = name
		case "owner_id":
			if owner, _ := v.(string); owner != userID {
				return nil, fmt.Errorf("%w: owner_id must be the signed-in user", common.ErrorForbidden)
			}
		default:
			return nil, common.Invalidf("column %q cannot be set on insert", k)
		}
	}
	if l.Name == "" {
		return nil, common.Invalidf("name is required")
	}
	return l, nil
}

func itemFromRow(row map[string]any) (*models.Item, error) {
	it := &models.Item{Quantity: common.DefaultItemQuantity}
	for k, v := range row {
		var err error
		switch k {
		case "name":
			it.Name, err = requiredText(k, v)
		case "list_id":
			it.ListID, err = requiredText(k, v)
		case "quantity":
			q, ok := v.(string)
			if !ok {
				return nil, common.Invalidf("quantity must be text")
			}
			if q = strings.TrimSpace(q); q != "" {
				it.Quantity = q
			}
		case "completed":
			c, ok := v.(bool)
			if !ok {
				return nil, common.Invalidf("completed must be a boolean")
			}
			it.Completed = c
		default:
			return nil, common.Invalidf("column %q cannot be set on insert", k)
		}
		if err != nil {
			return nil, err
		}
	}
	if it.Name == "" {
		return nil, common.Invalidf("name is required")
	}
	if it.ListID == "" {
		return nil, common.Invalidf("list_id is required")
	}
	return it, nil
}

// normalizeValues enforces column types on update and trims text the way
// inserts do. Column whitelists are the repositories' business.
func normalizeValues(values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch k {
		case "name", "quantity":
			text, err := requiredText(k, v)
			if err != nil {
				return nil, err
			}
			v = text
		case "completed":
			if _, ok := v.(bool); !ok {
				return nil, common.Invalidf("completed must be a boolean")
			}
		}
		out[k] = v
	}
	return out, nil
}

func requiredText(column string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", common.Invalidf("%s must be text", column)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", common.Invalidf("%s is required", column)
	}
	return s, nil
}
