// Package items stores the entries of shopping lists. Items carry no owner of
// their own; visibility follows the owner of the parent list.
package items

import (
	"context"

	"github.com/dmitrijs2005/shoplist/internal/server/models"
	"github.com/dmitrijs2005/shoplist/internal/server/repositories/rowquery"
)

var Columns = rowquery.Columns{"id", "name", "quantity", "list_id", "completed", "created_at"}

var Writable = rowquery.Columns{"name", "quantity", "completed"}

type Repository interface {
	Select(ctx context.Context, ownerID string, filters []models.Filter, orders []models.Order) ([]*models.Item, error)
	// Create does not check list ownership, callers do that first.
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, ownerID string, values map[string]any, filters []models.Filter) (int64, error)
	Delete(ctx context.Context, ownerID string, filters []models.Filter) (int64, error)
}
