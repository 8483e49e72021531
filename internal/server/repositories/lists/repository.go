// Package lists stores shopping lists. Every operation is scoped to the
// owner passed in, so one user can never see or touch another user's lists.
// Lists are never updated in place.
package lists

import (
	"context"

	"github.com/dmitrijs2005/shoplist/internal/server/models"
	"github.com/dmitrijs2005/shoplist/internal/server/repositories/rowquery"
)

// Columns may be filtered and ordered on.
var Columns = rowquery.Columns{"id", "name", "owner_id", "created_at"}

type Repository interface {
	Select(ctx context.Context, ownerID string, filters []models.Filter, orders []models.Order) ([]*models.List, error)
	// Get returns common.ErrorNotFound when id does not exist or belongs to
	// someone else.
	Get(ctx context.Context, ownerID string, id string) (*models.List, error)
	Create(ctx context.Context, list *models.List) (*models.List, error)
	Delete(ctx context.Context, ownerID string, filters []models.Filter) (int64, error)
}
