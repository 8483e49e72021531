// Package refreshtokens persists the opaque refresh tokens handed out at
// sign-in and rotated on every refresh.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/server/models"
)

type Repository interface {
	// Create stores token for userID, expiring at now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound when the token is unknown.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Consume deletes token and returns it. It returns common.ErrorNotFound
	// when the token is unknown or was already consumed.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete revokes one token. Unknown tokens are not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUser revokes every token of userID and reports how many were removed.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
