package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/shoplist/internal/client/backend"
	"github.com/dmitrijs2005/shoplist/internal/client/config"
	"github.com/dmitrijs2005/shoplist/internal/client/localdb"
	"github.com/dmitrijs2005/shoplist/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/shoplist/internal/logging"
)

// NewBackend builds the backend selected by c: the in-process demo backend
// with -m, otherwise a gRPC client whose session lives in c.DatabaseFile.
// The returned func releases what was opened.
func NewBackend(ctx context.Context, c *config.Config, logger logging.Logger) (backend.Backend, func() error, error) {
	if c.InMemory {
		logger.Info(ctx, "using in-memory backend")
		return backend.NewMemoryBackend(), func() error { return nil }, nil
	}

	db, err := localdb.Open(ctx, c.DatabaseFile)
	if err != nil {
		return nil, nil, err
	}

	store := backend.NewMetadataSessionStore(metadata.NewSQLiteRepository(db))
	gb, err := backend.NewGRPCBackend(c.ServerEndpointAddr, store, c.RequestTimeout, logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	if err := gb.Ping(ctx); err != nil {
		logger.Warn(ctx, "server is not reachable", "addr", c.ServerEndpointAddr, "error", err)
	}

	return gb, func() error { return errors.Join(gb.Close(), db.Close()) }, nil
}
