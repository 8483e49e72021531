// Package server wires configuration, storage, services and the gRPC
// endpoint into the shoplist backend process.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/shoplist/internal/logging"
	"github.com/dmitrijs2005/shoplist/internal/server/config"
	gs "github.com/dmitrijs2005/shoplist/internal/server/grpc"
	"github.com/dmitrijs2005/shoplist/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/shoplist/internal/server/services"
	"golang.org/x/sync/errgroup"
)

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	server      *gs.GRPCServer
}

func NewApp(c *config.Config, out io.Writer) (*App, error) {
	logger := logging.NewJSON(out, logging.ParseLevel(c.LogLevel))

	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	us := services.NewUserService(db, rm, c)
	ts := services.NewTableService(db, rm)
	es := services.NewExportService(db, rm, c)

	srv := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, us, ts, es, c.SecretKey)

	return &App{config: c, logger: logger, db: db, repomanager: rm, server: srv}, nil
}

// Run migrates the schema and serves until ctx is cancelled or a
// termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.server.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}

	app.logger.Info(context.Background(), "App stopped")
	return nil
}
