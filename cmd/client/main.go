package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/shoplist/internal/buildinfo"
	"github.com/dmitrijs2005/shoplist/internal/client/cli"
	"github.com/dmitrijs2005/shoplist/internal/client/config"
	"github.com/dmitrijs2005/shoplist/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	logger := logging.NewText(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, closeBackend, err := cli.NewBackend(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := closeBackend(); err != nil {
			logger.Warn(ctx, "closing backend", "error", err)
		}
	}()

	cli.NewApp(cfg, be, logger, os.Stdin, os.Stdout).Run(ctx)

}
