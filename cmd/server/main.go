package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/shoplist/internal/buildinfo"
	"github.com/dmitrijs2005/shoplist/internal/server"
	"github.com/dmitrijs2005/shoplist/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
