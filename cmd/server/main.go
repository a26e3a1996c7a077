package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/timeboard/internal/buildinfo"
	"github.com/dmitrijs2005/timeboard/internal/server"
	"github.com/dmitrijs2005/timeboard/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("timeboard: %v", err)
	}

	app.Run(context.Background())
}
