package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/timeboard/internal/buildinfo"
	"github.com/dmitrijs2005/timeboard/internal/client/cli"
	"github.com/dmitrijs2005/timeboard/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("timeboard-cli: %v", err)
	}

	app.Run(context.Background())
}
