package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/buildinfo"
	"github.com/dmitrijs2005/gophauth/internal/client/cli"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	args := flagx.RemoveArgs(os.Args[1:], []string{"-a", "-t", "-c", "-config", "--config"})
	if len(args) == 0 {
		buildinfo.PrintBuildData(os.Stdout)
	}

	if err := app.Run(ctx, args); err != nil {
		log.Fatalf("%v", err)
	}

}
