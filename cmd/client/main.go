// Command client is the interactive profilekeeper shell.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/profilekeeper/internal/client/cli"
	"github.com/dmitrijs2005/profilekeeper/internal/client/config"
)

func main() {
	ctx := context.Background()

	app, err := cli.NewApp(ctx, config.LoadConfig())
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	if err := app.Run(ctx); err != nil {
		log.Fatalf("client: %v", err)
	}
}
