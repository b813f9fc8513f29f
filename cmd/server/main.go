// Command server runs the profilekeeper remote store.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/profilekeeper/internal/server"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
)

func run(ctx context.Context) error {
	app, err := server.NewApp(ctx, config.LoadConfig())
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
