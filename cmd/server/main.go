package main

import (
	"context"

	server "github.com/mpetrovs/spendvault/internal/server"
	"github.com/mpetrovs/spendvault/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	app.Run(context.Background())
}
