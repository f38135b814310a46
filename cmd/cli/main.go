package main

import (
	"context"

	"github.com/mpetrovs/spendvault/internal/client/cli"
	"github.com/mpetrovs/spendvault/internal/client/config"
)

func main() {
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)
	defer app.Close()

	app.Run(context.Background())
}
