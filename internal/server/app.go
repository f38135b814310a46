// Package server initializes and runs the vault server: it opens the record
// store, runs migrations, wires services to the HTTP endpoint, and handles
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mpetrovs/spendvault/internal/logging"
	"github.com/mpetrovs/spendvault/internal/server/config"
	"github.com/mpetrovs/spendvault/internal/server/httpapi"
	"github.com/mpetrovs/spendvault/internal/server/mailer"
	"github.com/mpetrovs/spendvault/internal/server/repositories/repomanager"
	"github.com/mpetrovs/spendvault/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	sender := mailer.NewLogSender(logger)

	sessionService := services.NewSessionService(db, repos, sender, c)
	userService := services.NewUserService(db, repos, sender, sessionService, c)
	recordService := services.NewRecordService(db, repos)
	dataService := services.NewDataService(db, repos, sender, c)

	server := httpapi.NewServer(c.EndpointAddr, logger,
		sessionService, userService, recordService, dataService)

	return &App{config: c, logger: logger, db: db, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "server error", "err", err.Error())
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "err", err.Error())
	}
}
