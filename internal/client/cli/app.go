// Package cli implements the interactive SpendVault client: a small REPL
// over the auth and data services. All plaintext stays inside this process;
// everything it sends leaves encrypted.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mpetrovs/spendvault/internal/client/api"
	"github.com/mpetrovs/spendvault/internal/client/auth"
	"github.com/mpetrovs/spendvault/internal/client/backup"
	"github.com/mpetrovs/spendvault/internal/client/config"
	"github.com/mpetrovs/spendvault/internal/client/data"
	"github.com/mpetrovs/spendvault/internal/client/session"
	"github.com/mpetrovs/spendvault/internal/logging"
	"github.com/mpetrovs/spendvault/internal/monthx"
)

// printNotifier surfaces data-layer notices directly on the terminal.
type printNotifier struct {
	w io.Writer
}

func (n printNotifier) Notify(msg string) {
	fmt.Fprintln(n.w, msg)
}

type App struct {
	config *config.Config
	auth   *auth.Service
	data   *data.Service
	backup *backup.Service
	logger logging.Logger

	store  session.Store
	reader *bufio.Reader
	out    io.Writer

	// month currently being viewed; list commands default to it
	month string
}

func NewApp(cfg *config.Config) *App {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	store := session.Open(cfg.SessionDBPath)
	manager := session.NewManager(store)
	client := api.NewClient(cfg.ServerEndpointAddr)
	out := os.Stdout

	app := &App{
		config: cfg,
		auth:   auth.NewService(client, manager, logger),
		data:   data.NewService(client, printNotifier{w: out}, logger),
		logger: logger,
		store:  store,
		reader: bufio.NewReader(os.Stdin),
		out:    out,
		month:  monthx.CurrentMonth(),
	}
	if cfg.Backup.Bucket != "" {
		app.backup = backup.NewService(cfg.Backup, logger)
	}
	return app
}

func (a *App) Close() {
	_ = a.store.Close()
}

func (a *App) isLoggedIn() bool {
	return a.auth.Active() != nil
}

// session adapts the active identity for the data layer. Nil when not
// logged in.
func (a *App) session() *data.Session {
	identity := a.auth.Active()
	if identity == nil {
		return nil
	}
	return &data.Session{
		UserID:    identity.UserID,
		SessionID: identity.SessionID,
		DataKey:   identity.DataKey(),
	}
}

func (a *App) status() string {
	identity := a.auth.Active()
	if identity == nil {
		return "not logged in"
	}
	return fmt.Sprintf("%s [%s]", identity.Email, a.month)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
