package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/logging"
	"github.com/mpetrovs/spendvault/internal/server/services"
)

// Server binds the wire contract to the services.
type Server struct {
	echo     *echo.Echo
	addr     string
	logger   logging.Logger
	sessions *services.SessionService
	users    *services.UserService
	records  *services.RecordService
	data     *services.DataService
}

func NewServer(addr string, logger logging.Logger,
	sessions *services.SessionService, users *services.UserService,
	records *services.RecordService, data *services.DataService) *Server {

	s := &Server{
		echo:     echo.New(),
		addr:     addr,
		logger:   logger,
		sessions: sessions,
		users:    users,
		records:  records,
		data:     data,
	}

	s.echo.HideBanner = true
	s.echo.Use(middleware.Recover())
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	e.POST("/session", s.startLogin)
	e.PATCH("/session", s.verifySession)
	e.DELETE("/session", s.deleteSession)

	e.POST("/user", s.signup)
	e.PATCH("/user", s.updateUser)
	e.DELETE("/user", s.deleteUser)

	e.GET("/budgets", s.listBudgets)
	e.POST("/budgets", s.createBudget)
	e.PATCH("/budgets", s.updateBudget)
	e.DELETE("/budgets", s.deleteBudget)

	e.GET("/expenses", s.listExpenses)
	e.POST("/expenses", s.createExpense)
	e.PATCH("/expenses", s.updateExpense)
	e.DELETE("/expenses", s.deleteExpense)

	e.POST("/data", s.importData)
	e.DELETE("/data", s.wipeData)
}

// Handler exposes the configured router (httptest needs it).
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// authorized re-validates the session on every authenticated call. On
// failure it writes the error response and returns false; the handler must
// stop.
func (s *Server) authorized(c echo.Context, sessionID, userID string) bool {
	if sessionID == "" || userID == "" {
		_ = writeError(c, common.ErrUnauthorized)
		return false
	}
	if _, err := s.sessions.Authorize(c.Request().Context(), sessionID, userID); err != nil {
		_ = writeError(c, err)
		return false
	}
	return true
}
