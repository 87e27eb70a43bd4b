package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/semsync/semsync/core"
	"github.com/semsync/semsync/core/calendar"
	"github.com/semsync/semsync/core/study"
	"github.com/semsync/semsync/core/user"
)

// Deps are the services & helpers the API handlers depend on.
type Deps struct {
	Logger      core.Logger
	Validate    *validator.Validate
	Translator  ut.Translator
	CalendarSvc *calendar.Service
	StudySvc    *study.Service
	UserSvc     *user.Service
}

type Server struct {
	conf     *core.Config
	deps     *Deps
	app      *echo.Echo
	errors   chan error
	shutdown chan os.Signal
}

var _ http.Handler = (*Server)(nil)

func NewServer(conf *core.Config, deps *Deps) *Server {
	s := &Server{
		conf:     conf,
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)

	s.app.GET("/", s.home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(newJWTConfig(s.conf))

	registerUserAPI(api, jwt, s.conf, s.deps)
	registerCalendarAPI(api.Group("/calendar", jwt), s.deps)
	registerStudyAPI(api, jwt, s.deps)
}

// Start listens on the configured address until the server is shut down.
// Listen errors are sent on Errors; SIGINT & SIGTERM on ShutdownSignal.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	s.deps.Logger.Info("API listening on " + s.conf.Server.Address)
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- errors.Wrap(err, "starting server")
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

// Shutdown stops the server gracefully, waiting for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

// Close stops the server immediately.
func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
