// Package echoapi exposes the portal to the local presentation layer over HTTP.
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

	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/portal"
)

type Server struct {
	app      *echo.Echo
	conf     *core.Config
	errors   chan error
	shutdown chan os.Signal
}

var _ http.Handler = (*Server)(nil)

func NewServer(
	conf *core.Config,
	svc *portal.Service,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *Server {
	s := &Server{
		app:      echo.New(),
		conf:     conf,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup(svc, validate, translator, logger)
	return s
}

func (s *Server) setup(svc *portal.Service, validate *validator.Validate, translator ut.Translator, logger core.Logger) {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(logger, translator, svc.Viewer)
	s.app.Debug = s.conf.Debug

	api := portalApi{svc: svc, validate: validate}

	s.app.GET("/", api.home)
	s.app.POST("/refresh", api.refresh)

	available := availableMiddleware(svc)
	authed := []echo.MiddlewareFunc{available, viewerMiddleware(svc)}
	registerSessionAPI(s.app, api, available, authed)
	registerContentAPI(s.app, api, authed)
	registerAdminAPI(s.app, api, authed)
}

// Start serves until the server is shut down; unexpected failures are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error               { return s.errors }
func (s *Server) ShutdownSignal() <-chan os.Signal   { return s.shutdown }
func (s *Server) Shutdown(ctx context.Context) error { return s.app.Shutdown(ctx) }
func (s *Server) Close() error                       { return s.app.Close() }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
