package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/youwenshao/staffroom/core"
	"github.com/youwenshao/staffroom/core/plan"
	"github.com/youwenshao/staffroom/core/user"
	"github.com/youwenshao/staffroom/storage/object"
)

// maxUploadSize caps request bodies on upload routes; oversized uploads
// are rejected up front, never truncated.
const maxUploadSize = "2M"

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool
		UserSvc        *user.Service
		PlanSvc        *plan.Service
		Uploader       *object.Uploader
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error

		// ShutdownSignal delivers the signal that should gracefully stop
		// the server: an OS signal, or SIGTERM raised internally when a
		// request hits an unrecoverable (core.IsShutdown) error.
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		auth     *sessionAuth
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		auth:     newSessionAuth(opts.Conf),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) logger() core.Logger { return s.opts.Logger }

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = s.httpErrorHandler
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/TOS.md", s.termsOfService)
	s.app.GET("/diagram-tool", s.diagramTool)

	// session endpoints
	s.app.GET("/signup", s.signupForm)
	s.app.POST("/signup", s.signup)
	s.app.GET("/login", s.loginForm)
	s.app.POST("/login", s.login)
	s.app.POST("/continue-as-guest", s.continueAsGuest)
	s.app.GET("/logout", s.logout)

	// blank forms with defaults are readable by guests
	s.app.GET("/create-lesson", s.createLessonForm, s.auth.RequireSession(AllowGuests))
	s.app.GET("/create-unit", s.createUnitForm, s.auth.RequireSession(AllowGuests))

	// anything that persists or retrieves stored plans is barred to guests
	gated := s.app.Group("", s.auth.RequireSession(DenyGuests))
	gated.GET("/dashboard", s.dashboard)
	gated.POST("/create-lesson", s.createLesson, middleware.BodyLimit(maxUploadSize))
	gated.POST("/create-unit", s.createUnit, middleware.BodyLimit(maxUploadSize))
	gated.GET("/lesson/:id", s.viewLesson)
	gated.GET("/unit/:id", s.viewUnit)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.logger().Fatal(fmt.Sprintf("server error: %v", err), err)
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// signalShutdown raises SIGTERM on the shutdown channel; a signal already
// pending is enough, so this never blocks.
func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
