package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/johnkhitrov-cpu/mappico/internal/auth"
	"github.com/johnkhitrov-cpu/mappico/internal/config"
	"github.com/johnkhitrov-cpu/mappico/internal/domain"
	apperrors "github.com/johnkhitrov-cpu/mappico/internal/errors"
	"github.com/johnkhitrov-cpu/mappico/internal/ratelimit"
	"github.com/johnkhitrov-cpu/mappico/internal/sse"
)

// Dependencies are the collaborators injected into the HTTP server. Registry,
// Limiter, and the stores are process-wide singletons constructed once in main.
type Dependencies struct {
	Users     domain.UserStore
	Points    domain.PointStore
	Friends   domain.FriendStore
	Registry  *sse.Registry
	Publisher domain.Publisher
	Limiter   *ratelimit.Store
	Tokens    *auth.TokenService
	Clock     clockwork.Clock
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	users     domain.UserStore
	points    domain.PointStore
	friends   domain.FriendStore
	registry  *sse.Registry
	publisher domain.Publisher
	limiter   *ratelimit.Store
	tokens    *auth.TokenService
	clock     clockwork.Clock
	startTime time.Time
}

func New(cfg *config.Config, deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.ErrorHandlingMiddleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		users:     deps.Users,
		points:    deps.Points,
		friends:   deps.Friends,
		registry:  deps.Registry,
		publisher: deps.Publisher,
		limiter:   deps.Limiter,
		tokens:    deps.Tokens,
		clock:     deps.Clock,
		startTime: deps.Clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
