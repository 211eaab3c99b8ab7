package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Coarse per-IP guard across the whole API; the per-endpoint fixed-window
	// limits inside the write handlers are the real abuse control.
	api := s.echo.Group("/api", newRateLimiter(s.config.GlobalRatePerSecond, s.config.GlobalRateBurst))

	// Anonymous routes (rate limited per IP+email inside the handlers)
	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)

	// Push endpoint: credential travels as a query parameter because
	// EventSource cannot set headers. No bearer middleware here.
	api.GET("/realtime/points", s.handleRealtime)

	// Authenticated JSON API
	api.GET("/me", s.handleMe, s.requireAuth)
	api.GET("/points", s.handleListPoints, s.requireAuth)
	api.POST("/points", s.handleCreatePoint, s.requireAuth)
	api.DELETE("/points/:id", s.handleDeletePoint, s.requireAuth)
	api.GET("/points/friends", s.handleFriendsPoints, s.requireAuth)
	api.POST("/friends/request", s.handleFriendRequest, s.requireAuth)
	api.POST("/friends/accept", s.handleFriendAccept, s.requireAuth)
}
