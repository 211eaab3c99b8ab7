package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Since(s.startTime).Seconds()
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	// Everything this process needs lives in memory; readiness reports the
	// state of the shared singletons instead of probing external systems.
	return c.JSON(http.StatusOK, map[string]any{
		"status":             "ready",
		"open_connections":   s.registry.Len(),
		"rate_limit_records": s.limiter.Len(),
	})
}
