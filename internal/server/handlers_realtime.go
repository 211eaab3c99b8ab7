package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnkhitrov-cpu/mappico/internal/domain"
	apperrors "github.com/johnkhitrov-cpu/mappico/internal/errors"
	"github.com/johnkhitrov-cpu/mappico/internal/metrics"
	"github.com/johnkhitrov-cpu/mappico/internal/sse"
)

// handleRealtime is the push endpoint. It authenticates the request, registers
// a connection, streams an initial acknowledgment, and then pumps broadcast
// frames until the client disconnects.
//
// The credential arrives as a query parameter because EventSource cannot set
// custom headers. A bad credential gets a plain 401 JSON response; the stream
// is never opened.
func (s *Server) handleRealtime(c echo.Context) error {
	claims, err := s.tokens.Verify(c.QueryParam("token"))
	if err != nil {
		metrics.SSEAuthFailuresTotal.Inc()
		return apperrors.UnauthorizedError("unauthorized", err)
	}

	resp := c.Response()
	header := resp.Header()
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set(echo.HeaderCacheControl, "no-cache")
	header.Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)

	// The first frame always echoes the resolved identity so the client can
	// confirm which user the server attached to the channel.
	connected, err := sse.FormatFrame(domain.EventConnected, map[string]string{"userId": claims.UserID})
	if err != nil {
		return apperrors.InternalError("failed to serialize frame", err)
	}
	if _, err := resp.Write(connected); err != nil {
		return nil
	}
	resp.Flush()

	conn := sse.NewConnection(claims.UserID)
	s.registry.Register(claims.UserID, conn)

	// Both the disconnect path and the write-failure path run this; registry
	// removal and Close are idempotent.
	defer func() {
		s.registry.Unregister(claims.UserID, conn)
		conn.Close()
	}()

	ctx := c.Request().Context()
	for {
		select {
		case frame := <-conn.Frames():
			if _, err := resp.Write(frame); err != nil {
				return nil
			}
			resp.Flush()
		case <-ctx.Done():
			// Client-initiated disconnect; the only way out besides a dead
			// transport. No server-side idle timeout is applied.
			return nil
		case <-conn.Done():
			return nil
		}
	}
}
