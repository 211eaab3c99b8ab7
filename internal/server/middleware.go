package server

import (
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/johnkhitrov-cpu/mappico/internal/errors"
)

// requireAuth authenticates JSON API requests via the Authorization header.
// The push endpoint has its own query-parameter path and does not use this.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return apperrors.UnauthorizedError("unauthorized", nil)
		}

		claims, err := s.tokens.Verify(token)
		if err != nil {
			return apperrors.UnauthorizedError("unauthorized", err)
		}

		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		return next(c)
	}
}

func currentUserID(c echo.Context) string {
	id, _ := c.Get("userID").(string)
	return id
}
