package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnkhitrov-cpu/mappico/internal/domain"
	apperrors "github.com/johnkhitrov-cpu/mappico/internal/errors"
	"github.com/johnkhitrov-cpu/mappico/internal/ratelimit"
)

const (
	createPointLimit = 30
	pointRateWindow  = time.Minute
	maxTitleLength   = 100
	maxDescLength    = 500
)

type createPointRequest struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
}

func (req createPointRequest) validate() error {
	if req.Lat < -90 || req.Lat > 90 {
		return apperrors.ValidationError("lat must be between -90 and 90")
	}
	if req.Lng < -180 || req.Lng > 180 {
		return apperrors.ValidationError("lng must be between -180 and 180")
	}
	if req.Title == "" || len(req.Title) > maxTitleLength {
		return apperrors.ValidationError("title must be between 1 and 100 characters")
	}
	if len(req.Description) > maxDescLength {
		return apperrors.ValidationError("description must be at most 500 characters")
	}
	return nil
}

func (s *Server) handleCreatePoint(c echo.Context) error {
	userID := currentUserID(c)

	// The limiter is consulted before any storage mutation.
	key := ratelimit.UserKey(userID, "/api/points")
	if result := s.limiter.Allow(key, createPointLimit, pointRateWindow); !result.OK {
		return rateLimitedResponse(c, result, "Too many points created. Try again in a minute.")
	}

	var req createPointRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	point := domain.Point{
		ID:          uuid.NewString(),
		UserID:      userID,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   s.clock.Now(),
	}

	ctx := c.Request().Context()
	if err := s.points.CreatePoint(ctx, point); err != nil {
		return apperrors.InternalError("failed to create point", err)
	}

	// Storage is committed; the fan-out is a notification convenience and
	// must not fail this request.
	if friendIDs, err := s.friends.FriendIDs(ctx, userID); err == nil {
		s.publisher.Broadcast(friendIDs, domain.EventPointCreated, point)
	}

	return c.JSON(http.StatusCreated, map[string]domain.Point{"point": point})
}

func (s *Server) handleDeletePoint(c echo.Context) error {
	userID := currentUserID(c)
	ctx := c.Request().Context()

	point, err := s.points.GetPoint(ctx, c.Param("id"))
	if err != nil || point.UserID != userID {
		// A foreign point reads as absent, not forbidden.
		return apperrors.NotFoundError("point not found")
	}

	if err := s.points.DeletePoint(ctx, point.ID); err != nil {
		if errors.Is(err, domain.ErrPointNotFound) {
			return apperrors.NotFoundError("point not found")
		}
		return apperrors.InternalError("failed to delete point", err)
	}

	if friendIDs, err := s.friends.FriendIDs(ctx, userID); err == nil {
		s.publisher.Broadcast(friendIDs, domain.EventPointDeleted, map[string]string{"id": point.ID})
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListPoints(c echo.Context) error {
	points, err := s.points.PointsByUsers(c.Request().Context(), []string{currentUserID(c)})
	if err != nil {
		return apperrors.InternalError("failed to list points", err)
	}
	return c.JSON(http.StatusOK, map[string][]domain.Point{"points": points})
}

func (s *Server) handleFriendsPoints(c echo.Context) error {
	ctx := c.Request().Context()

	friendIDs, err := s.friends.FriendIDs(ctx, currentUserID(c))
	if err != nil {
		return apperrors.InternalError("failed to resolve friends", err)
	}

	points, err := s.points.PointsByUsers(ctx, friendIDs)
	if err != nil {
		return apperrors.InternalError("failed to list points", err)
	}
	return c.JSON(http.StatusOK, map[string][]domain.Point{"points": points})
}
