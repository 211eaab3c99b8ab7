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
	friendRequestLimit  = 10
	friendRequestWindow = time.Minute
)

type friendRequestPayload struct {
	Request  domain.FriendRequest `json:"request"`
	FromUser userResponse         `json:"fromUser"`
}

func (s *Server) handleFriendRequest(c echo.Context) error {
	userID := currentUserID(c)

	key := ratelimit.UserKey(userID, "/api/friends/request")
	if result := s.limiter.Allow(key, friendRequestLimit, friendRequestWindow); !result.OK {
		return rateLimitedResponse(c, result, "Too many friend requests. Try again in a minute.")
	}

	var req struct {
		ToEmail string `json:"toEmail"`
	}
	if err := c.Bind(&req); err != nil || req.ToEmail == "" {
		return apperrors.ValidationError("toEmail is required")
	}

	ctx := c.Request().Context()

	toUser, err := s.users.GetUserByEmail(ctx, req.ToEmail)
	if err != nil {
		return apperrors.NotFoundError("user not found")
	}
	if toUser.ID == userID {
		return apperrors.ValidationError("cannot send a friend request to yourself")
	}

	request := domain.FriendRequest{
		ID:         uuid.NewString(),
		FromUserID: userID,
		ToUserID:   toUser.ID,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.friends.CreateRequest(ctx, request); err != nil {
		if errors.Is(err, domain.ErrAlreadyFriends) {
			return apperrors.ConflictError("users are already friends")
		}
		return apperrors.InternalError("failed to create friend request", err)
	}

	fromUser, err := s.users.GetUser(ctx, userID)
	if err == nil {
		s.publisher.Broadcast([]string{toUser.ID}, domain.EventFriendRequest, friendRequestPayload{
			Request:  request,
			FromUser: userResponse{ID: fromUser.ID, Email: fromUser.Email, Name: fromUser.Name},
		})
	}

	return c.JSON(http.StatusCreated, map[string]domain.FriendRequest{"request": request})
}

func (s *Server) handleFriendAccept(c echo.Context) error {
	userID := currentUserID(c)

	var req struct {
		RequestID string `json:"requestId"`
	}
	if err := c.Bind(&req); err != nil || req.RequestID == "" {
		return apperrors.ValidationError("requestId is required")
	}

	ctx := c.Request().Context()

	request, err := s.friends.AcceptRequest(ctx, req.RequestID, userID)
	if err != nil {
		return apperrors.NotFoundError("friend request not found")
	}

	accepter, err := s.users.GetUser(ctx, userID)
	if err == nil {
		s.publisher.Broadcast([]string{request.FromUserID}, domain.EventFriendAccepted, map[string]any{
			"requestId": request.ID,
			"user":      userResponse{ID: accepter.ID, Email: accepter.Email, Name: accepter.Name},
		})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "accepted"})
}
