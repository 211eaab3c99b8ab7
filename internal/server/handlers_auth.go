package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/johnkhitrov-cpu/mappico/internal/domain"
	apperrors "github.com/johnkhitrov-cpu/mappico/internal/errors"
	"github.com/johnkhitrov-cpu/mappico/internal/ratelimit"
)

const (
	registerLimit  = 5
	loginLimit     = 10
	authRateWindow = time.Minute
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func validateCredentials(req credentialsRequest) error {
	if !strings.Contains(req.Email, "@") {
		return apperrors.ValidationError("invalid email format")
	}
	if len(req.Password) < 8 {
		return apperrors.ValidationError("password must be at least 8 characters")
	}
	return nil
}

func (s *Server) handleRegister(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := validateCredentials(req); err != nil {
		return err
	}

	// Keyed per IP+email so one attacker cannot burn a target's budget from
	// many addresses without also burning their own.
	key := ratelimit.ClientKey(c.RealIP(), "/api/auth/register", req.Email)
	if result := s.limiter.Allow(key, registerLimit, authRateWindow); !result.OK {
		return rateLimitedResponse(c, result, "Too many registration attempts. Try again in a minute.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.InternalError("failed to hash password", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.users.CreateUser(c.Request().Context(), user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return apperrors.ConflictError("email already registered")
		}
		return apperrors.InternalError("failed to create user", err)
	}

	token, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		return apperrors.InternalError("failed to issue token", err)
	}

	return c.JSON(http.StatusCreated, authResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Email: user.Email, Name: user.Name},
	})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	key := ratelimit.ClientKey(c.RealIP(), "/api/auth/login", req.Email)
	if result := s.limiter.Allow(key, loginLimit, authRateWindow); !result.OK {
		return rateLimitedResponse(c, result, "Too many login attempts. Try again in a minute.")
	}

	user, err := s.users.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		// Same response as a wrong password: do not reveal which emails exist.
		return apperrors.UnauthorizedError("invalid email or password", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return apperrors.UnauthorizedError("invalid email or password", err)
	}

	token, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		return apperrors.InternalError("failed to issue token", err)
	}

	return c.JSON(http.StatusOK, authResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Email: user.Email, Name: user.Name},
	})
}

func (s *Server) handleMe(c echo.Context) error {
	user, err := s.users.GetUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return apperrors.NotFoundError("user not found")
	}
	return c.JSON(http.StatusOK, userResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}
