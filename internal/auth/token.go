// Package auth issues and verifies the signed tokens that identify users on
// both the JSON API (Authorization header) and the push endpoint (query
// parameter, because EventSource cannot set custom headers).
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/johnkhitrov-cpu/mappico/internal/domain"
)

const tokenTTL = 7 * 24 * time.Hour

// Claims is the payload carried by every token.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 tokens with a shared secret.
type TokenService struct {
	secret []byte
	clock  clockwork.Clock
}

// NewTokenService fails loudly on a missing secret so a misconfigured process
// never starts handing out unverifiable connections.
func NewTokenService(secret string, clock clockwork.Clock) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is not configured")
	}
	return &TokenService{secret: []byte(secret), clock: clock}, nil
}

// Sign issues a token for the given user, valid for seven days.
func (s *TokenService) Sign(userID, email string) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. Every failure mode (malformed, bad
// signature, expired, wrong algorithm) collapses into domain.ErrInvalidToken
// so the underlying cause never leaks to the client.
func (s *TokenService) Verify(tokenString string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return Claims{}, domain.ErrInvalidToken
	}
	if claims.UserID == "" {
		return Claims{}, domain.ErrInvalidToken
	}
	return claims, nil
}
