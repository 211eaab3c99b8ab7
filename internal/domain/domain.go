// Package domain holds the core entities and the interfaces the realtime core
// expects from its collaborators (storage, credential verification, fan-out).
package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPointNotFound   = errors.New("point not found")
	ErrRequestNotFound = errors.New("friend request not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrAlreadyFriends  = errors.New("users are already friends")
	ErrInvalidToken    = errors.New("invalid or expired token")
)

// User is an account in the location-sharing app. PasswordHash is a bcrypt
// hash, never the plaintext password.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Point is a map point placed by a user.
type Point struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FriendRequest is a pending friendship between two users. Accepting it makes
// the friendship mutual.
type FriendRequest struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	CreatedAt  time.Time `json:"createdAt"`
}
