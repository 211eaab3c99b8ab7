package domain

import "context"

// UserStore persists accounts. Implementations must return ErrEmailTaken from
// CreateUser when the email is already registered.
type UserStore interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// PointStore persists map points.
type PointStore interface {
	CreatePoint(ctx context.Context, point Point) error
	GetPoint(ctx context.Context, id string) (Point, error)
	DeletePoint(ctx context.Context, id string) error
	PointsByUsers(ctx context.Context, userIDs []string) ([]Point, error)
}

// FriendStore persists friend requests and accepted friendships.
type FriendStore interface {
	CreateRequest(ctx context.Context, req FriendRequest) error
	// AcceptRequest completes the request only if toUserID is its recipient;
	// anyone else sees ErrRequestNotFound.
	AcceptRequest(ctx context.Context, requestID, toUserID string) (FriendRequest, error)
	// FriendIDs returns the ids of every accepted friend of the given user.
	FriendIDs(ctx context.Context, userID string) ([]string, error)
	AreFriends(ctx context.Context, a, b string) (bool, error)
}
