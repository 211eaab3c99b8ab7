package domain

// Publisher is the fan-out surface exposed to write-path handlers. Broadcast is
// fire-and-forget: it never reports how many recipients actually received the
// event, and a caller must not fail its own request because delivery was
// partial. Delivery is best-effort, at-most-once.
type Publisher interface {
	Broadcast(userIDs []string, event string, payload any)
}

// Event names pushed over the realtime channel.
const (
	EventConnected      = "connected"
	EventPointCreated   = "point_created"
	EventPointDeleted   = "point_deleted"
	EventFriendRequest  = "friend_request"
	EventFriendAccepted = "friend_accepted"
)
