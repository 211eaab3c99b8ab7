package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/johnkhitrov-cpu/mappico/internal/metrics"
)

// FormatFrame serializes one server-sent event frame. The payload is
// serialized exactly once per broadcast, not once per connection.
func FormatFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event, data), nil
}

// Broadcaster routes mutation events to the connections of the targeted users.
type Broadcaster struct {
	registry *Registry
}

// NewBroadcaster creates a dispatcher over the given registry.
func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{registry: registry}
}

// Broadcast delivers one event to every open connection of the targeted users.
// Fire-and-forget: a failure on one connection is logged and does not abort
// delivery to the rest, and the caller is never told how many recipients were
// reached. The write-path caller has already committed its storage mutation;
// failing its request over a notification would be worse than a stale tab.
func (b *Broadcaster) Broadcast(userIDs []string, event string, payload any) {
	if len(userIDs) == 0 {
		return
	}

	frame, err := FormatFrame(event, payload)
	if err != nil {
		slog.Error("Failed to serialize broadcast frame", "event", event, "error", err)
		return
	}

	metrics.BroadcastsTotal.WithLabelValues(event).Inc()

	delivered := 0
	conns := b.registry.ConnectionsFor(userIDs)
	for _, conn := range conns {
		if err := conn.Send(frame); err != nil {
			metrics.BroadcastFramesDroppedTotal.Inc()
			slog.Warn("Failed to deliver frame", "event", event, "user_id", conn.UserID(), "error", err)
			continue
		}
		delivered++
		metrics.BroadcastFramesSentTotal.Inc()
	}

	slog.Debug("Broadcast dispatched", "event", event, "targets", len(userIDs), "connections", len(conns), "delivered", delivered)
}
