package sse

import (
	"log/slog"
	"sync"

	"github.com/johnkhitrov-cpu/mappico/internal/metrics"
)

type entry struct {
	userID string
	conn   *Connection
}

// Registry is the process-wide multimap from user identity to open push
// connections. A user may hold any number of simultaneous connections
// (multi-tab, multi-device). Go serves requests on real OS threads, so unlike
// a cooperatively scheduled runtime the registry must guard its state with a
// mutex.
//
// Lookups walk the whole slice; with connection counts in the low thousands
// per process that is cheap and keeps insertion order for dispatch.
type Registry struct {
	mu      sync.Mutex
	entries []entry
}

// NewRegistry creates an empty registry. One instance is constructed at
// process start and injected into the push endpoint and the dispatcher.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a connection. No uniqueness constraint: registering the
// same pair twice yields two entries.
func (r *Registry) Register(userID string, conn *Connection) {
	r.mu.Lock()
	r.entries = append(r.entries, entry{userID: userID, conn: conn})
	total := len(r.entries)
	r.mu.Unlock()

	metrics.SSEConnectionsTotal.Inc()
	metrics.SSEOpenConnections.Set(float64(total))
	slog.Info("Push client connected", "user_id", userID, "total", total)
}

// Unregister removes the first entry matching the (userID, conn) pair exactly,
// so closing one tab never unregisters a different tab of the same user. A
// missing pair is a no-op: callers may unregister twice, once from the abort
// signal and once from a later explicit close.
func (r *Registry) Unregister(userID string, conn *Connection) {
	r.mu.Lock()
	for i, e := range r.entries {
		if e.userID == userID && e.conn == conn {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			total := len(r.entries)
			r.mu.Unlock()

			metrics.SSEOpenConnections.Set(float64(total))
			slog.Info("Push client disconnected", "user_id", userID, "total", total)
			return
		}
	}
	r.mu.Unlock()
}

// ConnectionsFor returns every connection owned by a member of userIDs, in
// insertion order. Callers must not rely on the ordering.
func (r *Registry) ConnectionsFor(userIDs []string) []*Connection {
	targets := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		targets[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var conns []*Connection
	for _, e := range r.entries {
		if _, ok := targets[e.userID]; ok {
			conns = append(conns, e.conn)
		}
	}
	return conns
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Reset drops every entry. Test isolation only.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
	metrics.SSEOpenConnections.Set(0)
}
