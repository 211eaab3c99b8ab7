// Package ratelimit implements the fixed-window rate limiting consulted by
// every write path before it touches storage.
//
// A fixed window fully resets at each boundary, so up to 2x the limit can land
// in a short span straddling a boundary. That coarseness is accepted in
// exchange for a constant-memory counter per key.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/johnkhitrov-cpu/mappico/internal/metrics"
)

// DefaultSweepInterval is how often expired records are garbage collected.
const DefaultSweepInterval = 5 * time.Minute

// Result is the outcome of a single rate limit check. Rejection is a value,
// not an error: callers must check OK explicitly and translate a false into
// their own throttling response.
type Result struct {
	OK            bool
	RetryAfterSec int
	Limit         int
	Remaining     int
}

type record struct {
	count   int
	resetAt time.Time
}

// Store is a keyed table of fixed-window counters. It is process-local by
// design: behind a load balancer every instance keeps its own budget, which is
// a documented scaling limitation, not a bug to patch here.
type Store struct {
	clock clockwork.Clock

	mu      sync.Mutex
	records map[string]*record

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewStore creates a store and starts its background sweep. Callers own the
// store for the process lifetime and must call Stop on shutdown.
func NewStore(clock clockwork.Clock, sweepInterval time.Duration) *Store {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	s := &Store{
		clock:   clock,
		records: make(map[string]*record),
		stopCh:  make(chan struct{}),
	}
	go s.sweepLoop(sweepInterval)
	return s
}

// Allow counts one request against key. The first call for a key, or the first
// call after the window elapsed, opens a fresh window. The count keeps growing
// past the limit so that RetryAfterSec stays accurate for rejected callers.
func (s *Store) Allow(key string, limit int, window time.Duration) Result {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || now.After(rec.resetAt) {
		s.records[key] = &record{count: 1, resetAt: now.Add(window)}
		metrics.RateLimitChecksTotal.WithLabelValues("allowed").Inc()
		metrics.RateLimitStoreSize.Set(float64(len(s.records)))
		return Result{OK: true, Limit: limit, Remaining: limit - 1}
	}

	rec.count++

	if rec.count > limit {
		retryAfter := int(math.Ceil(rec.resetAt.Sub(now).Seconds()))
		metrics.RateLimitChecksTotal.WithLabelValues("rejected").Inc()
		return Result{OK: false, RetryAfterSec: retryAfter, Limit: limit}
	}

	metrics.RateLimitChecksTotal.WithLabelValues("allowed").Inc()
	return Result{OK: true, Limit: limit, Remaining: limit - rec.count}
}

// Len returns the number of live records, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Reset drops every record. Test isolation only.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*record)
	metrics.RateLimitStoreSize.Set(0)
}

// Stop terminates the background sweep. Safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *Store) sweepLoop(interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep deletes every record whose window has already elapsed, bounding memory
// growth from one-off keys such as per-IP keys of transient visitors.
func (s *Store) sweep() {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, rec := range s.records {
		if now.After(rec.resetAt) {
			delete(s.records, key)
		}
	}
	metrics.RateLimitSweepsTotal.Inc()
	metrics.RateLimitStoreSize.Set(float64(len(s.records)))
}
