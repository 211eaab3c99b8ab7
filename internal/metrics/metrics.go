package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Realtime fan-out metrics
var (
	// SSEOpenConnections tracks currently open push connections
	SSEOpenConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_open_connections",
			Help: "Currently open SSE push connections",
		},
	)

	// SSEConnectionsTotal tracks accepted push connections
	SSEConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sse_connections_total",
			Help: "Total accepted SSE push connections",
		},
	)

	// SSEAuthFailuresTotal tracks rejected push connection attempts
	SSEAuthFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sse_auth_failures_total",
			Help: "Push connection attempts rejected for bad credentials",
		},
	)

	// BroadcastsTotal tracks dispatched broadcast calls
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcasts_total",
			Help: "Broadcast dispatch calls by event name",
		},
		[]string{"event"},
	)

	// BroadcastFramesSentTotal tracks frames enqueued to connections
	BroadcastFramesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_frames_sent_total",
			Help: "Frames enqueued to push connections",
		},
	)

	// BroadcastFramesDroppedTotal tracks frames lost to slow or dead connections
	BroadcastFramesDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_frames_dropped_total",
			Help: "Frames dropped because a connection was closed or its buffer was full",
		},
	)
)

// Rate limiter metrics
var (
	// RateLimitChecksTotal tracks limiter decisions by outcome (allowed/rejected)
	RateLimitChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_checks_total",
			Help: "Rate limit checks by outcome",
		},
		[]string{"outcome"},
	)

	// RateLimitStoreSize tracks live records in the rate limit store
	RateLimitStoreSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limit_store_size",
			Help: "Live records in the rate limit store",
		},
	)

	// RateLimitSweepsTotal tracks background expiry sweeps
	RateLimitSweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_sweeps_total",
			Help: "Background sweeps of expired rate limit records",
		},
	)
)
