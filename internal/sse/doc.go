// Package sse implements the process-wide registry of open push connections
// and the broadcast dispatcher that fans mutation events out to them.
//
// Delivery is best-effort and at-most-once: a frame that cannot be handed to a
// connection is dropped and logged, never retried or buffered for later. The
// registry and dispatcher are single-process by design; running multiple
// instances behind a load balancer partitions delivery.
package sse
