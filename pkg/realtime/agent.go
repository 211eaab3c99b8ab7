// Package realtime implements the client side of the push protocol: a
// long-lived subscription to the event stream that survives transport
// failures by reconnecting after a fixed delay.
//
// The server guarantees nothing across a reconnect boundary: the same logical
// update may be told twice, or an update may be missed entirely. Consumers
// therefore get at-most-once delivery of deduplicated events and must treat
// anything received after a reconnect as independent of whatever was missed.
package realtime

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultRetryDelay is the fixed pause between reconnect attempts. Fixed, not
// exponential: the stream is cheap to re-open and a live map should come back
// quickly after a blip.
const DefaultRetryDelay = 2 * time.Second

// Event is one named frame received from the stream.
type Event struct {
	Name string
	Data json.RawMessage
}

// Handler receives each event that survives deduplication. It runs on the
// agent's goroutine; slow handlers delay the stream.
type Handler func(Event)

// Agent maintains one logical subscription to the push endpoint.
type Agent struct {
	endpoint   string
	token      string
	handler    Handler
	client     *http.Client
	clock      clockwork.Clock
	retryDelay time.Duration

	mu   sync.Mutex
	seen map[string]struct{}
}

// Option configures an Agent.
type Option func(*Agent)

// WithRetryDelay overrides the fixed reconnect delay.
func WithRetryDelay(d time.Duration) Option {
	return func(a *Agent) { a.retryDelay = d }
}

// WithHTTPClient overrides the HTTP client used to open the stream.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Agent) { a.client = c }
}

// WithClock overrides the clock used for reconnect pacing.
func WithClock(clock clockwork.Clock) Option {
	return func(a *Agent) { a.clock = clock }
}

// NewAgent creates an agent for the given push endpoint URL and credential.
func NewAgent(endpoint, token string, handler Handler, opts ...Option) *Agent {
	a := &Agent{
		endpoint:   endpoint,
		token:      token,
		handler:    handler,
		client:     http.DefaultClient,
		clock:      clockwork.NewRealClock(),
		retryDelay: DefaultRetryDelay,
		seen:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run connects and keeps the subscription alive until ctx is cancelled. Every
// transport failure, including a clean server close, is followed by the fixed
// retry delay and a fresh connection attempt, indefinitely.
func (a *Agent) Run(ctx context.Context) error {
	for {
		a.stream(ctx)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		timer := a.clock.NewTimer(a.retryDelay)
		select {
		case <-timer.Chan():
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// stream opens one connection and consumes frames until it breaks.
func (a *Agent) stream(ctx context.Context) {
	streamURL, err := a.buildURL()
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := a.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	var eventName string
	var dataLines []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case line == "":
			if eventName != "" {
				a.dispatch(Event{Name: eventName, Data: json.RawMessage(strings.Join(dataLines, "\n"))})
			}
			eventName = ""
			dataLines = nil
		}
	}
}

func (a *Agent) buildURL() (string, error) {
	u, err := url.Parse(a.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	// The credential travels in the request target; the transport forbids
	// custom headers.
	q := u.Query()
	q.Set("token", a.token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// dispatch applies deduplication and hands the event to the handler. Events
// whose payload carries an entity id are delivered once per (event, id) pair,
// because a reconnect can replay the same logical update.
func (a *Agent) dispatch(event Event) {
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data, &payload); err == nil && payload.ID != "" {
		key := event.Name + ":" + payload.ID
		a.mu.Lock()
		_, duplicate := a.seen[key]
		if !duplicate {
			a.seen[key] = struct{}{}
		}
		a.mu.Unlock()
		if duplicate {
			return
		}
	}

	if a.handler != nil {
		a.handler(event)
	}
}
