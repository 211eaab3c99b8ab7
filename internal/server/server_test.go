package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/johnkhitrov-cpu/mappico/internal/auth"
	"github.com/johnkhitrov-cpu/mappico/internal/config"
	"github.com/johnkhitrov-cpu/mappico/internal/domain"
	"github.com/johnkhitrov-cpu/mappico/internal/memstore"
	"github.com/johnkhitrov-cpu/mappico/internal/ratelimit"
	"github.com/johnkhitrov-cpu/mappico/internal/sse"
)

const testJWTSecret = "test-secret-0123456789"

type testEnv struct {
	server   *Server
	store    *memstore.Store
	registry *sse.Registry
	limiter  *ratelimit.Store
	tokens   *auth.TokenService
	clock    *clockwork.FakeClock
	ts       *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := clockwork.NewFakeClock()
	tokens, err := auth.NewTokenService(testJWTSecret, clock)
	require.NoError(t, err)

	registry := sse.NewRegistry()
	t.Cleanup(registry.Reset)

	limiter := ratelimit.NewStore(clock, ratelimit.DefaultSweepInterval)
	t.Cleanup(limiter.Stop)

	store := memstore.New()

	cfg := &config.Config{
		AppEnv:    "test",
		Port:      "0",
		JWTSecret: testJWTSecret,
		LogLevel:  "error",
		LogFormat: "text",
		// Generous global guard so only the per-endpoint limits matter here.
		GlobalRatePerSecond: 10000,
		GlobalRateBurst:     10000,
	}

	srv := New(cfg, Dependencies{
		Users:     store,
		Points:    store,
		Friends:   store,
		Registry:  registry,
		Publisher: sse.NewBroadcaster(registry),
		Limiter:   limiter,
		Tokens:    tokens,
		Clock:     clock,
	})

	ts := httptest.NewServer(srv.echo)
	t.Cleanup(ts.Close)

	return &testEnv{
		server:   srv,
		store:    store,
		registry: registry,
		limiter:  limiter,
		tokens:   tokens,
		clock:    clock,
		ts:       ts,
	}
}

// createUser inserts a user directly into the store and returns it together
// with a valid bearer token.
func (env *testEnv) createUser(t *testing.T, email string) (domain.User, string) {
	t.Helper()

	user := domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: env.clock.Now(),
	}
	require.NoError(t, env.store.CreateUser(context.Background(), user))

	token, err := env.tokens.Sign(user.ID, user.Email)
	require.NoError(t, err)
	return user, token
}

// makeFriends creates and accepts a friend request between two users.
func (env *testEnv) makeFriends(t *testing.T, a, b domain.User) {
	t.Helper()

	req := domain.FriendRequest{
		ID:         uuid.NewString(),
		FromUserID: a.ID,
		ToUserID:   b.ID,
		CreatedAt:  env.clock.Now(),
	}
	require.NoError(t, env.store.CreateRequest(context.Background(), req))
	_, err := env.store.AcceptRequest(context.Background(), req.ID, b.ID)
	require.NoError(t, err)
}

func (env *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, env.ts.URL+path, payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// openStream connects to the push endpoint and returns a reader positioned
// after the HTTP response headers.
func (env *testEnv) openStream(t *testing.T, token string) (*http.Response, *bufio.Reader) {
	t.Helper()

	resp, err := env.ts.Client().Get(fmt.Sprintf("%s/api/realtime/points?token=%s", env.ts.URL, token))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp, bufio.NewReader(resp.Body)
}

// readFrame reads one SSE frame (up to and including the blank line).
func readFrame(t *testing.T, reader *bufio.Reader) (event, data string) {
	t.Helper()

	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "":
			return event, data
		}
	}
}
