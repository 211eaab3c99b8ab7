package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	creds := map[string]string{"email": "alice@example.com", "password": "correct-horse", "name": "Alice"}

	resp := env.request(t, http.MethodPost, "/api/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered authResponse
	decodeBody(t, resp, &registered)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice@example.com", registered.User.Email)
	assert.Equal(t, "Alice", registered.User.Name)

	resp = env.request(t, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loggedIn authResponse
	decodeBody(t, resp, &loggedIn)
	assert.NotEmpty(t, loggedIn.Token)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	env.request(t, http.MethodPost, "/api/auth/register",
		"", map[string]string{"email": "bob@example.com", "password": "correct-horse"})

	// Wrong password and unknown email read identically.
	resp := env.request(t, http.MethodPost, "/api/auth/login",
		"", map[string]string{"email": "bob@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.request(t, http.MethodPost, "/api/auth/login",
		"", map[string]string{"email": "nobody@example.com", "password": "correct-horse"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodPost, "/api/auth/register",
		"", map[string]string{"email": "not-an-email", "password": "correct-horse"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.request(t, http.MethodPost, "/api/auth/register",
		"", map[string]string{"email": "carol@example.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	creds := map[string]string{"email": "dave@example.com", "password": "correct-horse"}
	resp := env.request(t, http.MethodPost, "/api/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.request(t, http.MethodPost, "/api/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegisterRateLimited(t *testing.T) {
	env := newTestEnv(t)

	creds := map[string]string{"email": "eve@example.com", "password": "correct-horse"}

	// Failed attempts consume the budget too: one 201 then four 409s.
	for i := 0; i < 5; i++ {
		resp := env.request(t, http.MethodPost, "/api/auth/register", "", creds)
		require.NotEqual(t, http.StatusTooManyRequests, resp.StatusCode, "attempt %d", i+1)
	}

	resp := env.request(t, http.MethodPost, "/api/auth/register", "", creds)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
	assert.Equal(t, "5", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
}

func TestLoginRateLimitResetsAfterWindow(t *testing.T) {
	env := newTestEnv(t)

	creds := map[string]string{"email": "frank@example.com", "password": "wrong-password"}
	for i := 0; i < 10; i++ {
		resp := env.request(t, http.MethodPost, "/api/auth/login", "", creds)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := env.request(t, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	env.clock.Advance(time.Minute + time.Second)

	// Fresh window: back to failing on credentials, not on the limiter.
	resp = env.request(t, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "grace@example.com")

	resp := env.request(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me userResponse
	decodeBody(t, resp, &me)
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, user.Email, me.Email)

	resp = env.request(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.request(t, http.MethodGet, "/api/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
