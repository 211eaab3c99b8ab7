package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnkhitrov-cpu/mappico/internal/domain"
)

func TestFriendRequestAndAcceptFlow(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.createUser(t, "alice@example.com")
	bob, bobToken := env.createUser(t, "bob@example.com")

	// Bob is listening; Alice is not connected at all.
	_, bobStream := env.openStream(t, bobToken)
	readFrame(t, bobStream)
	waitForConnections(t, env, 1)

	resp := env.request(t, http.MethodPost, "/api/friends/request", aliceToken,
		map[string]string{"toEmail": "bob@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Request domain.FriendRequest `json:"request"`
	}
	decodeBody(t, resp, &created)
	assert.Equal(t, alice.ID, created.Request.FromUserID)
	assert.Equal(t, bob.ID, created.Request.ToUserID)

	// Bob is told about the request, along with who sent it.
	event, data := readFrame(t, bobStream)
	assert.Equal(t, "friend_request", event)

	var notification friendRequestPayload
	require.NoError(t, json.Unmarshal([]byte(data), &notification))
	assert.Equal(t, created.Request.ID, notification.Request.ID)
	assert.Equal(t, "alice@example.com", notification.FromUser.Email)

	resp = env.request(t, http.MethodPost, "/api/friends/accept", bobToken,
		map[string]string{"requestId": created.Request.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	friends, err := env.store.FriendIDs(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, friends)
}

func TestFriendRequestValidation(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.createUser(t, "alice@example.com")
	bob, _ := env.createUser(t, "bob@example.com")

	resp := env.request(t, http.MethodPost, "/api/friends/request", aliceToken,
		map[string]string{"toEmail": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.request(t, http.MethodPost, "/api/friends/request", aliceToken,
		map[string]string{"toEmail": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.makeFriends(t, alice, bob)
	resp = env.request(t, http.MethodPost, "/api/friends/request", aliceToken,
		map[string]string{"toEmail": "bob@example.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFriendAcceptOnlyByRecipient(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.createUser(t, "alice@example.com")
	_, _ = env.createUser(t, "bob@example.com")

	resp := env.request(t, http.MethodPost, "/api/friends/request", aliceToken,
		map[string]string{"toEmail": "bob@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Request domain.FriendRequest `json:"request"`
	}
	decodeBody(t, resp, &created)

	// The sender cannot accept their own request.
	resp = env.request(t, http.MethodPost, "/api/friends/accept", aliceToken,
		map[string]string{"requestId": created.Request.ID})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFriendRequestRateLimited(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.createUser(t, "alice@example.com")

	// Misses consume the budget just like hits.
	for i := 0; i < 10; i++ {
		resp := env.request(t, http.MethodPost, "/api/friends/request", aliceToken,
			map[string]string{"toEmail": "nobody@example.com"})
		require.Equal(t, http.StatusNotFound, resp.StatusCode, "attempt %d", i+1)
	}

	resp := env.request(t, http.MethodPost, "/api/friends/request", aliceToken,
		map[string]string{"toEmail": "nobody@example.com"})
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
}
