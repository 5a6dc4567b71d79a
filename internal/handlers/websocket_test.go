package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"photofeed-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionCookie pulls the session cookie value the client holds for the
// test server.
func sessionCookie(t *testing.T, env *testEnv, c *http.Client) string {
	t.Helper()
	u, err := url.Parse(env.server.URL)
	require.NoError(t, err)
	for _, cookie := range c.Jar.Cookies(u) {
		if cookie.Name == "session" {
			return cookie.Value
		}
	}
	t.Fatal("no session cookie")
	return ""
}

func wsURL(env *testEnv, token string) string {
	return "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws?token=" + url.QueryEscape(token)
}

func TestWebSocketRequiresValidToken(t *testing.T) {
	env := setupTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(env, "garbage"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketFollowerReceivesNewPost(t *testing.T) {
	env := setupTestServer(t)

	alice := newClient(t)
	bob := newClient(t)
	registerUser(t, env, alice, "alice@example.com", "alice")
	registerUser(t, env, bob, "bob@example.com", "bob")

	// bob follows alice.
	resp := postForm(t, bob, env.server.URL+"/auth/add-friend", url.Values{"username": {"alice"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(env, sessionCookie(t, env, bob)), nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server side a moment to register the connection.
	time.Sleep(50 * time.Millisecond)

	createPost(t, env, alice, "fresh photo")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg services.WSMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "new_post", msg.Type)

	payload, ok := msg.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "fresh photo", payload["caption"])
	assert.Equal(t, "alice", payload["author"])
}

func TestWebSocketNonFollowerGetsNothing(t *testing.T) {
	env := setupTestServer(t)

	alice := newClient(t)
	carol := newClient(t)
	registerUser(t, env, alice, "alice@example.com", "alice")
	registerUser(t, env, carol, "carol@example.com", "carol")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(env, sessionCookie(t, env, carol)), nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)

	createPost(t, env, alice, "not for carol")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
