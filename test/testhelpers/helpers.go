// Package testhelpers provides common utilities for integration tests of the
// relay: dialing WebSocket clients, emitting envelope frames, and asserting
// on the events that come back.
package testhelpers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/driftchat/driftchat/internal/chat"
)

const readTimeout = 5 * time.Second

// WSURL converts an httptest server URL into the relay's WebSocket endpoint.
func WSURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

// WSClient is one connected chat participant in a test.
type WSClient struct {
	t    *testing.T
	conn *websocket.Conn
}

// Dial connects a WebSocket client to the relay and registers cleanup.
func Dial(t *testing.T, url string) *WSClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "dialing %s", url)
	t.Cleanup(func() { _ = conn.Close() })
	return &WSClient{t: t, conn: conn}
}

// Close shuts the connection down, triggering the relay's disconnect path.
func (c *WSClient) Close() {
	_ = c.conn.Close()
}

// Emit sends one envelope frame to the relay.
func (c *WSClient) Emit(event string, data any) {
	c.t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	frame, err := json.Marshal(chat.Envelope{Event: event, Data: raw})
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, frame))
}

// Join emits a join event for the username.
func (c *WSClient) Join(username string) {
	c.t.Helper()
	c.Emit(chat.EventJoin, chat.JoinData{Username: username})
}

func (c *WSClient) read() chat.Envelope {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(readTimeout)))
	_, frame, err := c.conn.ReadMessage()
	require.NoError(c.t, err, "reading frame")
	var env chat.Envelope
	require.NoError(c.t, json.Unmarshal(frame, &env))
	return env
}

// Expect reads frames until one carries the given event, failing on timeout.
// Frames for other events are skipped.
func (c *WSClient) Expect(event string) chat.Envelope {
	c.t.Helper()
	for {
		env := c.read()
		if env.Event == event {
			return env
		}
	}
}

// ExpectNext asserts that the very next frame carries the given event.
func (c *WSClient) ExpectNext(event string) chat.Envelope {
	c.t.Helper()
	env := c.read()
	require.Equal(c.t, event, env.Event, "next frame")
	return env
}

// Decode unmarshals an envelope payload into the given type.
func Decode[T any](t *testing.T, env chat.Envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
