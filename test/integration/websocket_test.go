// Package integration exercises the relay end to end: real HTTP server, real
// WebSocket connections, and the full join/message/typing/disconnect flow.
package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftchat/driftchat/internal/chat"
	"github.com/driftchat/driftchat/internal/server"
	"github.com/driftchat/driftchat/test/testhelpers"
)

func startRelay(t *testing.T) string {
	t.Helper()
	t.Setenv("ALLOWED_ORIGINS", "*")

	cfg, err := server.LoadConfig()
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	room := chat.NewRoom("main", log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go room.Run(ctx)

	handler := server.NewHandler(room, cfg, log)
	ts := httptest.NewServer(handler.Routes())
	t.Cleanup(ts.Close)

	return testhelpers.WSURL(ts)
}

// The reference two-user session: alice and bob join, alice talks, bob
// types, alice leaves.
func TestTwoUserSession(t *testing.T) {
	req := require.New(t)
	url := startRelay(t)

	// Alice joins an empty room
	alice := testhelpers.Dial(t, url)
	alice.Join("alice")

	connected := testhelpers.Decode[chat.ConnectedData](t, alice.ExpectNext(chat.EventConnected))
	req.Equal("alice", connected.Username)
	update := testhelpers.Decode[chat.UsersUpdateData](t, alice.ExpectNext(chat.EventUsersUpdate))
	req.Equal(1, update.Count)

	// Bob joins; alice is told, bob is confirmed
	bob := testhelpers.Dial(t, url)
	bob.Join("bob")

	joined := testhelpers.Decode[chat.UserJoinedData](t, alice.ExpectNext(chat.EventUserJoined))
	req.Equal("bob", joined.Username)
	req.Equal(2, joined.UserCount)
	update = testhelpers.Decode[chat.UsersUpdateData](t, alice.ExpectNext(chat.EventUsersUpdate))
	req.Equal(2, update.Count)

	connected = testhelpers.Decode[chat.ConnectedData](t, bob.ExpectNext(chat.EventConnected))
	req.Equal("bob", connected.Username)
	update = testhelpers.Decode[chat.UsersUpdateData](t, bob.ExpectNext(chat.EventUsersUpdate))
	req.Equal(2, update.Count)
	req.ElementsMatch([]string{"alice", "bob"},
		[]string{update.Users[0].Username, update.Users[1].Username})

	// Alice speaks; both hear her, herself included
	alice.Emit(chat.EventMessage, chat.MessageData{Text: "hi"})
	for _, c := range []*testhelpers.WSClient{alice, bob} {
		msg := testhelpers.Decode[chat.Message](t, c.ExpectNext(chat.EventMessage))
		req.Equal("alice", msg.Username)
		req.Equal("hi", msg.Text)
		req.NotEmpty(msg.ID)
	}

	// Bob starts typing; only alice is told
	bob.Emit(chat.EventTyping, struct{}{})
	typing := testhelpers.Decode[chat.UserTypingData](t, alice.ExpectNext(chat.EventUserTyping))
	req.Equal("bob", typing.Username)
	req.True(typing.IsTyping)

	// Alice leaves; bob's very next frames are the departure and the new
	// roster, proving the typing event never echoed back to him
	alice.Close()
	left := testhelpers.Decode[chat.UserLeftData](t, bob.ExpectNext(chat.EventUserLeft))
	req.Equal("alice", left.Username)
	req.Equal(1, left.UserCount)
	update = testhelpers.Decode[chat.UsersUpdateData](t, bob.ExpectNext(chat.EventUsersUpdate))
	req.Equal(1, update.Count)
	req.Equal("bob", update.Users[0].Username)
}

func TestMessageBeforeJoinIsDropped(t *testing.T) {
	req := require.New(t)
	url := startRelay(t)

	witness := testhelpers.Dial(t, url)
	witness.Join("witness")
	witness.Expect(chat.EventUsersUpdate)

	// A connection that never joined sends a message
	stranger := testhelpers.Dial(t, url)
	stranger.Emit(chat.EventMessage, chat.MessageData{Text: "boo"})

	// The stranger then joins; the witness's next frames are only about the
	// join, never a message
	stranger.Join("late")
	joined := testhelpers.Decode[chat.UserJoinedData](t, witness.ExpectNext(chat.EventUserJoined))
	req.Equal("late", joined.Username)
	witness.ExpectNext(chat.EventUsersUpdate)
}

func TestFileCapOverTheWire(t *testing.T) {
	req := require.New(t)
	url := startRelay(t)

	sender := testhelpers.Dial(t, url)
	sender.Join("sender")
	sender.Expect(chat.EventUsersUpdate)

	files := make([]chat.FileDescriptor, 8)
	for i := range files {
		files[i] = chat.FileDescriptor{Name: string(rune('a' + i))}
	}
	sender.Emit(chat.EventMessage, chat.MessageData{Text: "attachments", Files: files})

	msg := testhelpers.Decode[chat.Message](t, sender.Expect(chat.EventMessage))
	req.Len(msg.Files, chat.MaxFiles)
	req.Equal("a", msg.Files[0].Name)
	req.Equal("e", msg.Files[4].Name)
}

func TestReactionRoundTrip(t *testing.T) {
	req := require.New(t)
	url := startRelay(t)

	alice := testhelpers.Dial(t, url)
	alice.Join("alice")
	alice.Expect(chat.EventUsersUpdate)
	bob := testhelpers.Dial(t, url)
	bob.Join("bob")
	bob.Expect(chat.EventUsersUpdate)

	bob.Emit(chat.EventReaction, chat.ReactionData{MessageID: "m-1", Emoji: "🎉"})

	for _, c := range []*testhelpers.WSClient{alice, bob} {
		reaction := testhelpers.Decode[chat.Reaction](t, c.Expect(chat.EventReaction))
		req.Equal("m-1", reaction.MessageID)
		req.Equal("🎉", reaction.Emoji)
		req.Equal("bob", reaction.Username)
	}
}

func TestRejoinReplacesUsername(t *testing.T) {
	req := require.New(t)
	url := startRelay(t)

	c := testhelpers.Dial(t, url)
	c.Join("first")
	c.Expect(chat.EventUsersUpdate)

	c.Join("second")
	c.ExpectNext(chat.EventConnected)
	update := testhelpers.Decode[chat.UsersUpdateData](t, c.Expect(chat.EventUsersUpdate))
	req.Equal(1, update.Count)
	req.Equal("second", update.Users[0].Username)
}
