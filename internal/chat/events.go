// Package chat implements the single-room relay core: the session registry,
// the typing tracker, the message normalizer, and the room actor that turns
// inbound client events into ordered room-wide broadcasts.
package chat

import (
	"encoding/json"
	"time"
)

// Inbound event names, as sent by clients.
const (
	EventJoin       = "join"
	EventMessage    = "message"
	EventReaction   = "reaction"
	EventTyping     = "typing"
	EventStopTyping = "stop-typing"
)

// Outbound event names, as emitted by the room.
const (
	EventConnected   = "connected"
	EventUserJoined  = "user-joined"
	EventUsersUpdate = "users-update"
	EventUserTyping  = "user-typing"
	EventUserLeft    = "user-left"
)

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinData is the payload of an inbound join event.
type JoinData struct {
	Username string `json:"username"`
}

// FileDescriptor describes one attachment carried inline on a message.
// The relay forwards descriptors as-is; only the count is capped.
type FileDescriptor struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Size    int64  `json:"size"`
	DataURL string `json:"dataUrl"`
}

// MessageData is the payload of an inbound message event. All fields are
// optional; the normalizer fills in defaults.
type MessageData struct {
	Text      string           `json:"text"`
	Files     []FileDescriptor `json:"files,omitempty"`
	MessageID string           `json:"messageId,omitempty"`
	ThreadID  string           `json:"threadId,omitempty"`
}

// ReactionData is the payload of an inbound reaction event. The message id
// is not validated against any message the room has seen.
type ReactionData struct {
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
}

// ConnectedData confirms a successful join to the joining connection only.
type ConnectedData struct {
	Username string `json:"username"`
}

// UserJoinedData announces a new member to the rest of the room.
type UserJoinedData struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
	UserCount int       `json:"userCount"`
}

// UserEntry is one roster line in a users-update event.
type UserEntry struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// UsersUpdateData carries the full roster at the moment it was computed.
type UsersUpdateData struct {
	Users []UserEntry `json:"users"`
	Count int         `json:"count"`
}

// Message is the canonical broadcast form of a chat message. It is immutable
// once built; the room never mutates a message after broadcasting it.
type Message struct {
	ID        string           `json:"id"`
	Username  string           `json:"username"`
	Text      string           `json:"text"`
	Files     []FileDescriptor `json:"files"`
	Timestamp time.Time        `json:"timestamp"`
	ThreadID  string           `json:"threadId,omitempty"`
}

// Reaction is the canonical broadcast form of a message reaction. Reactions
// are not deduplicated; identical repeats are all broadcast.
type Reaction struct {
	MessageID string    `json:"messageId"`
	Emoji     string    `json:"emoji"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// UserTypingData signals that a member started or stopped composing.
type UserTypingData struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// UserLeftData announces a departed member to the remaining room.
type UserLeftData struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
	UserCount int       `json:"userCount"`
}

// EncodeFrame marshals an outbound event into its wire envelope.
func EncodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
