package chat

import (
	"time"

	"github.com/samber/lo"
)

// Session records the presence of one joined connection. Sessions are owned
// by the Registry and leave it only as read-only copies.
type Session struct {
	ConnID   string
	Username string
	JoinedAt time.Time
}

// Registry maps live connections to their sessions and is the source of
// truth for room membership. It is not safe for concurrent use; the owning
// Room serializes all access through its event loop.
type Registry struct {
	sessions map[string]Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Join creates and stores a session for the connection, replacing any prior
// session for the same connection id. A second join is a silent re-join, not
// an error. An empty username is stored verbatim.
func (r *Registry) Join(connID, username string, at time.Time) Session {
	s := Session{ConnID: connID, Username: username, JoinedAt: at}
	r.sessions[connID] = s
	return s
}

// Lookup returns the session for the connection, if one exists.
func (r *Registry) Lookup(connID string) (Session, bool) {
	s, ok := r.sessions[connID]
	return s, ok
}

// Remove deletes and returns the session for the connection. The second
// return value is false when the connection never joined or already left.
func (r *Registry) Remove(connID string) (Session, bool) {
	s, ok := r.sessions[connID]
	if ok {
		delete(r.sessions, connID)
	}
	return s, ok
}

// Snapshot returns a point-in-time roster of all present sessions. The order
// is arbitrary but fixed within the returned slice.
func (r *Registry) Snapshot() []UserEntry {
	return lo.MapToSlice(r.sessions, func(_ string, s Session) UserEntry {
		return UserEntry{Username: s.Username, ID: s.ConnID}
	})
}

// Count reports the number of live sessions.
func (r *Registry) Count() int {
	return len(r.sessions)
}
