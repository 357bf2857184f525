package chat

// TypingSet tracks which usernames are currently composing a message. The
// set is room-wide: a username appears at most once no matter how many
// connections share it. Like the Registry, it is serialized by the owning
// Room and must not be shared across goroutines.
type TypingSet struct {
	names map[string]struct{}
}

// NewTypingSet creates an empty typing set.
func NewTypingSet() *TypingSet {
	return &TypingSet{names: make(map[string]struct{})}
}

// Set marks the username as typing. Idempotent.
func (t *TypingSet) Set(username string) {
	t.names[username] = struct{}{}
}

// Clear removes the username. A no-op when absent.
func (t *TypingSet) Clear(username string) {
	delete(t.names, username)
}

// IsTyping reports whether the username is currently marked as typing.
func (t *TypingSet) IsTyping(username string) bool {
	_, ok := t.names[username]
	return ok
}
