package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypingSet_SetAndClear(t *testing.T) {
	req := require.New(t)
	typing := NewTypingSet()

	req.False(typing.IsTyping("alice"))

	typing.Set("alice")
	req.True(typing.IsTyping("alice"))

	typing.Clear("alice")
	req.False(typing.IsTyping("alice"))
}

func TestTypingSet_Idempotent(t *testing.T) {
	req := require.New(t)
	typing := NewTypingSet()

	typing.Set("alice")
	typing.Set("alice")
	req.True(typing.IsTyping("alice"))

	typing.Clear("alice")
	typing.Clear("alice")
	req.False(typing.IsTyping("alice"))

	// Clearing a name that was never set is a no-op
	typing.Clear("bob")
	req.False(typing.IsTyping("bob"))
}

// The final event wins regardless of how many start/stop events preceded it.
func TestTypingSet_Convergence(t *testing.T) {
	req := require.New(t)
	typing := NewTypingSet()

	for i := 0; i < 7; i++ {
		typing.Set("alice")
		typing.Clear("alice")
		typing.Set("alice")
	}
	req.True(typing.IsTyping("alice"))

	typing.Clear("alice")
	req.False(typing.IsTyping("alice"))
}
