package chat

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// MaxFiles caps the number of attachments carried on one message. Entries
// beyond the cap are silently dropped, never rejected.
const MaxFiles = 5

// IDGenerator mints message identifiers. Implementations must produce ids
// that are unique for the lifetime of the process.
type IDGenerator interface {
	NextID() string
}

// saltedCounter combines a per-process random salt with a monotonic counter.
// Two messages normalized within the same clock tick still get distinct ids,
// and two processes started at the same instant cannot collide.
type saltedCounter struct {
	salt string
	seq  atomic.Uint64
}

// NewIDGenerator returns the default message id generator.
func NewIDGenerator() IDGenerator {
	return &saltedCounter{salt: uuid.NewString()}
}

func (g *saltedCounter) NextID() string {
	return g.salt + "-" + strconv.FormatUint(g.seq.Add(1), 10)
}

// Normalizer converts raw inbound message fields into canonical Messages.
// It performs no validation of file descriptor contents; malformed
// descriptors are forwarded as-is. Broadcast is the room's concern, content
// inspection is nobody's.
type Normalizer struct {
	ids IDGenerator
	now func() time.Time
}

// NewNormalizer creates a normalizer using the given id generator and clock.
func NewNormalizer(ids IDGenerator, now func() time.Time) *Normalizer {
	return &Normalizer{ids: ids, now: now}
}

// Normalize builds the canonical Message for a raw inbound payload:
// a caller-supplied non-empty messageId is used verbatim, otherwise a fresh
// id is generated; text defaults to empty; files are truncated to MaxFiles
// preserving order; an absent threadId stays the empty "no parent" marker.
func (n *Normalizer) Normalize(username string, raw MessageData) Message {
	id := raw.MessageID
	if id == "" {
		id = n.ids.NextID()
	}

	files := raw.Files
	if len(files) > MaxFiles {
		files = files[:MaxFiles]
	}
	if files == nil {
		files = []FileDescriptor{}
	}

	return Message{
		ID:        id,
		Username:  username,
		Text:      raw.Text,
		Files:     files,
		Timestamp: n.now(),
		ThreadID:  raw.ThreadID,
	}
}
