package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Sink is the room's view of one connection's outbound side. Send must not
// block: implementations enqueue onto a bounded buffer and report false when
// the frame cannot be accepted, so a slow connection never stalls a
// broadcast to the others.
type Sink interface {
	ID() string
	Send(frame []byte) bool
}

// inbound is one transport-delivered event awaiting the room loop. The
// disconnect flag marks the implicit disconnect signal, which has no event
// name or payload of its own.
type inbound struct {
	from       Sink
	event      string
	data       json.RawMessage
	disconnect bool
}

// Room is the broadcast scope for all joined connections. It owns the
// Registry, the TypingSet, and the Normalizer, and mediates every mutation
// through a single event loop: each inbound event is handled as one
// indivisible [mutate, snapshot, enqueue sends] step, so no roster or typing
// broadcast is ever computed against a half-applied state.
type Room struct {
	name     string
	registry *Registry
	typing   *TypingSet
	norm     *Normalizer
	ids      IDGenerator
	members  map[string]Sink
	inbound  chan inbound
	done     chan struct{}
	now      func() time.Time
	log      *slog.Logger
}

// Option customizes a Room.
type Option func(*Room)

// WithClock replaces the room's wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Room) { r.now = now }
}

// WithIDGenerator replaces the message id generator, for tests.
func WithIDGenerator(ids IDGenerator) Option {
	return func(r *Room) { r.ids = ids }
}

// NewRoom creates a room. The room does nothing until Run is called.
func NewRoom(name string, log *slog.Logger, opts ...Option) *Room {
	r := &Room{
		name:     name,
		registry: NewRegistry(),
		typing:   NewTypingSet(),
		members:  make(map[string]Sink),
		inbound:  make(chan inbound, 64),
		done:     make(chan struct{}),
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.ids == nil {
		r.ids = NewIDGenerator()
	}
	r.norm = NewNormalizer(r.ids, r.now)
	return r
}

// Run processes inbound events one at a time until the context is canceled.
// It must be called exactly once, in its own goroutine.
func (r *Room) Run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("room stopped", "room", r.name)
			return
		case in := <-r.inbound:
			r.handle(in)
		}
	}
}

// Dispatch enqueues a transport-delivered event for the room loop. Events
// arriving after the room has stopped are discarded.
func (r *Room) Dispatch(from Sink, event string, data json.RawMessage) {
	select {
	case r.inbound <- inbound{from: from, event: event, data: data}:
	case <-r.done:
	}
}

// Disconnect enqueues the implicit disconnect signal for a connection. It is
// safe to call at any point in the connection's life, including before a
// join or after a previous disconnect.
func (r *Room) Disconnect(from Sink) {
	select {
	case r.inbound <- inbound{from: from, disconnect: true}:
	case <-r.done:
	}
}

// handle is the event router: one case per inbound event kind. Events other
// than join and disconnect require a session; without one they are silently
// dropped, per the drop-don't-error contract for late or out-of-order client
// events.
func (r *Room) handle(in inbound) {
	if in.disconnect {
		r.handleDisconnect(in.from)
		return
	}

	if in.event == EventJoin {
		r.handleJoin(in.from, in.data)
		return
	}

	sess, ok := r.registry.Lookup(in.from.ID())
	if !ok {
		r.log.Debug("dropping event from unjoined connection",
			"room", r.name, "conn", in.from.ID(), "event", in.event)
		return
	}

	switch in.event {
	case EventMessage:
		r.handleMessage(sess, in.data)
	case EventReaction:
		r.handleReaction(sess, in.data)
	case EventTyping:
		r.handleTyping(in.from, sess, true)
	case EventStopTyping:
		r.handleTyping(in.from, sess, false)
	default:
		r.log.Debug("dropping unknown event",
			"room", r.name, "conn", in.from.ID(), "event", in.event)
	}
}

func (r *Room) handleJoin(from Sink, data json.RawMessage) {
	var join JoinData
	r.decode(data, &join)

	sess := r.registry.Join(from.ID(), join.Username, r.now())
	r.members[from.ID()] = from

	r.sendTo(from, EventConnected, ConnectedData{Username: sess.Username})
	r.broadcastExcept(from, EventUserJoined, UserJoinedData{
		Username:  sess.Username,
		Timestamp: sess.JoinedAt,
		UserCount: r.registry.Count(),
	})
	r.broadcastRoster()

	r.log.Info("user joined", "room", r.name, "username", sess.Username, "count", r.registry.Count())
}

func (r *Room) handleMessage(sess Session, data json.RawMessage) {
	var raw MessageData
	r.decode(data, &raw)

	msg := r.norm.Normalize(sess.Username, raw)
	r.broadcast(EventMessage, msg)

	r.log.Info("message", "room", r.name, "username", sess.Username, "id", msg.ID)
}

func (r *Room) handleReaction(sess Session, data json.RawMessage) {
	var raw ReactionData
	r.decode(data, &raw)

	r.broadcast(EventReaction, Reaction{
		MessageID: raw.MessageID,
		Emoji:     raw.Emoji,
		Username:  sess.Username,
		Timestamp: r.now(),
	})
}

func (r *Room) handleTyping(from Sink, sess Session, typing bool) {
	if typing {
		r.typing.Set(sess.Username)
	} else {
		r.typing.Clear(sess.Username)
	}
	r.broadcastExcept(from, EventUserTyping, UserTypingData{
		Username: sess.Username,
		IsTyping: typing,
	})
}

func (r *Room) handleDisconnect(from Sink) {
	delete(r.members, from.ID())

	sess, ok := r.registry.Remove(from.ID())
	if !ok {
		// Never joined, or a double disconnect. Nothing to announce.
		return
	}

	r.typing.Clear(sess.Username)
	r.broadcastExcept(from, EventUserLeft, UserLeftData{
		Username:  sess.Username,
		Timestamp: r.now(),
		UserCount: r.registry.Count(),
	})
	r.broadcastRoster()

	r.log.Info("user left", "room", r.name, "username", sess.Username, "count", r.registry.Count())
}

// decode unmarshals an inbound payload, tolerating absent or malformed data
// by leaving the target at its zero value. The relay has no error channel
// back to the client.
func (r *Room) decode(data json.RawMessage, v any) {
	if len(data) == 0 {
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		r.log.Debug("ignoring malformed event payload", "room", r.name, "error", err)
	}
}

func (r *Room) broadcastRoster() {
	r.broadcast(EventUsersUpdate, UsersUpdateData{
		Users: r.registry.Snapshot(),
		Count: r.registry.Count(),
	})
}

// broadcast fans out one event to every joined connection, the sender
// included.
func (r *Room) broadcast(event string, data any) {
	r.fanout(nil, event, data)
}

// broadcastExcept fans out one event to every joined connection but the
// given one.
func (r *Room) broadcastExcept(except Sink, event string, data any) {
	r.fanout(except, event, data)
}

// sendTo delivers one event to a single connection.
func (r *Room) sendTo(to Sink, event string, data any) {
	frame, err := EncodeFrame(event, data)
	if err != nil {
		r.log.Error("encoding outbound event failed", "room", r.name, "event", event, "error", err)
		return
	}
	r.deliver(to, event, frame)
}

func (r *Room) fanout(except Sink, event string, data any) {
	frame, err := EncodeFrame(event, data)
	if err != nil {
		r.log.Error("encoding outbound event failed", "room", r.name, "event", event, "error", err)
		return
	}
	for id, member := range r.members {
		if except != nil && id == except.ID() {
			continue
		}
		r.deliver(member, event, frame)
	}
}

// deliver enqueues a frame on one sink. A refused frame is dropped for that
// connection alone; delivery stays best-effort and per-connection
// independent.
func (r *Room) deliver(to Sink, event string, frame []byte) {
	if !to.Send(frame) {
		r.log.Debug("outbound frame dropped", "room", r.name, "conn", to.ID(), "event", event)
	}
}
