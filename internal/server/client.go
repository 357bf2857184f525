// Package server manages individual WebSocket clients, handling read/write
// pumps, rate limiting, and lifecycle control for each connection.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/driftchat/driftchat/internal/chat"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// Client wires one WebSocket connection to the room. Its read pump decodes
// inbound envelopes and forwards them to the room's event loop; its write
// pump drains the buffered send channel, which is the room's Sink view of
// this connection.
type Client struct {
	id        string
	conn      *websocket.Conn
	room      *chat.Room
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	limiter   *rateLimiter
	maxSize   int64
	log       *slog.Logger
}

// NewClient creates a client for an upgraded connection. The pumps are not
// started until Start is called.
func NewClient(conn *websocket.Conn, room *chat.Room, cfg Config, log *slog.Logger) *Client {
	id := uuid.NewString()
	addr := ""
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
		addr = conn.RemoteAddr().String()
	}

	return &Client{
		id:      id,
		conn:    conn,
		room:    room,
		send:    make(chan []byte, cfg.SendBufferSize),
		done:    make(chan struct{}),
		limiter: newRateLimiter(cfg.RateLimitBurst, cfg.RateLimitRefill),
		maxSize: cfg.MaxMessageSize,
		log:     log.With("conn", id, "addr", addr),
	}
}

// ID returns the opaque per-connection identity used by the room.
func (c *Client) ID() string { return c.id }

// Send enqueues a frame for the write pump without blocking. It reports
// false when the connection is closed or its buffer is full; the room drops
// the frame for this connection and carries on.
func (c *Client) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Start launches the read and write pumps. The connection's lifetime ends
// when the read pump returns; the room is always told about the disconnect,
// whatever the cause.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Debug("closing connection", "error", err)
		}
	})
}

func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Debug("setting initial read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.Debug("setting read deadline in pong handler", "error", err)
		}
		return nil
	})
}

func (c *Client) readPump() {
	defer func() {
		c.room.Disconnect(c)
		c.shutdown()
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}

		if !c.limiter.allow() {
			c.log.Debug("rate limit exceeded; discarding frame")
			continue
		}

		var env chat.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.log.Debug("discarding malformed frame", "error", err)
			continue
		}

		c.room.Dispatch(c, env.Event, env.Data)
	}
}

// logReadError classifies read failures so routine disconnects stay quiet
// while genuinely unexpected errors surface.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("message exceeded maximum size", "max_bytes", c.maxSize)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.log.Debug("client disconnected", "error", err)
	case errors.Is(err, io.EOF), isExpectedCloseError(err):
		c.log.Debug("connection closed", "error", err)
	default:
		c.log.Warn("websocket read error", "error", err)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case frame := <-c.send:
			if err := c.writeFrame(frame); err != nil {
				if !isExpectedCloseError(err) {
					c.log.Debug("writing frame", "error", err)
				}
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				return
			}
		case <-c.done:
			c.writeCloseMessage()
			return
		}
	}
}

func (c *Client) writeFrame(frame []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *Client) writePing() error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Debug("writing ping", "error", err)
		}
		return err
	}
	return nil
}

func (c *Client) writeCloseMessage() {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}
	if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !isExpectedCloseError(err) {
		c.log.Debug("writing close message", "error", err)
	}
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
