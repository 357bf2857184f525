// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the built-in chat page.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/driftchat/driftchat/internal/chat"
)

// Handler bundles the HTTP surface of the relay around one room.
type Handler struct {
	room     *chat.Room
	cfg      Config
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHandler creates the HTTP handler set for the given room.
func NewHandler(room *chat.Room, cfg Config, log *slog.Logger) *Handler {
	policy := newOriginPolicy(cfg.Origins(), log)
	return &Handler{
		room: room,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.checkOrigin,
		},
		log: log,
	}
}

// ServeWS upgrades the request to a WebSocket and hands the connection to a
// new client. Everything past the upgrade is event-driven: the client's read
// pump feeds the room, the room feeds the client's send buffer.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(conn, h.room, h.cfg, h.log)
	client.Start()
}

// Health provides a simple health check endpoint that returns server status.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "ok")
}

// Index serves the embedded single-page chat client.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := fmt.Fprint(w, indexHTML); err != nil {
		h.log.Debug("writing index page", "error", err)
	}
}
