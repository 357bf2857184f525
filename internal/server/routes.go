// Package server wires HTTP handlers into a ServeMux for the relay.
package server

import "net/http"

// Routes configures and returns an HTTP ServeMux with all application routes:
// the chat page, the WebSocket endpoint, and the health check.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.Index)
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/healthz", h.Health)
	return mux
}
