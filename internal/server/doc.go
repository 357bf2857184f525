// Package server implements the HTTP and WebSocket transport for the relay.
//
// The implementation is organized into specialized files for configuration,
// clients, routing, and HTTP handlers. The room itself lives in the chat
// package; this package only moves bytes between connections and the room.
package server
