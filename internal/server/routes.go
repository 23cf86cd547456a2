// Package server wires the HTTP handlers into a ServeMux.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application
// routes: the chat page, health check, stats, and the WebSocket endpoint.
func SetupRoutes(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HomeHandler)
	mux.HandleFunc("/healthz", HealthHandler)
	mux.HandleFunc("/stats", StatsHandler(hub))
	mux.HandleFunc("/ws", WebSocketHandler(hub))
	return mux
}
