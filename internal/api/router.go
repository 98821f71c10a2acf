package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// WS ticket requires authentication; the ticket then
			// authenticates the WebSocket upgrade itself.
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			r.Route("/robots", func(r chi.Router) {
				r.Get("/", s.handleListRobots)

				r.Route("/{serial}", func(r chi.Router) {
					r.Get("/", s.handleGetRobot)
					r.Get("/status", s.handleRobotStatus)
					r.Post("/command", s.handleSendCommand)
				})
			})

			r.Get("/audit", s.handleListAudit)
		})

		// WebSocket upgrade authenticates with a single-use ticket in
		// the query string; browsers cannot set an Authorization header
		// on the upgrade request.
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status, including broker
// connectivity when a broker status source is wired.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"version": s.version,
	}
	if s.broker != nil {
		body["broker_connected"] = s.broker.IsConnected()
	}
	writeJSON(w, http.StatusOK, body)
}
