package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	r := s.router

	// Command batches
	r.Route("/actions", func(r chi.Router) {
		r.Post("/", s.runActions)
		r.Post("/validate", s.validateActions)
		r.Get("/schema", s.getSchema)
	})

	// Host state and executor log
	r.Get("/state", s.getState)
	r.Get("/stats", s.getStats)
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", s.listReports)
		r.Delete("/", s.clearReports)
	})

	// Undo/redo log
	r.Route("/history", func(r chi.Router) {
		r.Get("/", s.getHistory)
		r.Delete("/", s.clearHistory)
		r.Post("/undo", s.undo)
		r.Post("/redo", s.redo)
		r.Post("/goto/{index}", s.goTo)
		r.Get("/export", s.exportHistory)
		r.Post("/import", s.importHistory)
	})

	// Event streaming
	r.Get("/event", s.allEvents)
	r.Get("/ws", s.serveWS)
}
