package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter constructs the HTTP router for the service.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Permissive CORS for the mobile transcription client.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/api/meetings", func(r chi.Router) {
		r.Post("/summarize", s.handleSummarize)
		r.Get("/mock-data", s.handleMockData)
		r.Get("/mock-summary", s.handleMockSummary)
		r.Get("/long-mock-summary", s.handleLongMockSummary)
	})

	return r
}
