// Package server exposes a live editing session over HTTP: the paginated
// preview, the page indicator, edits and PDF export.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gompdf/livepage/pkg/api"
)

// maxEditBytes bounds the body of an edit request.
const maxEditBytes = 1 << 20

// Server is the HTTP front end of a session.
type Server struct {
	router  chi.Router
	session *api.Session
	log     *slog.Logger
}

// NewServer creates and configures the HTTP server.
func NewServer(session *api.Session, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		session: session,
		log:     log.With("component", "server"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Get("/", s.handlePreview)
	r.Get("/document", s.handleDocument)
	r.Get("/pages", s.handlePages)
	r.Post("/edits", s.handleEdits)
	r.Post("/settle", s.handleSettle)
	r.Get("/export.pdf", s.handleExport)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
