package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/tocgest/internal/config"
	"github.com/dgallion1/tocgest/internal/export"
	"github.com/dgallion1/tocgest/internal/pipeline"
)

// Server is the HTTP API server for tocgest.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	exporter     *export.Exporter
	stats        *pipeline.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, exporter *export.Exporter, stats *pipeline.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		exporter:     exporter,
		stats:        stats,
		log:          log,
		cfg:          cfg,
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

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey))

		r.Post("/api/documents", s.handleUpload)
		r.Get("/api/documents/{jobID}", s.handleJobStatus)
		r.Get("/api/documents/{jobID}/result", s.handleJobResult)
		r.Post("/api/documents/{jobID}/export", s.handleJobExport)

		r.Post("/api/outline", s.handleOutline)
		r.Post("/api/export", s.handleExport)

		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
