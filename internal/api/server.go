package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/markscan/internal/config"
	"github.com/dgallion1/markscan/internal/pipeline"
)

// Server is the HTTP API server for markscan.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
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

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey))

		r.Post("/api/documents", s.handleUpload)
		r.Post("/api/documents/batch", s.handleBatchUpload)
		r.Get("/api/jobs/{jobID}/status", s.handleJobStatus)

		r.Get("/api/documents", s.handleListDocuments)
		r.Route("/api/documents/{docID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteDocument)
			r.Get("/elements", s.handleElements)
			r.Get("/elements/{index}", s.handleElement)
			r.Get("/elements/{index}/children", s.handleChildren)
			r.Get("/find", s.handleFind)
			r.Get("/tree", s.handleTree)
		})

		r.Get("/api/stats/index", s.handleIndexStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
