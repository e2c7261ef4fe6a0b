package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmelnic/storylens/internal/auth"
	"github.com/dmelnic/storylens/internal/pipeline"
	"github.com/dmelnic/storylens/internal/storage"
)

// Config holds the dependencies for the HTTP server.
type Config struct {
	Analyzer    *pipeline.Analyzer
	AuthService *auth.Service
	Analyses    storage.AnalysisRepository
	Characters  storage.CharacterRepository
	Relations   storage.RelationRepository
	Logger      *log.Logger
}

type Server struct {
	router      *chi.Mux
	analyzer    *pipeline.Analyzer
	authService *auth.Service
	analyses    storage.AnalysisRepository
	characters  storage.CharacterRepository
	relations   storage.RelationRepository
	logger      *log.Logger
}

func NewServer(cfg Config) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		router:      r,
		analyzer:    cfg.Analyzer,
		authService: cfg.AuthService,
		analyses:    cfg.Analyses,
		characters:  cfg.Characters,
		relations:   cfg.Relations,
		logger:      logger,
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.authService))

			r.Route("/analyses", func(r chi.Router) {
				r.Get("/", s.handleListAnalyses)
				r.Post("/", s.handleCreateAnalysis)
				r.Get("/{analysisID}", s.handleGetAnalysis)
				r.Delete("/{analysisID}", s.handleDeleteAnalysis)

				r.Get("/{analysisID}/report", s.handleGetReport)
				r.Get("/{analysisID}/graph", s.handleGetGraph)
				r.Get("/{analysisID}/characters/{name}/similar", s.handleGetSimilarCharacters)
			})
		})
	})
}

func (s *Server) Run(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
