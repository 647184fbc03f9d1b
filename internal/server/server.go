package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/liftsync/internal/mcp"
	"github.com/claude/liftsync/internal/models"
	"github.com/claude/liftsync/internal/planner"
)

// PlanService is the plan layer behind the REST API.
type PlanService interface {
	mcp.PlanService
	Publish(ctx context.Context, title string, gen planner.Generator) (planner.PublishResult, error)
	LoggedExercises(ctx context.Context, limit int) ([]models.JournalEntry, error)
}

// Compile-time check: *planner.Planner satisfies PlanService.
var _ PlanService = (*planner.Planner)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	plans    PlanService
	log      *slog.Logger
	apiKey   string
	identity func(http.Handler) http.Handler
	router   chi.Router
}

// New creates a new Server. Call SetTailscale, if needed, before Routes.
func New(plans PlanService, apiKey string, log *slog.Logger) *Server {
	return &Server{
		plans:    plans,
		log:      log,
		apiKey:   apiKey,
		identity: DevIdentity,
		router:   chi.NewRouter(),
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale resolves request identities through the tailnet.
func (s *Server) SetTailscale(w WhoIser) {
	s.identity = TailscaleIdentity(w, s.log)
}

// Routes registers all routes. mcpHandler, when non-nil, is mounted at /mcp.
func (s *Server) Routes(mcpHandler http.Handler) {
	s.router.Use(s.identity)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Write endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/plan/logs", s.handleSaveLogs)
		r.Post("/api/v1/plan/publish", s.handlePublish)
		if mcpHandler != nil {
			r.Handle("/mcp", mcpHandler)
		}
	})

	// Read endpoints (no auth, tsnet handles access)
	s.router.Get("/api/v1/plan", s.handleGetPlan)
	s.router.Get("/api/v1/plan/supplemental", s.handleGetSupplemental)
	s.router.Get("/api/v1/history", s.handleHistory)
	s.router.Get("/api/v1/history/logs", s.handleLoggedExercises)
	s.router.Get("/api/v1/me", s.handleMe)
}
