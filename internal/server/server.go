package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/llalegg/trd-pb-sub003/internal/completion"
	"github.com/llalegg/trd-pb-sub003/internal/lifecycle"
	"github.com/llalegg/trd-pb-sub003/internal/metrics"
	"github.com/llalegg/trd-pb-sub003/internal/models"
	"github.com/llalegg/trd-pb-sub003/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the persistence the HTTP handlers need. *storage.DB satisfies it.
type Store interface {
	lifecycle.Store

	CreateAthlete(ctx context.Context, a models.Athlete) (models.Athlete, error)
	GetAthlete(ctx context.Context, id uuid.UUID) (*models.Athlete, error)
	ListAthletes(ctx context.Context) ([]models.Athlete, error)

	CreatePhase(ctx context.Context, p models.Phase) (models.Phase, error)
	GetPhase(ctx context.Context, id uuid.UUID) (*models.Phase, error)
	ListPhases(ctx context.Context, athleteID uuid.UUID) ([]models.Phase, error)

	CreateBlock(ctx context.Context, b models.Block) (models.Block, error)
	UpdateBlockCurrentDay(ctx context.Context, id uuid.UUID, cd models.CurrentDay) error
	QueryStatusChanges(ctx context.Context, blockID uuid.UUID, limit int) ([]models.StatusChange, error)

	GetProgramStats(ctx context.Context) (*models.ProgramStats, error)
}

var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     Store
	lifecycle *lifecycle.Service
	tracker   *completion.Tracker
	metrics   *metrics.Manager
	gatherer  prometheus.Gatherer
	log       *slog.Logger
	apiKey    string
	whois     WhoIser
	mcp       http.Handler
	now       func() time.Time
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, tracker *completion.Tracker, m *metrics.Manager, gatherer prometheus.Gatherer, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		tracker:  tracker,
		metrics:  m,
		gatherer: gatherer,
		log:      log,
		apiKey:   apiKey,
		now:      time.Now,
		router:   chi.NewRouter(),
	}
	s.lifecycle = lifecycle.NewService(store, log, func(c models.StatusChange) {
		m.CounterStatusTransitions.WithLabelValues(string(c.To)).Inc()
	})
	m.GaugeTrackedCompletions.Set(float64(tracker.Len()))
	tracker.Subscribe(func() {
		m.GaugeTrackedCompletions.Set(float64(tracker.Len()))
	})
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale enables Tailscale identity lookups for every request.
func (s *Server) SetTailscale(whois WhoIser) {
	s.whois = whois
}

// SetMCP mounts an MCP transport handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Get("/stats", s.handleStats)
		r.Get("/athletes", s.handleListAthletes)
		r.Get("/athletes/{athleteID}/phases", s.handleListPhases)
		r.Get("/athletes/{athleteID}/milestones", s.handleMilestones)
		r.Get("/athletes/{athleteID}/timeline", s.handleTimeline)
		r.Get("/phases/{phaseID}/blocks", s.handleListBlocks)
		r.Get("/blocks/{blockID}", s.handleGetBlock)
		r.Get("/blocks/{blockID}/history", s.handleBlockHistory)

		r.Get("/completions", s.handleListCompletions)
		r.Post("/completions", s.handleMarkCompleted)
		r.Get("/completions/{routineType}/{exerciseName}", s.handleGetCompletion)

		// Coach write endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/athletes", s.handleCreateAthlete)
			r.Post("/athletes/{athleteID}/phases", s.handleCreatePhase)
			r.Post("/phases/{phaseID}/blocks", s.handleCreateBlock)
			r.Patch("/blocks/{blockID}/status", s.handleTransitionBlock)
			r.Patch("/blocks/{blockID}/day", s.handleUpdateCurrentDay)
			r.Delete("/completions", s.handleClearCompletions)
		})
	})

	s.router.Handle("/mcp", http.HandlerFunc(s.serveMCP))
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
}

func (s *Server) serveMCP(w http.ResponseWriter, r *http.Request) {
	if s.mcp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mcp not enabled"})
		return
	}
	s.mcp.ServeHTTP(w, r)
}
