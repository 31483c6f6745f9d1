// Package server exposes the HTTP API: catalog search, template building,
// session tracking, records, leaderboard, and the admin surface.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/fortivus/fortivus/internal/admin"
	"github.com/fortivus/fortivus/internal/models"
	"github.com/fortivus/fortivus/internal/planner"
	"github.com/fortivus/fortivus/internal/storage"
	"github.com/fortivus/fortivus/internal/template"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// DataStore is the read side the handlers need. *storage.DB satisfies it.
type DataStore interface {
	SearchExercises(ctx context.Context, nameSubstring string, limit int) ([]models.Exercise, error)
	GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error)
	ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]models.WorkoutTemplate, error)
	GetTemplate(ctx context.Context, id, ownerID uuid.UUID) (*models.WorkoutTemplate, error)
	QueryTemplateExercises(ctx context.Context, templateID uuid.UUID) ([]models.TemplateExercise, error)
	DeleteTemplate(ctx context.Context, id, ownerID uuid.UUID) error
	GetSession(ctx context.Context, id, ownerID uuid.UUID) (*models.WorkoutSession, error)
	QueryPersonalRecords(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.PersonalRecord, error)
	Leaderboard(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error)
	GetStreak(ctx context.Context, userID uuid.UUID) (int, error)
	ListUsers(ctx context.Context, f storage.UserFilter) (*storage.UserPage, error)
}

// TemplateBuilder builds and resaves workout templates. *template.Builder
// satisfies it.
type TemplateBuilder interface {
	Build(ctx context.Context, name, description string, exercises []template.ExerciseInput, ownerID uuid.UUID, contextFocus, location string) (*template.BuildResult, error)
	Resave(ctx context.Context, templateID uuid.UUID, exercises []template.ExerciseInput, ownerID uuid.UUID, contextFocus, location string) (*template.BuildResult, error)
	BuildWeek(ctx context.Context, plan *models.WeeklyPlan, ownerID uuid.UUID) (*template.WeekResult, error)
}

// SessionTracker drives the workout session lifecycle. *session.Tracker
// satisfies it.
type SessionTracker interface {
	Start(ctx context.Context, ownerID uuid.UUID, name string) (*models.WorkoutSession, error)
	AddExercise(ctx context.Context, sessionID, exerciseID, ownerID uuid.UUID, sortOrder int) (*models.SessionExercise, error)
	AddSet(ctx context.Context, sessionExerciseID, ownerID uuid.UUID, setNumber int, weight float64, reps int) (*models.ExerciseSet, error)
	CompleteSet(ctx context.Context, setID, ownerID uuid.UUID) (bool, error)
	DeleteSet(ctx context.Context, setID, ownerID uuid.UUID) error
	Finish(ctx context.Context, sessionID, ownerID uuid.UUID) (*models.WorkoutSession, error)
	Cancel(ctx context.Context, sessionID, ownerID uuid.UUID) error
}

// ExerciseResolver maps free-text exercise names to catalog IDs.
// *catalog.Resolver satisfies it.
type ExerciseResolver interface {
	Resolve(ctx context.Context, name, contextFocus string, ownerID uuid.UUID, location string) (uuid.UUID, error)
}

// PlanGenerator produces validated weekly plans. *planner.Client satisfies it.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, in planner.ProfileInput) (*models.WeeklyPlan, error)
}

// BulkCoordinator fans admin actions out across users. *admin.Coordinator
// satisfies it.
type BulkCoordinator interface {
	ApplyBulkAction(ctx context.Context, action models.BulkAction, targetIDs []uuid.UUID, actingUserID uuid.UUID) admin.BulkResult
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       DataStore
	builder     TemplateBuilder
	tracker     SessionTracker
	resolver    ExerciseResolver
	plans       PlanGenerator
	bulk        BulkCoordinator
	log         *slog.Logger
	adminAPIKey string
	devUserID   uuid.UUID
	router      chi.Router
}

// New creates a new Server with all routes configured.
func New(store DataStore, builder TemplateBuilder, tracker SessionTracker, resolver ExerciseResolver, plans PlanGenerator, bulk BulkCoordinator, adminAPIKey string, log *slog.Logger) *Server {
	s := &Server{
		store:       store,
		builder:     builder,
		tracker:     tracker,
		resolver:    resolver,
		plans:       plans,
		bulk:        bulk,
		log:         log,
		adminAPIKey: adminAPIKey,
		router:      chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetDevUser sets a fallback identity for requests without an X-User-ID
// header. Local development only.
func (s *Server) SetDevUser(id uuid.UUID) {
	s.devUserID = id
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Admin endpoints (API key required)
	s.router.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(APIKeyAuth(s.adminAPIKey))
		r.Get("/users", s.handleListUsers)
		r.Post("/users/bulk", s.handleBulkAction)
	})

	// User-facing endpoints (identity from header)
	s.router.Group(func(r chi.Router) {
		r.Use(s.Identity)

		r.Get("/api/v1/exercises", s.handleSearchExercises)
		r.Get("/api/v1/exercises/{id}", s.handleGetExercise)
		r.Post("/api/v1/exercises/resolve", s.handleResolveExercise)

		r.Post("/api/v1/templates", s.handleBuildTemplate)
		r.Get("/api/v1/templates", s.handleListTemplates)
		r.Get("/api/v1/templates/{id}", s.handleGetTemplate)
		r.Put("/api/v1/templates/{id}", s.handleResaveTemplate)
		r.Delete("/api/v1/templates/{id}", s.handleDeleteTemplate)
		r.Post("/api/v1/templates/week", s.handleBuildWeek)
		r.Post("/api/v1/plans/generate", s.handleGeneratePlan)

		r.Post("/api/v1/sessions", s.handleStartSession)
		r.Get("/api/v1/sessions/{id}", s.handleGetSession)
		r.Post("/api/v1/sessions/{id}/exercises", s.handleAddSessionExercise)
		r.Post("/api/v1/sessions/{id}/finish", s.handleFinishSession)
		r.Post("/api/v1/sessions/{id}/cancel", s.handleCancelSession)
		r.Post("/api/v1/session-exercises/{id}/sets", s.handleAddSet)
		r.Post("/api/v1/sets/{id}/complete", s.handleCompleteSet)
		r.Delete("/api/v1/sets/{id}", s.handleDeleteSet)

		r.Get("/api/v1/records", s.handleRecords)
		r.Get("/api/v1/leaderboard", s.handleLeaderboard)
		r.Get("/api/v1/streak", s.handleStreak)
	})
}
