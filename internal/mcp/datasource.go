package mcp

import (
	"context"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/fortivus/fortivus/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	SearchExercises(ctx context.Context, nameSubstring string, limit int) ([]models.Exercise, error)
	ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]models.WorkoutTemplate, error)
	GetTemplate(ctx context.Context, id, ownerID uuid.UUID) (*models.WorkoutTemplate, error)
	QueryTemplateExercises(ctx context.Context, templateID uuid.UUID) ([]models.TemplateExercise, error)
	GetSession(ctx context.Context, id, ownerID uuid.UUID) (*models.WorkoutSession, error)
	QueryPersonalRecords(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.PersonalRecord, error)
	Leaderboard(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error)
	GetStreak(ctx context.Context, userID uuid.UUID) (int, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
