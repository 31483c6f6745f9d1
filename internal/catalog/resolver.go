// Package catalog resolves free-text exercise names against the shared
// exercise catalog, creating custom entries when no match exists.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/google/uuid"
)

// Store is the catalog persistence the resolver needs. *storage.DB satisfies it.
type Store interface {
	SearchExercises(ctx context.Context, nameSubstring string, limit int) ([]models.Exercise, error)
	UpsertExercise(ctx context.Context, e models.Exercise) (uuid.UUID, error)
}

// Resolver maps exercise names to catalog entry IDs.
type Resolver struct {
	store Store
	log   *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(store Store, log *slog.Logger) *Resolver {
	return &Resolver{store: store, log: log}
}

// Resolve finds an existing catalog entry whose name contains the given name
// (case-insensitive, first match wins) or creates a new custom entry. The
// focus label drives muscle-group inference and the training location drives
// the default equipment; neither affects matching.
func (r *Resolver) Resolve(ctx context.Context, name, contextFocus string, ownerID uuid.UUID, location string) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, fmt.Errorf("exercise name is empty")
	}

	matches, err := r.store.SearchExercises(ctx, name, 1)
	if err != nil {
		return uuid.Nil, fmt.Errorf("searching catalog for %q: %w", name, err)
	}
	if len(matches) > 0 {
		return matches[0].ID, nil
	}

	entry := models.Exercise{
		ID:          uuid.New(),
		Name:        name,
		MuscleGroup: InferMuscleGroup(contextFocus),
		Equipment:   InferEquipment(location),
		IsCustom:    true,
		CreatedBy:   &ownerID,
	}
	id, err := r.store.UpsertExercise(ctx, entry)
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating catalog entry %q: %w", name, err)
	}
	r.log.Info("created custom exercise", "name", name, "muscle_group", entry.MuscleGroup, "equipment", entry.Equipment)
	return id, nil
}

// focusKeywords maps focus-label keywords to muscle groups in priority order:
// the first keyword contained in the focus string wins.
var focusKeywords = []struct {
	keyword string
	group   models.MuscleGroup
}{
	{"leg", models.MuscleQuadriceps},
	{"chest", models.MuscleChest},
	{"back", models.MuscleBack},
	{"shoulder", models.MuscleShoulders},
	{"arm", models.MuscleBiceps},
}

// InferMuscleGroup picks a muscle group from a workout-day focus label.
// Unmatched labels default to core.
func InferMuscleGroup(focus string) models.MuscleGroup {
	f := strings.ToLower(focus)
	for _, fk := range focusKeywords {
		if strings.Contains(f, fk.keyword) {
			return fk.group
		}
	}
	return models.MuscleCore
}

// InferEquipment picks default equipment from the declared training location.
func InferEquipment(location string) models.Equipment {
	switch strings.ToLower(strings.TrimSpace(location)) {
	case "bodyweight":
		return models.EquipmentBodyweight
	case "minimal":
		return models.EquipmentDumbbells
	default:
		return models.EquipmentBarbell
	}
}
