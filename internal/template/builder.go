// Package template assembles workout templates from manual exercise lists or
// generated weekly plans.
package template

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/google/uuid"
)

// DefaultRestSeconds is the fixed rest prescription for template entries.
const DefaultRestSeconds = 90

// defaultReps is used when a reps string carries no digits ("AMRAP").
const defaultReps = 10

// Store is the template persistence the builder needs. *storage.DB satisfies it.
type Store interface {
	InsertTemplate(ctx context.Context, t models.WorkoutTemplate) error
	GetTemplate(ctx context.Context, id, ownerID uuid.UUID) (*models.WorkoutTemplate, error)
	ReplaceTemplateExercises(ctx context.Context, templateID uuid.UUID, entries []models.TemplateExercise) error
}

// ExerciseResolver maps a free-text exercise name to a catalog entry ID.
type ExerciseResolver interface {
	Resolve(ctx context.Context, name, contextFocus string, ownerID uuid.UUID, location string) (uuid.UUID, error)
}

// ExerciseInput is one exercise of a build request. Reps is free text and
// parsed lossily: the first integer substring wins, default 10.
type ExerciseInput struct {
	Name  string `json:"name"`
	Sets  int    `json:"sets"`
	Reps  string `json:"reps"`
	Notes string `json:"notes,omitempty"`
}

// BuildResult reports what a build produced.
type BuildResult struct {
	TemplateID uuid.UUID `json:"template_id"`
	Entries    int       `json:"entries"`
	Skipped    int       `json:"skipped"`
}

// WeekResult reports a bulk weekly build.
type WeekResult struct {
	TemplatesCreated int      `json:"templates_created"`
	DaysSkipped      []string `json:"days_skipped,omitempty"`
}

// Builder creates and resaves workout templates.
type Builder struct {
	store    Store
	resolver ExerciseResolver
	log      *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(store Store, resolver ExerciseResolver, log *slog.Logger) *Builder {
	return &Builder{store: store, resolver: resolver, log: log}
}

// Build creates a new template from an ordered exercise list. Exercises that
// fail to resolve are skipped; the result reports how many entries made it.
// An empty exercise list is rejected before any write.
func (b *Builder) Build(ctx context.Context, name, description string, exercises []ExerciseInput, ownerID uuid.UUID, contextFocus, location string) (*BuildResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("template name is empty")
	}
	if len(exercises) == 0 {
		return nil, fmt.Errorf("template %q has no exercises", name)
	}

	t := models.WorkoutTemplate{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
	}
	if err := b.store.InsertTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}

	return b.fillEntries(ctx, t.ID, exercises, ownerID, contextFocus, location)
}

// Resave replaces all entries of an existing template with the given list.
// Destructive and irreversible: nothing from the prior version survives, so
// callers must confirm before invoking.
func (b *Builder) Resave(ctx context.Context, templateID uuid.UUID, exercises []ExerciseInput, ownerID uuid.UUID, contextFocus, location string) (*BuildResult, error) {
	if len(exercises) == 0 {
		return nil, fmt.Errorf("resave with no exercises")
	}
	if _, err := b.store.GetTemplate(ctx, templateID, ownerID); err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	return b.fillEntries(ctx, templateID, exercises, ownerID, contextFocus, location)
}

// fillEntries resolves each exercise and replaces the template's entries
// wholesale. Resolution failures skip that exercise and continue.
func (b *Builder) fillEntries(ctx context.Context, templateID uuid.UUID, exercises []ExerciseInput, ownerID uuid.UUID, contextFocus, location string) (*BuildResult, error) {
	entries := make([]models.TemplateExercise, 0, len(exercises))
	skipped := 0

	for i, ex := range exercises {
		exerciseID, err := b.resolver.Resolve(ctx, ex.Name, contextFocus, ownerID, location)
		if err != nil {
			b.log.Warn("skipping unresolvable exercise", "name", ex.Name, "error", err)
			skipped++
			continue
		}

		sets := ex.Sets
		if sets < 1 {
			sets = 1
		}

		entries = append(entries, models.TemplateExercise{
			TemplateID:  templateID,
			ExerciseID:  exerciseID,
			SortOrder:   i,
			TargetSets:  sets,
			TargetReps:  ParseReps(ex.Reps),
			RestSeconds: DefaultRestSeconds,
			Notes:       ex.Notes,
		})
	}

	if err := b.store.ReplaceTemplateExercises(ctx, templateID, entries); err != nil {
		return nil, fmt.Errorf("saving template entries: %w", err)
	}

	return &BuildResult{TemplateID: templateID, Entries: len(entries), Skipped: skipped}, nil
}

// BuildWeek creates one template per plan day that has at least one exercise.
// A failing day is logged and skipped; the result counts what succeeded.
func (b *Builder) BuildWeek(ctx context.Context, plan *models.WeeklyPlan, ownerID uuid.UUID) (*WeekResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	result := &WeekResult{}
	for _, day := range plan.Days {
		if len(day.Exercises) == 0 {
			continue
		}

		inputs := make([]ExerciseInput, 0, len(day.Exercises))
		for _, ex := range day.Exercises {
			inputs = append(inputs, ExerciseInput{Name: ex.Name, Sets: ex.Sets, Reps: ex.Reps, Notes: ex.Notes})
		}

		name := day.Day
		if day.Focus != "" {
			name = day.Day + " - " + day.Focus
		}

		if _, err := b.Build(ctx, name, plan.Goal, inputs, ownerID, day.Focus, plan.Location); err != nil {
			b.log.Warn("skipping failed day template", "day", day.Day, "error", err)
			result.DaysSkipped = append(result.DaysSkipped, day.Day)
			continue
		}
		result.TemplatesCreated++
	}
	return result, nil
}

var firstInt = regexp.MustCompile(`\d+`)

// ParseReps extracts the first integer from a free-text reps prescription.
// "8-12" yields 8, "10" yields 10, "AMRAP" falls back to the default.
func ParseReps(s string) int {
	m := firstInt.FindString(s)
	if m == "" {
		return defaultReps
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 {
		return defaultReps
	}
	return n
}
