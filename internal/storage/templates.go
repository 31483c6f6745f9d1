package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertTemplate creates a workout template row.
func (db *DB) InsertTemplate(ctx context.Context, t models.WorkoutTemplate) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_templates (id, owner_id, name, description)
		 VALUES ($1, $2, $3, $4)`,
		t.ID, t.OwnerID, t.Name, t.Description)
	if err != nil {
		return fmt.Errorf("inserting template %q: %w", t.Name, err)
	}
	return nil
}

// GetTemplate retrieves a template owned by the given user.
func (db *DB) GetTemplate(ctx context.Context, id, ownerID uuid.UUID) (*models.WorkoutTemplate, error) {
	var t models.WorkoutTemplate
	err := db.Pool.QueryRow(ctx,
		`SELECT id, owner_id, name, description, created_at, updated_at
		 FROM workout_templates WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&t.ID, &t.OwnerID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying template %s: %w", id, err)
	}
	return &t, nil
}

// ListTemplates returns all templates owned by a user, most recent first.
func (db *DB) ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]models.WorkoutTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, owner_id, name, description, created_at, updated_at
		 FROM workout_templates WHERE owner_id = $1
		 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutTemplate
	for rows.Next() {
		var t models.WorkoutTemplate
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// DeleteTemplate removes a template and, via cascade, its entries.
func (db *DB) DeleteTemplate(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_templates WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting template %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceTemplateExercises deletes all entries of a template and inserts the
// given ones in a single transaction, touching updated_at. This backs the
// destructive resave flow: no rows from the prior version survive.
func (db *DB) ReplaceTemplateExercises(ctx context.Context, templateID uuid.UUID, entries []models.TemplateExercise) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`DELETE FROM template_exercises WHERE template_id = $1`, templateID); err != nil {
		return fmt.Errorf("clearing template entries: %w", err)
	}

	if len(entries) > 0 {
		query := `INSERT INTO template_exercises (template_id, exercise_id, sort_order, target_sets, target_reps, rest_seconds, notes) VALUES `
		args := make([]any, 0, len(entries)*7)
		valueStrings := make([]string, 0, len(entries))

		for i, e := range entries {
			base := i * 7
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			))
			args = append(args, e.TemplateID, e.ExerciseID, e.SortOrder,
				e.TargetSets, e.TargetReps, e.RestSeconds, e.Notes)
		}

		if _, err := tx.Exec(ctx, query+strings.Join(valueStrings, ","), args...); err != nil {
			return fmt.Errorf("inserting template entries: %w", err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE workout_templates SET updated_at = NOW() WHERE id = $1`, templateID); err != nil {
		return fmt.Errorf("touching template: %w", err)
	}

	return tx.Commit(ctx)
}

// QueryTemplateExercises returns a template's entries in display order.
func (db *DB) QueryTemplateExercises(ctx context.Context, templateID uuid.UUID) ([]models.TemplateExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT template_id, exercise_id, sort_order, target_sets, target_reps, rest_seconds, notes
		 FROM template_exercises WHERE template_id = $1
		 ORDER BY sort_order ASC`, templateID)
	if err != nil {
		return nil, fmt.Errorf("querying template entries: %w", err)
	}
	defer rows.Close()

	var result []models.TemplateExercise
	for rows.Next() {
		var e models.TemplateExercise
		if err := rows.Scan(&e.TemplateID, &e.ExerciseID, &e.SortOrder,
			&e.TargetSets, &e.TargetReps, &e.RestSeconds, &e.Notes); err != nil {
			return nil, fmt.Errorf("scanning template entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
