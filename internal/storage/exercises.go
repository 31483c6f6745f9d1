package storage

import (
	"context"
	"fmt"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/google/uuid"
)

// SearchExercises finds catalog entries whose name contains the given
// substring, case-insensitively. Results are ordered by name for stable
// output; callers that only need one match take the first.
func (db *DB) SearchExercises(ctx context.Context, nameSubstring string, limit int) ([]models.Exercise, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, muscle_group, equipment, is_custom, created_by, created_at
		 FROM exercises
		 WHERE name ILIKE '%' || $1 || '%'
		 ORDER BY name ASC
		 LIMIT $2`,
		nameSubstring, limit)
	if err != nil {
		return nil, fmt.Errorf("searching exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.MuscleGroup, &e.Equipment, &e.IsCustom, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// UpsertExercise inserts a catalog entry, or returns the existing row's ID
// when another writer already created one with the same normalized name.
// The unique index on lower(name) makes concurrent create-if-absent calls
// for the same unseen name converge on a single row.
func (db *DB) UpsertExercise(ctx context.Context, e models.Exercise) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO exercises (id, name, muscle_group, equipment, is_custom, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (lower(name)) DO UPDATE SET name = exercises.name
		 RETURNING id`,
		e.ID, e.Name, e.MuscleGroup, e.Equipment, e.IsCustom, e.CreatedBy,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upserting exercise %q: %w", e.Name, err)
	}
	return id, nil
}

// GetExercise retrieves a single catalog entry by ID.
func (db *DB) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	var e models.Exercise
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, muscle_group, equipment, is_custom, created_by, created_at
		 FROM exercises WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.MuscleGroup, &e.Equipment, &e.IsCustom, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying exercise %s: %w", id, err)
	}
	return &e, nil
}
