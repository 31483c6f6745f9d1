package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BestRecordWeight returns the owner's best recorded weight for an exercise.
// Returns found=false when no record exists yet.
func (db *DB) BestRecordWeight(ctx context.Context, ownerID, exerciseID uuid.UUID) (weight float64, found bool, err error) {
	err = db.Pool.QueryRow(ctx,
		`SELECT weight FROM personal_records
		 WHERE owner_id = $1 AND exercise_id = $2
		 ORDER BY weight DESC
		 LIMIT 1`,
		ownerID, exerciseID,
	).Scan(&weight)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying best record: %w", err)
	}
	return weight, true, nil
}

// InsertPersonalRecord appends a new record row. Records are never updated in
// place; history is the full sequence of bests.
func (db *DB) InsertPersonalRecord(ctx context.Context, r models.PersonalRecord) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO personal_records (id, owner_id, exercise_id, weight, reps_at_weight, achieved_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.OwnerID, r.ExerciseID, r.Weight, r.RepsAtWeight, r.AchievedAt)
	if err != nil {
		return fmt.Errorf("inserting personal record: %w", err)
	}
	return nil
}

// QueryPersonalRecords returns an owner's records, newest first.
func (db *DB) QueryPersonalRecords(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.PersonalRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, owner_id, exercise_id, weight, reps_at_weight, achieved_at
		 FROM personal_records
		 WHERE owner_id = $1
		 ORDER BY achieved_at DESC
		 LIMIT $2`,
		ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying personal records: %w", err)
	}
	defer rows.Close()

	var result []models.PersonalRecord
	for rows.Next() {
		var r models.PersonalRecord
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.ExerciseID, &r.Weight, &r.RepsAtWeight, &r.AchievedAt); err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
