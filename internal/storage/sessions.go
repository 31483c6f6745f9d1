package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// InsertSession creates a session in the active state. The partial unique
// index on (owner_id) WHERE status = 'active' rejects a second concurrent
// session for the same owner.
func (db *DB) InsertSession(ctx context.Context, s models.WorkoutSession) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_sessions (id, owner_id, name, status, started_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.OwnerID, s.Name, s.Status, s.StartedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrActiveSessionExists
	}
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// GetSession retrieves a session owned by the given user.
func (db *DB) GetSession(ctx context.Context, id, ownerID uuid.UUID) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	err := db.Pool.QueryRow(ctx,
		`SELECT id, owner_id, name, status, started_at, finished_at, duration_minutes
		 FROM workout_sessions WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&s.ID, &s.OwnerID, &s.Name, &s.Status, &s.StartedAt, &s.FinishedAt, &s.DurationMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session %s: %w", id, err)
	}
	return &s, nil
}

// AddSessionExercise appends an exercise to a session. The insert is guarded
// against terminal sessions at the store so the active-only invariant holds
// even under concurrent finish/cancel.
func (db *DB) AddSessionExercise(ctx context.Context, e models.SessionExercise, ownerID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO session_exercises (id, session_id, exercise_id, sort_order)
		 SELECT $1, s.id, $3, $4
		 FROM workout_sessions s
		 WHERE s.id = $2 AND s.owner_id = $5 AND s.status = 'active'`,
		e.ID, e.SessionID, e.ExerciseID, e.SortOrder, ownerID)
	if err != nil {
		return fmt.Errorf("adding session exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotActive
	}
	return nil
}

// InsertSet appends a pending set to a session exercise, guarded by the
// parent session still being active.
func (db *DB) InsertSet(ctx context.Context, set models.ExerciseSet, ownerID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO exercise_sets (id, session_exercise_id, set_number, weight, reps, is_completed)
		 SELECT $1, se.id, $3, $4, $5, FALSE
		 FROM session_exercises se
		 JOIN workout_sessions s ON s.id = se.session_id
		 WHERE se.id = $2 AND s.owner_id = $6 AND s.status = 'active'`,
		set.ID, set.SessionExerciseID, set.SetNumber, set.Weight, set.Reps, ownerID)
	if err != nil {
		return fmt.Errorf("inserting set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotActive
	}
	return nil
}

// CompletedSet describes a set right after completion, with the context the
// personal-record evaluation needs.
type CompletedSet struct {
	SetID      uuid.UUID
	ExerciseID uuid.UUID
	OwnerID    uuid.UUID
	Weight     float64
	Reps       int
}

// CompleteSet transitions a pending set to completed, stamping completed_at.
// Returns the completed set's weight, reps, and exercise for PR evaluation.
func (db *DB) CompleteSet(ctx context.Context, setID, ownerID uuid.UUID) (*CompletedSet, error) {
	var c CompletedSet
	err := db.Pool.QueryRow(ctx,
		`UPDATE exercise_sets es
		 SET is_completed = TRUE, completed_at = NOW()
		 FROM session_exercises se
		 JOIN workout_sessions s ON s.id = se.session_id
		 WHERE es.id = $1 AND es.session_exercise_id = se.id
		   AND s.owner_id = $2 AND s.status = 'active'
		   AND es.is_completed = FALSE
		 RETURNING es.id, se.exercise_id, s.owner_id, es.weight, es.reps`,
		setID, ownerID,
	).Scan(&c.SetID, &c.ExerciseID, &c.OwnerID, &c.Weight, &c.Reps)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.classifySetError(ctx, setID, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("completing set %s: %w", setID, err)
	}
	return &c, nil
}

// DeleteSet removes a pending set from an active session. Completed sets are
// part of the workout history and cannot be removed.
func (db *DB) DeleteSet(ctx context.Context, setID, ownerID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM exercise_sets es
		 USING session_exercises se, workout_sessions s
		 WHERE es.id = $1 AND es.session_exercise_id = se.id AND se.session_id = s.id
		   AND s.owner_id = $2 AND s.status = 'active'
		   AND es.is_completed = FALSE`,
		setID, ownerID)
	if err != nil {
		return fmt.Errorf("deleting set %s: %w", setID, err)
	}
	if tag.RowsAffected() == 0 {
		return db.classifySetError(ctx, setID, ownerID)
	}
	return nil
}

// classifySetError distinguishes why a guarded set mutation matched no rows.
func (db *DB) classifySetError(ctx context.Context, setID, ownerID uuid.UUID) error {
	var isCompleted bool
	var status models.SessionStatus
	err := db.Pool.QueryRow(ctx,
		`SELECT es.is_completed, s.status
		 FROM exercise_sets es
		 JOIN session_exercises se ON se.id = es.session_exercise_id
		 JOIN workout_sessions s ON s.id = se.session_id
		 WHERE es.id = $1 AND s.owner_id = $2`,
		setID, ownerID,
	).Scan(&isCompleted, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("inspecting set %s: %w", setID, err)
	}
	if status != models.SessionActive {
		return ErrSessionNotActive
	}
	if isCompleted {
		return ErrSetCompleted
	}
	return ErrNotFound
}

// FinishSession transitions an active session to finished, computing the
// truncated duration in minutes at the database clock. Irreversible.
func (db *DB) FinishSession(ctx context.Context, id, ownerID uuid.UUID) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	err := db.Pool.QueryRow(ctx,
		`UPDATE workout_sessions
		 SET status = 'finished',
		     finished_at = NOW(),
		     duration_minutes = FLOOR(EXTRACT(EPOCH FROM (NOW() - started_at)) / 60)
		 WHERE id = $1 AND owner_id = $2 AND status = 'active'
		 RETURNING id, owner_id, name, status, started_at, finished_at, duration_minutes`,
		id, ownerID,
	).Scan(&s.ID, &s.OwnerID, &s.Name, &s.Status, &s.StartedAt, &s.FinishedAt, &s.DurationMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := db.GetSession(ctx, id, ownerID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrSessionNotActive
	}
	if err != nil {
		return nil, fmt.Errorf("finishing session %s: %w", id, err)
	}
	return &s, nil
}

// CancelSession transitions an active session to cancelled and discards its
// logged sets. Irreversible.
func (db *DB) CancelSession(ctx context.Context, id, ownerID uuid.UUID) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`UPDATE workout_sessions SET status = 'cancelled', finished_at = NOW()
		 WHERE id = $1 AND owner_id = $2 AND status = 'active'`,
		id, ownerID)
	if err != nil {
		return fmt.Errorf("cancelling session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := db.GetSession(ctx, id, ownerID); getErr != nil {
			return getErr
		}
		return ErrSessionNotActive
	}

	// Cancelled sessions keep no history.
	if _, err := tx.Exec(ctx,
		`DELETE FROM session_exercises WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("discarding session exercises: %w", err)
	}

	return tx.Commit(ctx)
}

// CountCompletedSets returns how many completed sets a session holds. Used
// for the XP award when a session finishes.
func (db *DB) CountCompletedSets(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exercise_sets es
		 JOIN session_exercises se ON se.id = es.session_exercise_id
		 WHERE se.session_id = $1 AND es.is_completed = TRUE`,
		sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting completed sets: %w", err)
	}
	return n, nil
}
