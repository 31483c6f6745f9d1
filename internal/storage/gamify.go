package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AddXP increments a user's experience points.
func (db *DB) AddXP(ctx context.Context, userID uuid.UUID, amount int64) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE users SET xp = xp + $2 WHERE id = $1`, userID, amount)
	if err != nil {
		return fmt.Errorf("adding xp: %w", err)
	}
	return nil
}

// LeaderboardEntry is one row of the XP leaderboard.
type LeaderboardEntry struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	XP          int64     `json:"xp"`
	StreakDays  int       `json:"streak_days"`
	Rank        int       `json:"rank"`
}

// Leaderboard returns the top users by XP. Banned users are excluded.
func (db *DB) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, display_name, xp, streak_days
		 FROM users
		 WHERE is_banned = FALSE
		 ORDER BY xp DESC, created_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var result []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.XP, &e.StreakDays); err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}
		e.Rank = len(result) + 1
		result = append(result, e)
	}
	return result, rows.Err()
}

// TrainingDays returns the distinct calendar days on which the user finished
// a session, newest first. Input for the streak computation.
func (db *DB) TrainingDays(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT DATE(finished_at)
		 FROM workout_sessions
		 WHERE owner_id = $1 AND status = 'finished' AND finished_at >= $2
		 ORDER BY DATE(finished_at) DESC`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("querying training days: %w", err)
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning training day: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// UpdateStreak stores a recomputed streak length for a user.
func (db *DB) UpdateStreak(ctx context.Context, userID uuid.UUID, days int) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE users SET streak_days = $2 WHERE id = $1`, userID, days)
	if err != nil {
		return fmt.Errorf("updating streak: %w", err)
	}
	return nil
}

// ActiveUserIDs returns all non-banned user IDs, for the nightly streak
// recomputation sweep.
func (db *DB) ActiveUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id FROM users WHERE is_banned = FALSE`)
	if err != nil {
		return nil, fmt.Errorf("querying active users: %w", err)
	}
	defer rows.Close()

	var result []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		result = append(result, id)
	}
	return result, rows.Err()
}

// GetStreak returns a user's current stored streak length.
func (db *DB) GetStreak(ctx context.Context, userID uuid.UUID) (int, error) {
	var days int
	err := db.Pool.QueryRow(ctx,
		`SELECT streak_days FROM users WHERE id = $1`, userID,
	).Scan(&days)
	if err != nil {
		return 0, fmt.Errorf("querying streak: %w", err)
	}
	return days, nil
}
