// Package gamify maintains training streaks and the XP leaderboard inputs.
package gamify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// lookback bounds how far the nightly sweep reads training history.
const lookback = 400 * 24 * time.Hour

// Store is the persistence the streak sweep needs. *storage.DB satisfies it.
type Store interface {
	ActiveUserIDs(ctx context.Context) ([]uuid.UUID, error)
	TrainingDays(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error)
	UpdateStreak(ctx context.Context, userID uuid.UUID, days int) error
}

// Service recomputes streaks for all users. Wired to a nightly cron in the
// main binary.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// NewService creates a Service.
func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// RecomputeAll recomputes the streak for every active user. Per-user
// failures are logged and skipped so one bad row never stalls the sweep.
func (s *Service) RecomputeAll(ctx context.Context) {
	ids, err := s.store.ActiveUserIDs(ctx)
	if err != nil {
		s.log.Error("streak sweep: listing users failed", "error", err)
		return
	}

	updated := 0
	for _, id := range ids {
		days, err := s.store.TrainingDays(ctx, id, s.now().Add(-lookback))
		if err != nil {
			s.log.Warn("streak sweep: reading training days failed", "user_id", id, "error", err)
			continue
		}
		streak := ComputeStreak(days, s.now())
		if err := s.store.UpdateStreak(ctx, id, streak); err != nil {
			s.log.Warn("streak sweep: update failed", "user_id", id, "error", err)
			continue
		}
		updated++
	}
	s.log.Info("streak sweep complete", "users", len(ids), "updated", updated)
}

// ComputeStreak counts consecutive training days ending today or yesterday.
// Input days are distinct calendar dates, newest first. A gap of more than
// one day before the most recent training day means the streak is broken.
func ComputeStreak(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	today := truncateDay(now)
	latest := truncateDay(days[0])
	if today.Sub(latest) > 24*time.Hour {
		return 0
	}

	streak := 1
	prev := latest
	for _, d := range days[1:] {
		d = truncateDay(d)
		if prev.Sub(d) != 24*time.Hour {
			break
		}
		streak++
		prev = d
	}
	return streak
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
