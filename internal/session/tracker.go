// Package session drives the workout session lifecycle: start, set logging,
// personal-record detection, finish, and cancel.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/fortivus/fortivus/internal/storage"
	"github.com/google/uuid"
)

// XP awarded when a session finishes: a base amount plus a bonus per
// completed set.
const (
	xpSessionBase     = 50
	xpPerCompletedSet = 5
)

// Store is the persistence the tracker needs. *storage.DB satisfies it.
// State guards (active-only mutation, one active session per owner, complete-
// once sets) are enforced at the store so they hold under concurrency.
type Store interface {
	InsertSession(ctx context.Context, s models.WorkoutSession) error
	GetSession(ctx context.Context, id, ownerID uuid.UUID) (*models.WorkoutSession, error)
	AddSessionExercise(ctx context.Context, e models.SessionExercise, ownerID uuid.UUID) error
	InsertSet(ctx context.Context, set models.ExerciseSet, ownerID uuid.UUID) error
	CompleteSet(ctx context.Context, setID, ownerID uuid.UUID) (*storage.CompletedSet, error)
	DeleteSet(ctx context.Context, setID, ownerID uuid.UUID) error
	FinishSession(ctx context.Context, id, ownerID uuid.UUID) (*models.WorkoutSession, error)
	CancelSession(ctx context.Context, id, ownerID uuid.UUID) error
	CountCompletedSets(ctx context.Context, sessionID uuid.UUID) (int, error)
	BestRecordWeight(ctx context.Context, ownerID, exerciseID uuid.UUID) (float64, bool, error)
	InsertPersonalRecord(ctx context.Context, r models.PersonalRecord) error
	AddXP(ctx context.Context, userID uuid.UUID, amount int64) error
}

// Notifier receives celebratory events. Implementations must not block the
// caller; the tracker invokes them fire-and-forget.
type Notifier interface {
	PersonalRecord(ownerID, exerciseID uuid.UUID, weight float64, reps int)
}

// NopNotifier discards all events.
type NopNotifier struct{}

// PersonalRecord implements Notifier.
func (NopNotifier) PersonalRecord(uuid.UUID, uuid.UUID, float64, int) {}

// Tracker is the workout session state machine.
type Tracker struct {
	store    Store
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// NewTracker creates a Tracker. A nil notifier discards events.
func NewTracker(store Store, notifier Notifier, log *slog.Logger) *Tracker {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Tracker{store: store, notifier: notifier, log: log, now: time.Now}
}

// Start creates a session in the active state. Fails with
// storage.ErrActiveSessionExists when the owner already has one in progress.
func (t *Tracker) Start(ctx context.Context, ownerID uuid.UUID, name string) (*models.WorkoutSession, error) {
	if strings.TrimSpace(name) == "" {
		name = "Workout"
	}
	s := models.WorkoutSession{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Status:    models.SessionActive,
		StartedAt: t.now().UTC(),
	}
	if err := t.store.InsertSession(ctx, s); err != nil {
		return nil, err
	}
	t.log.Info("session started", "session_id", s.ID, "owner_id", ownerID)
	return &s, nil
}

// AddExercise appends an exercise to an active session with zero sets.
func (t *Tracker) AddExercise(ctx context.Context, sessionID, exerciseID, ownerID uuid.UUID, sortOrder int) (*models.SessionExercise, error) {
	e := models.SessionExercise{
		ID:         uuid.New(),
		SessionID:  sessionID,
		ExerciseID: exerciseID,
		SortOrder:  sortOrder,
	}
	if err := t.store.AddSessionExercise(ctx, e, ownerID); err != nil {
		return nil, err
	}
	return &e, nil
}

// AddSet appends a pending set to a session exercise.
func (t *Tracker) AddSet(ctx context.Context, sessionExerciseID, ownerID uuid.UUID, setNumber int, weight float64, reps int) (*models.ExerciseSet, error) {
	if reps < 1 {
		return nil, fmt.Errorf("reps must be at least 1")
	}
	if weight < 0 {
		return nil, fmt.Errorf("weight must not be negative")
	}
	set := models.ExerciseSet{
		ID:                uuid.New(),
		SessionExerciseID: sessionExerciseID,
		SetNumber:         setNumber,
		Weight:            weight,
		Reps:              reps,
	}
	if err := t.store.InsertSet(ctx, set, ownerID); err != nil {
		return nil, err
	}
	return &set, nil
}

// CompleteSet transitions a pending set to completed and evaluates it
// against the owner's prior best for the exercise. Strictly greater weight
// creates a new personal record; equal weight does not. Record creation and
// notification never fail the completion itself.
func (t *Tracker) CompleteSet(ctx context.Context, setID, ownerID uuid.UUID) (prAchieved bool, err error) {
	done, err := t.store.CompleteSet(ctx, setID, ownerID)
	if err != nil {
		return false, err
	}

	best, found, err := t.store.BestRecordWeight(ctx, done.OwnerID, done.ExerciseID)
	if err != nil {
		t.log.Error("pr evaluation failed", "set_id", setID, "error", err)
		return false, nil
	}
	if found && done.Weight <= best {
		return false, nil
	}

	record := models.PersonalRecord{
		ID:           uuid.New(),
		OwnerID:      done.OwnerID,
		ExerciseID:   done.ExerciseID,
		Weight:       done.Weight,
		RepsAtWeight: done.Reps,
		AchievedAt:   t.now().UTC(),
	}
	if err := t.store.InsertPersonalRecord(ctx, record); err != nil {
		t.log.Error("recording personal record failed", "set_id", setID, "error", err)
		return false, nil
	}

	t.log.Info("personal record", "owner_id", done.OwnerID, "exercise_id", done.ExerciseID, "weight", done.Weight)
	go t.notifier.PersonalRecord(done.OwnerID, done.ExerciseID, done.Weight, done.Reps)
	return true, nil
}

// DeleteSet removes a pending set from an active session. Completed sets
// cannot be removed.
func (t *Tracker) DeleteSet(ctx context.Context, setID, ownerID uuid.UUID) error {
	return t.store.DeleteSet(ctx, setID, ownerID)
}

// Finish transitions an active session to finished and awards XP. Returns
// the session with finished_at and the truncated duration in minutes set.
func (t *Tracker) Finish(ctx context.Context, sessionID, ownerID uuid.UUID) (*models.WorkoutSession, error) {
	s, err := t.store.FinishSession(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}

	sets, err := t.store.CountCompletedSets(ctx, sessionID)
	if err != nil {
		t.log.Error("counting sets for xp failed", "session_id", sessionID, "error", err)
		sets = 0
	}
	xp := int64(xpSessionBase + sets*xpPerCompletedSet)
	if err := t.store.AddXP(ctx, ownerID, xp); err != nil {
		t.log.Error("awarding xp failed", "session_id", sessionID, "error", err)
	}

	t.log.Info("session finished", "session_id", sessionID, "duration_minutes", s.DurationMinutes, "xp", xp)
	return s, nil
}

// Cancel transitions an active session to cancelled, discarding its sets.
func (t *Tracker) Cancel(ctx context.Context, sessionID, ownerID uuid.UUID) error {
	if err := t.store.CancelSession(ctx, sessionID, ownerID); err != nil {
		return err
	}
	t.log.Info("session cancelled", "session_id", sessionID)
	return nil
}
