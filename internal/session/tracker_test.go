package session

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/fortivus/fortivus/internal/storage"
	"github.com/google/uuid"
)

// fakeStore is an in-memory Store that mirrors the database-level guards:
// active-only mutation, one active session per owner, complete-once sets.
type fakeStore struct {
	now       func() time.Time
	sessions  map[uuid.UUID]*models.WorkoutSession
	exercises map[uuid.UUID]*models.SessionExercise
	sets      map[uuid.UUID]*models.ExerciseSet
	records   []models.PersonalRecord
	xp        map[uuid.UUID]int64
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{
		now:       now,
		sessions:  map[uuid.UUID]*models.WorkoutSession{},
		exercises: map[uuid.UUID]*models.SessionExercise{},
		sets:      map[uuid.UUID]*models.ExerciseSet{},
		xp:        map[uuid.UUID]int64{},
	}
}

func (f *fakeStore) InsertSession(_ context.Context, s models.WorkoutSession) error {
	for _, existing := range f.sessions {
		if existing.OwnerID == s.OwnerID && existing.Status == models.SessionActive {
			return storage.ErrActiveSessionExists
		}
	}
	cp := s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, id, ownerID uuid.UUID) (*models.WorkoutSession, error) {
	s, ok := f.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return nil, storage.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) AddSessionExercise(_ context.Context, e models.SessionExercise, ownerID uuid.UUID) error {
	s, ok := f.sessions[e.SessionID]
	if !ok || s.OwnerID != ownerID || s.Status != models.SessionActive {
		return storage.ErrSessionNotActive
	}
	cp := e
	f.exercises[e.ID] = &cp
	return nil
}

func (f *fakeStore) InsertSet(_ context.Context, set models.ExerciseSet, ownerID uuid.UUID) error {
	se, ok := f.exercises[set.SessionExerciseID]
	if !ok {
		return storage.ErrSessionNotActive
	}
	s := f.sessions[se.SessionID]
	if s.OwnerID != ownerID || s.Status != models.SessionActive {
		return storage.ErrSessionNotActive
	}
	cp := set
	f.sets[set.ID] = &cp
	return nil
}

func (f *fakeStore) CompleteSet(_ context.Context, setID, ownerID uuid.UUID) (*storage.CompletedSet, error) {
	set, ok := f.sets[setID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	se := f.exercises[set.SessionExerciseID]
	s := f.sessions[se.SessionID]
	if s.OwnerID != ownerID {
		return nil, storage.ErrNotFound
	}
	if s.Status != models.SessionActive {
		return nil, storage.ErrSessionNotActive
	}
	if set.IsCompleted {
		return nil, storage.ErrSetCompleted
	}
	now := f.now()
	set.IsCompleted = true
	set.CompletedAt = &now
	return &storage.CompletedSet{
		SetID:      setID,
		ExerciseID: se.ExerciseID,
		OwnerID:    s.OwnerID,
		Weight:     set.Weight,
		Reps:       set.Reps,
	}, nil
}

func (f *fakeStore) DeleteSet(_ context.Context, setID, ownerID uuid.UUID) error {
	set, ok := f.sets[setID]
	if !ok {
		return storage.ErrNotFound
	}
	se := f.exercises[set.SessionExerciseID]
	s := f.sessions[se.SessionID]
	if s.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	if s.Status != models.SessionActive {
		return storage.ErrSessionNotActive
	}
	if set.IsCompleted {
		return storage.ErrSetCompleted
	}
	delete(f.sets, setID)
	return nil
}

func (f *fakeStore) FinishSession(_ context.Context, id, ownerID uuid.UUID) (*models.WorkoutSession, error) {
	s, ok := f.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return nil, storage.ErrNotFound
	}
	if s.Status != models.SessionActive {
		return nil, storage.ErrSessionNotActive
	}
	now := f.now()
	minutes := int(now.Sub(s.StartedAt).Minutes())
	s.Status = models.SessionFinished
	s.FinishedAt = &now
	s.DurationMinutes = &minutes
	cp := *s
	return &cp, nil
}

func (f *fakeStore) CancelSession(_ context.Context, id, ownerID uuid.UUID) error {
	s, ok := f.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	if s.Status != models.SessionActive {
		return storage.ErrSessionNotActive
	}
	now := f.now()
	s.Status = models.SessionCancelled
	s.FinishedAt = &now
	for id, se := range f.exercises {
		if se.SessionID == s.ID {
			for setID, set := range f.sets {
				if set.SessionExerciseID == se.ID {
					delete(f.sets, setID)
				}
			}
			delete(f.exercises, id)
		}
	}
	return nil
}

func (f *fakeStore) CountCompletedSets(_ context.Context, sessionID uuid.UUID) (int, error) {
	n := 0
	for _, set := range f.sets {
		se := f.exercises[set.SessionExerciseID]
		if se != nil && se.SessionID == sessionID && set.IsCompleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) BestRecordWeight(_ context.Context, ownerID, exerciseID uuid.UUID) (float64, bool, error) {
	best := 0.0
	found := false
	for _, r := range f.records {
		if r.OwnerID == ownerID && r.ExerciseID == exerciseID && r.Weight > best {
			best = r.Weight
			found = true
		}
	}
	return best, found, nil
}

func (f *fakeStore) InsertPersonalRecord(_ context.Context, r models.PersonalRecord) error {
	f.records = append(f.records, r)
	return nil
}

func (f *fakeStore) AddXP(_ context.Context, userID uuid.UUID, amount int64) error {
	f.xp[userID] += amount
	return nil
}

// testTracker wires a tracker and fake store to a controllable clock.
func testTracker(t *testing.T) (*Tracker, *fakeStore, *time.Time) {
	t.Helper()
	clock := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore(func() time.Time { return clock })
	tr := NewTracker(store, nil, slog.Default())
	tr.now = func() time.Time { return clock }
	return tr, store, &clock
}

// logSet starts a session, adds one exercise, and logs one pending set.
func logSet(t *testing.T, tr *Tracker, owner uuid.UUID, weight float64, reps int) (*models.WorkoutSession, *models.ExerciseSet) {
	t.Helper()
	ctx := context.Background()
	s, err := tr.Start(ctx, owner, "Leg Day")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	ex, err := tr.AddExercise(ctx, s.ID, uuid.New(), owner, 0)
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}
	set, err := tr.AddSet(ctx, ex.ID, owner, 1, weight, reps)
	if err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	return s, set
}

// TestStartRejectsSecondActive verifies single-active-session enforcement.
func TestStartRejectsSecondActive(t *testing.T) {
	tr, _, _ := testTracker(t)
	owner := uuid.New()
	ctx := context.Background()

	if _, err := tr.Start(ctx, owner, "Morning"); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if _, err := tr.Start(ctx, owner, "Evening"); err != storage.ErrActiveSessionExists {
		t.Errorf("second Start error = %v, want ErrActiveSessionExists", err)
	}
}

// TestFinishComputesDuration verifies finished_at and the truncated duration.
func TestFinishComputesDuration(t *testing.T) {
	tr, _, clock := testTracker(t)
	owner := uuid.New()
	s, _ := logSet(t, tr, owner, 100, 5)

	*clock = clock.Add(47*time.Minute + 30*time.Second)
	finished, err := tr.Finish(context.Background(), s.ID, owner)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if finished.Status != models.SessionFinished {
		t.Errorf("status = %q, want finished", finished.Status)
	}
	if finished.DurationMinutes == nil || *finished.DurationMinutes != 47 {
		t.Errorf("duration = %v, want 47", finished.DurationMinutes)
	}
	if finished.FinishedAt == nil || finished.FinishedAt.Before(finished.StartedAt) {
		t.Error("finished_at must not precede started_at")
	}
}

// TestTerminalStatesAreFinal verifies no transition leaves finished or
// cancelled, and that finish and cancel are mutually exclusive.
func TestTerminalStatesAreFinal(t *testing.T) {
	tr, _, _ := testTracker(t)
	owner := uuid.New()
	ctx := context.Background()
	s, set := logSet(t, tr, owner, 80, 8)

	if _, err := tr.Finish(ctx, s.ID, owner); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := tr.Cancel(ctx, s.ID, owner); err != storage.ErrSessionNotActive {
		t.Errorf("Cancel after Finish error = %v, want ErrSessionNotActive", err)
	}
	if _, err := tr.Finish(ctx, s.ID, owner); err != storage.ErrSessionNotActive {
		t.Errorf("double Finish error = %v, want ErrSessionNotActive", err)
	}
	if _, err := tr.AddExercise(ctx, s.ID, uuid.New(), owner, 1); err != storage.ErrSessionNotActive {
		t.Errorf("AddExercise after Finish error = %v, want ErrSessionNotActive", err)
	}
	if _, err := tr.CompleteSet(ctx, set.ID, owner); err != storage.ErrSessionNotActive {
		t.Errorf("CompleteSet after Finish error = %v, want ErrSessionNotActive", err)
	}
}

// TestCancelDiscardsSets verifies that a cancelled session keeps no sets.
func TestCancelDiscardsSets(t *testing.T) {
	tr, store, _ := testTracker(t)
	owner := uuid.New()
	s, _ := logSet(t, tr, owner, 60, 10)

	if err := tr.Cancel(context.Background(), s.ID, owner); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(store.sets) != 0 {
		t.Errorf("cancelled session kept %d sets, want 0", len(store.sets))
	}
	if store.sessions[s.ID].Status != models.SessionCancelled {
		t.Errorf("status = %q, want cancelled", store.sessions[s.ID].Status)
	}
}

// TestCompleteSetCreatesPR verifies that strictly greater weight creates
// exactly one new record and equal weight creates none.
func TestCompleteSetCreatesPR(t *testing.T) {
	tr, store, _ := testTracker(t)
	owner := uuid.New()
	ctx := context.Background()

	s, err := tr.Start(ctx, owner, "Bench")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	exerciseID := uuid.New()
	ex, err := tr.AddExercise(ctx, s.ID, exerciseID, owner, 0)
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}

	set1, _ := tr.AddSet(ctx, ex.ID, owner, 1, 100, 5)
	pr, err := tr.CompleteSet(ctx, set1.ID, owner)
	if err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}
	if !pr {
		t.Error("first completed set should be a PR")
	}
	if len(store.records) != 1 {
		t.Fatalf("records = %d, want 1", len(store.records))
	}

	// Equal weight: no new record.
	set2, _ := tr.AddSet(ctx, ex.ID, owner, 2, 100, 8)
	pr, err = tr.CompleteSet(ctx, set2.ID, owner)
	if err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}
	if pr {
		t.Error("equal weight should not be a PR")
	}
	if len(store.records) != 1 {
		t.Errorf("records = %d, want still 1", len(store.records))
	}

	// Strictly greater: one more record, appended not replaced.
	set3, _ := tr.AddSet(ctx, ex.ID, owner, 3, 102.5, 3)
	pr, err = tr.CompleteSet(ctx, set3.ID, owner)
	if err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}
	if !pr {
		t.Error("heavier set should be a PR")
	}
	if len(store.records) != 2 {
		t.Errorf("records = %d, want 2", len(store.records))
	}
}

// TestCompleteSetOnlyOnce verifies the pending-to-completed transition
// happens exactly once.
func TestCompleteSetOnlyOnce(t *testing.T) {
	tr, _, _ := testTracker(t)
	owner := uuid.New()
	_, set := logSet(t, tr, owner, 90, 5)
	ctx := context.Background()

	if _, err := tr.CompleteSet(ctx, set.ID, owner); err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}
	if _, err := tr.CompleteSet(ctx, set.ID, owner); err != storage.ErrSetCompleted {
		t.Errorf("second CompleteSet error = %v, want ErrSetCompleted", err)
	}
}

// TestDeleteSetRules verifies pending sets are removable while the session
// is active.
func TestDeleteSetRules(t *testing.T) {
	tr, store, _ := testTracker(t)
	owner := uuid.New()
	_, set := logSet(t, tr, owner, 70, 10)
	ctx := context.Background()

	if err := tr.DeleteSet(ctx, set.ID, owner); err != nil {
		t.Fatalf("DeleteSet pending: %v", err)
	}
	if len(store.sets) != 0 {
		t.Errorf("sets remaining = %d, want 0", len(store.sets))
	}
	if err := tr.DeleteSet(ctx, set.ID, owner); err != storage.ErrNotFound {
		t.Errorf("deleting a deleted set error = %v, want ErrNotFound", err)
	}
}

// TestDeleteCompletedSetRejected verifies completed sets survive deletion
// attempts.
func TestDeleteCompletedSetRejected(t *testing.T) {
	tr, _, _ := testTracker(t)
	owner := uuid.New()
	_, set := logSet(t, tr, owner, 70, 10)
	ctx := context.Background()

	if _, err := tr.CompleteSet(ctx, set.ID, owner); err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}
	if err := tr.DeleteSet(ctx, set.ID, owner); err != storage.ErrSetCompleted {
		t.Errorf("DeleteSet completed error = %v, want ErrSetCompleted", err)
	}
}

// TestFinishAwardsXP verifies the base-plus-per-set XP award.
func TestFinishAwardsXP(t *testing.T) {
	tr, store, _ := testTracker(t)
	owner := uuid.New()
	ctx := context.Background()
	s, set := logSet(t, tr, owner, 100, 5)

	if _, err := tr.CompleteSet(ctx, set.ID, owner); err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}
	if _, err := tr.Finish(ctx, s.ID, owner); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	want := int64(xpSessionBase + 1*xpPerCompletedSet)
	if got := store.xp[owner]; got != want {
		t.Errorf("xp = %d, want %d", got, want)
	}
}
