package seed

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/google/uuid"
)

type fakeStore struct {
	upserted []models.Exercise
}

func (f *fakeStore) UpsertExercise(_ context.Context, e models.Exercise) (uuid.UUID, error) {
	f.upserted = append(f.upserted, e)
	return e.ID, nil
}

func testLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func writeSeedFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing seed file: %v", err)
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "base.json", `[
		{"name": "Back Squat", "muscle_group": "quadriceps", "equipment": "barbell"},
		{"name": "Push Ups", "muscle_group": "chest", "equipment": "bodyweight"},
		{"name": "", "muscle_group": "chest", "equipment": "barbell"},
		{"name": "Mystery Lift", "muscle_group": "everything", "equipment": "barbell"}
	]`)

	store := &fakeStore{}
	imp := New(store, nil, testLog(), false)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.FilesProcessed != 1 {
		t.Errorf("FilesProcessed = %d, want 1", stats.FilesProcessed)
	}
	if stats.ExercisesInserted != 2 {
		t.Errorf("ExercisesInserted = %d, want 2", stats.ExercisesInserted)
	}
	if stats.ExercisesInvalid != 2 {
		t.Errorf("ExercisesInvalid = %d, want 2", stats.ExercisesInvalid)
	}
	if len(store.upserted) != 2 {
		t.Fatalf("upserted = %d rows, want 2", len(store.upserted))
	}
	if store.upserted[0].IsCustom {
		t.Error("seeded exercises must not be custom")
	}
}

func TestImportSkipsSeededFiles(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "base.json", `[{"name": "Deadlift", "muscle_group": "back", "equipment": "barbell"}]`)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	defer state.Close()

	store := &fakeStore{}
	imp := New(store, state, testLog(), false)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("first Import: %v", err)
	}
	if stats.FilesProcessed != 1 || stats.FilesSkipped != 0 {
		t.Errorf("first run: processed=%d skipped=%d", stats.FilesProcessed, stats.FilesSkipped)
	}

	stats, err = imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if stats.FilesProcessed != 0 || stats.FilesSkipped != 1 {
		t.Errorf("second run: processed=%d skipped=%d, want 0/1", stats.FilesProcessed, stats.FilesSkipped)
	}

	// Changing the file invalidates the skip.
	writeSeedFile(t, dir, "base.json", `[{"name": "Romanian Deadlift", "muscle_group": "back", "equipment": "barbell"}]`)
	stats, err = imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("third Import: %v", err)
	}
	if stats.FilesProcessed != 1 {
		t.Errorf("third run: processed=%d, want 1", stats.FilesProcessed)
	}
}

func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "base.json", `[{"name": "Bench Press", "muscle_group": "chest", "equipment": "barbell"}]`)

	store := &fakeStore{}
	imp := New(store, nil, testLog(), true)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.ExercisesInserted != 1 {
		t.Errorf("ExercisesInserted = %d, want 1", stats.ExercisesInserted)
	}
	if len(store.upserted) != 0 {
		t.Errorf("dry run wrote %d rows", len(store.upserted))
	}
}

func TestImportBadFileContinues(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "bad.json", `{not json`)
	writeSeedFile(t, dir, "good.json", `[{"name": "Plank", "muscle_group": "core", "equipment": "bodyweight"}]`)

	store := &fakeStore{}
	imp := New(store, nil, testLog(), false)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.FilesErrored != 1 {
		t.Errorf("FilesErrored = %d, want 1", stats.FilesErrored)
	}
	if stats.ExercisesInserted != 1 {
		t.Errorf("ExercisesInserted = %d, want 1", stats.ExercisesInserted)
	}
}
