// Package seed imports curated exercise catalog files into the database.
// Files are JSON arrays of catalog entries; already-imported files are
// skipped by size and hash so re-runs only pick up changes.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/google/uuid"
)

// Store is the catalog persistence the importer needs. *storage.DB satisfies it.
type Store interface {
	UpsertExercise(ctx context.Context, e models.Exercise) (uuid.UUID, error)
}

// entry is one exercise row of a seed file.
type entry struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group"`
	Equipment   string `json:"equipment"`
}

// Stats summarizes a seed run.
type Stats struct {
	FilesProcessed    int
	FilesSkipped      int
	FilesErrored      int
	ExercisesInserted int
	ExercisesInvalid  int
}

// Importer loads seed files into the exercise catalog.
type Importer struct {
	store  Store
	state  *StateDB
	log    *slog.Logger
	dryRun bool
}

// New creates an Importer. A nil state disables file skip tracking.
func New(store Store, state *StateDB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, state: state, log: log, dryRun: dryRun}
}

// Import processes every .json file under dir. A file that fails to parse is
// counted and skipped; the run continues with the rest.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	stats := &Stats{}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return stats, fmt.Errorf("listing seed files: %w", err)
	}

	for _, path := range files {
		rel := filepath.Base(path)

		skip, size, hash, err := imp.alreadySeeded(path, rel)
		if err != nil {
			imp.log.Warn("state check failed", "file", rel, "error", err)
		}
		if skip {
			stats.FilesSkipped++
			continue
		}

		inserted, invalid, err := imp.importFile(ctx, path)
		if err != nil {
			imp.log.Error("seed file failed", "file", rel, "error", err)
			stats.FilesErrored++
			continue
		}
		stats.FilesProcessed++
		stats.ExercisesInserted += inserted
		stats.ExercisesInvalid += invalid

		if imp.state != nil && !imp.dryRun {
			if err := imp.state.MarkSeeded(rel, size, hash); err != nil {
				imp.log.Warn("marking file seeded failed", "file", rel, "error", err)
			}
		}
	}

	return stats, nil
}

func (imp *Importer) alreadySeeded(path, rel string) (skip bool, size int64, hash string, err error) {
	if imp.state == nil {
		return false, 0, "", nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, "", err
	}
	hash, err = HashFile(path)
	if err != nil {
		return false, 0, "", err
	}
	seeded, err := imp.state.IsSeeded(rel, info.Size(), hash)
	return seeded, info.Size(), hash, err
}

func (imp *Importer) importFile(ctx context.Context, path string) (inserted, invalid int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("reading seed file: %w", err)
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, 0, fmt.Errorf("parsing seed file: %w", err)
	}

	for _, e := range entries {
		ex, err := e.toModel()
		if err != nil {
			imp.log.Warn("invalid seed entry", "file", filepath.Base(path), "name", e.Name, "error", err)
			invalid++
			continue
		}

		if imp.dryRun {
			inserted++
			continue
		}
		if _, err := imp.store.UpsertExercise(ctx, ex); err != nil {
			return inserted, invalid, fmt.Errorf("upserting %q: %w", ex.Name, err)
		}
		inserted++
	}
	return inserted, invalid, nil
}

// toModel validates a seed entry and converts it into a catalog exercise.
// Seeded entries are not custom and have no creator.
func (e entry) toModel() (models.Exercise, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return models.Exercise{}, fmt.Errorf("name is empty")
	}
	mg := models.MuscleGroup(e.MuscleGroup)
	if !mg.Valid() {
		return models.Exercise{}, fmt.Errorf("unknown muscle group %q", e.MuscleGroup)
	}
	eq := models.Equipment(e.Equipment)
	if !eq.Valid() {
		return models.Exercise{}, fmt.Errorf("unknown equipment %q", e.Equipment)
	}
	return models.Exercise{
		ID:          uuid.New(),
		Name:        name,
		MuscleGroup: mg,
		Equipment:   eq,
		IsCustom:    false,
	}, nil
}
