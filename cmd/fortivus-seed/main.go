package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/fortivus/fortivus/internal/config"
	"github.com/fortivus/fortivus/internal/seed"
	"github.com/fortivus/fortivus/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	seedPath := flag.String("path", "", "path to seed directory (required)")
	statePath := flag.String("state", ".fortivus-seed", "path to seed state directory")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *seedPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: fortivus-seed -config config.yaml -path /path/to/seeds [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*seedPath)
	if err != nil || !info.IsDir() {
		log.Error("seed path does not exist or is not a directory", "path", *seedPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	state, err := seed.OpenStateDB(*statePath)
	if err != nil {
		log.Error("failed to open seed state", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Run import
	imp := seed.New(db, state, log, *dryRun)
	stats, err := imp.Import(ctx, *seedPath)
	if err != nil {
		log.Error("seed failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("seed complete")
}

func printStats(log *slog.Logger, stats *seed.Stats) {
	log.Info("seed stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"exercises_inserted", stats.ExercisesInserted,
		"exercises_invalid", stats.ExercisesInvalid,
	)
}
