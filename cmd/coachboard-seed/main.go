package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/llalegg/trd-pb-sub003/internal/config"
	"github.com/llalegg/trd-pb-sub003/internal/seed"
	"github.com/llalegg/trd-pb-sub003/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	seedPath := flag.String("file", "", "path to YAML seed file (required)")
	dryRun := flag.Bool("dry-run", false, "validate and report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *seedPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: coachboard-seed -config config.yaml -file seed.yaml [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := seed.LoadFile(*seedPath)
	if err != nil {
		log.Error("failed to load seed file", "path", *seedPath, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
		stats, err := seed.New(nil, log, true, time.Now()).Seed(ctx, f)
		if err != nil {
			log.Error("seed file invalid", "error", err)
			os.Exit(1)
		}
		printStats(log, stats)
		return
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

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	stats, err := seed.New(db, log, false, time.Now()).Seed(ctx, f)
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
		"athletes", stats.Athletes,
		"phases", stats.Phases,
		"blocks", stats.Blocks,
		"skipped_athletes", stats.Skipped,
	)
}
