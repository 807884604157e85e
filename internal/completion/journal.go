package completion

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Journal mirrors tracker state into a SQLite file so completions survive a
// restart.
type Journal struct {
	db *sql.DB

	// syncMu orders snapshot-then-sync rounds so an older snapshot never
	// commits after a newer one.
	syncMu sync.Mutex
}

// OpenJournal opens (or creates) the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}
	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS exercise_completions (
		routine_type   TEXT NOT NULL,
		exercise_name  TEXT NOT NULL,
		completed_sets INTEGER NOT NULL,
		progress       INTEGER NOT NULL,
		completed_at   TEXT NOT NULL,
		PRIMARY KEY (routine_type, exercise_name)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal table: %w", err)
	}

	return &Journal{db: db}, nil
}

// Load returns every journaled completion.
func (j *Journal) Load() ([]Completion, error) {
	rows, err := j.db.Query(`SELECT routine_type, exercise_name, completed_sets, progress, completed_at
		FROM exercise_completions ORDER BY routine_type, exercise_name`)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var result []Completion
	for rows.Next() {
		var c Completion
		var at string
		if err := rows.Scan(&c.RoutineType, &c.ExerciseName, &c.CompletedSets, &c.Progress, &at); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		c.CompletedAt, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing completed_at %q: %w", at, err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Sync replaces the journal contents with records in one transaction.
func (j *Journal) Sync(records []Completion) error {
	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning journal tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM exercise_completions`); err != nil {
		return fmt.Errorf("clearing journal: %w", err)
	}
	for _, c := range records {
		_, err := tx.Exec(
			`INSERT INTO exercise_completions (routine_type, exercise_name, completed_sets, progress, completed_at)
			 VALUES (?, ?, ?, ?, ?)`,
			c.RoutineType, c.ExerciseName, c.CompletedSets, c.Progress, c.CompletedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("writing journal row: %w", err)
		}
	}
	return tx.Commit()
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Attach restores the tracker from the journal and subscribes the journal to
// future changes. The returned func detaches it.
func (j *Journal) Attach(t *Tracker, log *slog.Logger) (func(), error) {
	records, err := j.Load()
	if err != nil {
		return nil, err
	}
	t.Restore(records)
	log.Info("completion journal restored", "records", len(records))

	return t.Subscribe(func() {
		j.syncMu.Lock()
		defer j.syncMu.Unlock()
		if err := j.Sync(t.Snapshot()); err != nil {
			log.Error("completion journal sync failed", "error", err)
		}
	}), nil
}
