package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/llalegg/trd-pb-sub003/internal/models"
)

const blockColumns = `id, phase_id, athlete_id, block_number, season, sub_season,
	start_date, end_date, status, current_week, current_day, next_block_due`

// CreateBlock inserts a block into an existing phase. The athlete is taken
// from the phase, so b.AthleteID is ignored and returned filled in.
func (db *DB) CreateBlock(ctx context.Context, b models.Block) (models.Block, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = models.BlockDraft
	}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO blocks (id, phase_id, athlete_id, block_number, season, sub_season,
		 start_date, end_date, status, current_week, current_day, next_block_due)
		 SELECT $1::uuid, p.id, p.athlete_id, $3::int, $4::text, $5::text,
		        $6::date, $7::date, $8::text, $9::int, $10::int, $11::date
		 FROM phases p WHERE p.id = $2
		 RETURNING athlete_id`,
		b.ID, b.PhaseID, b.BlockNumber, b.Season, b.SubSeason,
		b.StartDate, b.EndDate, string(b.Status), b.CurrentDay.Week, b.CurrentDay.Day, b.NextBlockDue,
	).Scan(&b.AthleteID)
	if err != nil {
		return models.Block{}, fmt.Errorf("inserting block: %w", classify(err))
	}
	return b, nil
}

// GetBlock retrieves one block by ID.
func (db *DB) GetBlock(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+blockColumns+` FROM blocks WHERE id = $1`, id)
	b, err := scanBlock(row)
	if err != nil {
		return nil, fmt.Errorf("querying block: %w", classify(err))
	}
	return &b, nil
}

// ListBlocks returns a phase's blocks ordered by block number.
func (db *DB) ListBlocks(ctx context.Context, phaseID uuid.UUID) ([]models.Block, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+blockColumns+` FROM blocks WHERE phase_id = $1 ORDER BY block_number ASC`,
		phaseID)
	if err != nil {
		return nil, fmt.Errorf("querying blocks: %w", err)
	}
	defer rows.Close()

	var result []models.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// UpdateBlockCurrentDay moves the block's week/day pointer.
func (db *DB) UpdateBlockCurrentDay(ctx context.Context, id uuid.UUID, cd models.CurrentDay) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE blocks SET current_week = $2, current_day = $3 WHERE id = $1`,
		id, cd.Week, cd.Day)
	if err != nil {
		return fmt.Errorf("updating block current day: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating block current day: %w", ErrNotFound)
	}
	return nil
}

// TransitionBlockStatus moves a block from change.From to change.To and
// records the change, in one transaction. It fails with ErrConflict if the
// block is no longer in change.From.
func (db *DB) TransitionBlockStatus(ctx context.Context, change models.StatusChange) (models.StatusChange, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return models.StatusChange{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`UPDATE blocks SET status = $3 WHERE id = $1 AND status = $2`,
		change.BlockID, string(change.From), string(change.To))
	if err != nil {
		return models.StatusChange{}, fmt.Errorf("updating block status: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return models.StatusChange{}, fmt.Errorf("updating block status: %w", ErrConflict)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO block_status_log (block_id, from_status, to_status, changed_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, changed_at`,
		change.BlockID, string(change.From), string(change.To), change.ChangedBy,
	).Scan(&change.ID, &change.ChangedAt)
	if err != nil {
		return models.StatusChange{}, fmt.Errorf("inserting status change: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.StatusChange{}, fmt.Errorf("committing status change: %w", err)
	}
	return change, nil
}

// QueryStatusChanges returns the most recent status changes for a block.
func (db *DB) QueryStatusChanges(ctx context.Context, blockID uuid.UUID, limit int) ([]models.StatusChange, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, block_id, from_status, to_status, changed_by, changed_at
		 FROM block_status_log
		 WHERE block_id = $1
		 ORDER BY changed_at DESC, id DESC
		 LIMIT $2`,
		blockID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying status changes: %w", err)
	}
	defer rows.Close()

	var result []models.StatusChange
	for rows.Next() {
		var c models.StatusChange
		var from, to string
		if err := rows.Scan(&c.ID, &c.BlockID, &from, &to, &c.ChangedBy, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("scanning status change: %w", err)
		}
		c.From, c.To = models.BlockStatus(from), models.BlockStatus(to)
		result = append(result, c)
	}
	return result, rows.Err()
}

func scanBlock(row pgx.Row) (models.Block, error) {
	var b models.Block
	var status string
	err := row.Scan(&b.ID, &b.PhaseID, &b.AthleteID, &b.BlockNumber, &b.Season, &b.SubSeason,
		&b.StartDate, &b.EndDate, &status, &b.CurrentDay.Week, &b.CurrentDay.Day, &b.NextBlockDue)
	b.Status = models.BlockStatus(status)
	return b, err
}
