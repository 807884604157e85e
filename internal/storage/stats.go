package storage

import (
	"context"
	"fmt"

	"github.com/llalegg/trd-pb-sub003/internal/models"
)

// GetProgramStats returns aggregate statistics for the whole database.
func (db *DB) GetProgramStats(ctx context.Context) (*models.ProgramStats, error) {
	stats := &models.ProgramStats{BlocksByStatus: make(map[models.BlockStatus]int64)}

	err := db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM athletes),
			(SELECT COUNT(*) FROM phases),
			(SELECT COUNT(*) FROM blocks),
			(SELECT COUNT(*) FROM block_status_log)`,
	).Scan(&stats.Athletes, &stats.Phases, &stats.Blocks, &stats.StatusChanges)
	if err != nil {
		return nil, fmt.Errorf("counting rows: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT MIN(start_date), MAX(end_date) FROM blocks`,
	).Scan(&stats.EarliestBlock, &stats.LatestBlock)
	if err != nil {
		return nil, fmt.Errorf("querying block date range: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT status, COUNT(*) FROM blocks GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("querying blocks by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning block status count: %w", err)
		}
		stats.BlocksByStatus[models.BlockStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
