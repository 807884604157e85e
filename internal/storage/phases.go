package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/llalegg/trd-pb-sub003/internal/models"
)

// CreatePhase inserts a phase for an existing athlete.
func (db *DB) CreatePhase(ctx context.Context, p models.Phase) (models.Phase, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO phases (id, athlete_id, phase_number, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.AthleteID, p.PhaseNumber, p.StartDate, p.EndDate)
	if err != nil {
		return models.Phase{}, fmt.Errorf("inserting phase: %w", classify(err))
	}
	return p, nil
}

// GetPhase retrieves one phase by ID.
func (db *DB) GetPhase(ctx context.Context, id uuid.UUID) (*models.Phase, error) {
	var p models.Phase
	err := db.Pool.QueryRow(ctx,
		`SELECT id, athlete_id, phase_number, start_date, end_date FROM phases WHERE id = $1`, id).
		Scan(&p.ID, &p.AthleteID, &p.PhaseNumber, &p.StartDate, &p.EndDate)
	if err != nil {
		return nil, fmt.Errorf("querying phase: %w", classify(err))
	}
	return &p, nil
}

// ListPhases returns an athlete's phases ordered by phase number.
func (db *DB) ListPhases(ctx context.Context, athleteID uuid.UUID) ([]models.Phase, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, athlete_id, phase_number, start_date, end_date
		 FROM phases WHERE athlete_id = $1
		 ORDER BY phase_number ASC`,
		athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying phases: %w", err)
	}
	defer rows.Close()

	var result []models.Phase
	for rows.Next() {
		var p models.Phase
		if err := rows.Scan(&p.ID, &p.AthleteID, &p.PhaseNumber, &p.StartDate, &p.EndDate); err != nil {
			return nil, fmt.Errorf("scanning phase: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
