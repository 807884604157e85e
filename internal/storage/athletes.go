package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/llalegg/trd-pb-sub003/internal/models"
)

// CreateAthlete inserts an athlete, assigning an ID if none is set.
func (db *DB) CreateAthlete(ctx context.Context, a models.Athlete) (models.Athlete, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO athletes (id, name, sport) VALUES ($1, $2, $3) RETURNING created_at`,
		a.ID, a.Name, a.Sport).Scan(&a.CreatedAt)
	if err != nil {
		return models.Athlete{}, fmt.Errorf("inserting athlete: %w", classify(err))
	}
	return a, nil
}

// GetAthlete retrieves one athlete by ID.
func (db *DB) GetAthlete(ctx context.Context, id uuid.UUID) (*models.Athlete, error) {
	var a models.Athlete
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, sport, created_at FROM athletes WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.Sport, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying athlete: %w", classify(err))
	}
	return &a, nil
}

// ListAthletes returns all athletes ordered by name.
func (db *DB) ListAthletes(ctx context.Context) ([]models.Athlete, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, sport, created_at FROM athletes ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying athletes: %w", err)
	}
	defer rows.Close()

	var result []models.Athlete
	for rows.Next() {
		var a models.Athlete
		if err := rows.Scan(&a.ID, &a.Name, &a.Sport, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning athlete: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
