package program

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/llalegg/trd-pb-sub003/internal/models"
)

// ErrPhaseNotFound is returned when a requested phase number does not exist.
var ErrPhaseNotFound = errors.New("phase not found")

// Source reads an athlete's phases and blocks.
type Source interface {
	ListPhases(ctx context.Context, athleteID uuid.UUID) ([]models.Phase, error)
	ListBlocks(ctx context.Context, phaseID uuid.UUID) ([]models.Block, error)
}

// Load fetches one phase of an athlete's program and its blocks.
// phaseNumber 0 selects CurrentPhase. An athlete with no phases yields a nil
// phase and no blocks rather than an error.
func Load(ctx context.Context, src Source, athleteID uuid.UUID, phaseNumber int, now time.Time) (*models.Phase, []models.Block, error) {
	phases, err := src.ListPhases(ctx, athleteID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing phases: %w", err)
	}

	var phase models.Phase
	if phaseNumber > 0 {
		found := false
		for _, p := range phases {
			if p.PhaseNumber == phaseNumber {
				phase, found = p, true
				break
			}
		}
		if !found {
			return nil, nil, fmt.Errorf("%w: P%d", ErrPhaseNotFound, phaseNumber)
		}
	} else {
		var ok bool
		phase, ok = CurrentPhase(phases, now)
		if !ok {
			return nil, nil, nil
		}
	}

	blocks, err := src.ListBlocks(ctx, phase.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing blocks: %w", err)
	}
	return &phase, blocks, nil
}
