// Package lifecycle moves training blocks through draft → planned → active → complete.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/llalegg/trd-pb-sub003/internal/models"
	"github.com/llalegg/trd-pb-sub003/internal/storage"
)

// ErrInvalidTransition is returned when the target status is not the next
// step after the block's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// Store is the persistence the service needs. *storage.DB satisfies it.
type Store interface {
	GetBlock(ctx context.Context, id uuid.UUID) (*models.Block, error)
	ListBlocks(ctx context.Context, phaseID uuid.UUID) ([]models.Block, error)
	TransitionBlockStatus(ctx context.Context, change models.StatusChange) (models.StatusChange, error)
}

var _ Store = (*storage.DB)(nil)

// Observer is told about every committed transition.
type Observer func(change models.StatusChange)

// Service validates and applies status transitions.
type Service struct {
	store    Store
	log      *slog.Logger
	observer Observer
}

// NewService creates a lifecycle service. observer may be nil.
func NewService(store Store, log *slog.Logger, observer Observer) *Service {
	return &Service{store: store, log: log, observer: observer}
}

// Transition moves a block to status to, recording who made the change.
func (s *Service) Transition(ctx context.Context, blockID uuid.UUID, to models.BlockStatus, changedBy string) (models.StatusChange, error) {
	if !to.IsValid() {
		return models.StatusChange{}, models.ErrInvalidStatus
	}

	block, err := s.store.GetBlock(ctx, blockID)
	if err != nil {
		return models.StatusChange{}, err
	}

	next, ok := block.Status.Next()
	if !ok || next != to {
		return models.StatusChange{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, block.Status, to)
	}

	if to == models.BlockActive {
		siblings, err := s.store.ListBlocks(ctx, block.PhaseID)
		if err != nil {
			return models.StatusChange{}, fmt.Errorf("listing phase blocks: %w", err)
		}
		for _, b := range siblings {
			if b.ID != block.ID && b.Status == models.BlockActive {
				return models.StatusChange{}, fmt.Errorf("%w: block %d", storage.ErrAlreadyActive, b.BlockNumber)
			}
		}
	}

	change, err := s.store.TransitionBlockStatus(ctx, models.StatusChange{
		BlockID:   block.ID,
		From:      block.Status,
		To:        to,
		ChangedBy: changedBy,
	})
	if err != nil {
		return models.StatusChange{}, err
	}

	s.log.Info("block status changed",
		"block_id", block.ID,
		"block_number", block.BlockNumber,
		"from", change.From,
		"to", change.To,
		"changed_by", changedBy,
	)
	if s.observer != nil {
		s.observer(change)
	}
	return change, nil
}
