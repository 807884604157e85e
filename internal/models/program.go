package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// BlockStatus is the lifecycle state of a training block.
type BlockStatus string

const (
	BlockDraft    BlockStatus = "draft"
	BlockPlanned  BlockStatus = "planned"
	BlockActive   BlockStatus = "active"
	BlockComplete BlockStatus = "complete"
)

// blockStatusOrder is the only legal path through the lifecycle.
var blockStatusOrder = []BlockStatus{BlockDraft, BlockPlanned, BlockActive, BlockComplete}

// IsValid reports whether s is a known status.
func (s BlockStatus) IsValid() bool {
	switch s {
	case BlockDraft, BlockPlanned, BlockActive, BlockComplete:
		return true
	default:
		return false
	}
}

// Next returns the status that follows s, or false if s is terminal or unknown.
func (s BlockStatus) Next() (BlockStatus, bool) {
	for i, st := range blockStatusOrder {
		if st == s && i+1 < len(blockStatusOrder) {
			return blockStatusOrder[i+1], true
		}
	}
	return "", false
}

// Domain errors
var (
	ErrMissingDates    = errors.New("start and end dates are required")
	ErrDateOrder       = errors.New("end date must not be before start date")
	ErrBlockNumber     = errors.New("block number must be positive")
	ErrPhaseNumber     = errors.New("phase number must be positive")
	ErrInvalidStatus   = errors.New("status must be one of: draft, planned, active, complete")
	ErrCurrentDayRange = errors.New("current week and day must not be negative")
	ErrEmptyName       = errors.New("name cannot be empty")
)

// CurrentDay points at the week/day an athlete is on inside a block.
// Zero values mean "not set".
type CurrentDay struct {
	Week int `json:"week"`
	Day  int `json:"day"`
}

// Block is a dated training unit within a phase.
type Block struct {
	ID           uuid.UUID   `json:"id"`
	PhaseID      uuid.UUID   `json:"phase_id"`
	AthleteID    uuid.UUID   `json:"athlete_id"`
	BlockNumber  int         `json:"block_number"`
	Season       string      `json:"season"`
	SubSeason    string      `json:"sub_season"`
	StartDate    time.Time   `json:"start_date"`
	EndDate      time.Time   `json:"end_date"`
	Status       BlockStatus `json:"status"`
	CurrentDay   CurrentDay  `json:"current_day"`
	NextBlockDue *time.Time  `json:"next_block_due,omitempty"`
}

// Validate checks the fields a coach must supply when creating a block.
func (b *Block) Validate() error {
	if b.BlockNumber <= 0 {
		return ErrBlockNumber
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return ErrMissingDates
	}
	if b.EndDate.Before(b.StartDate) {
		return ErrDateOrder
	}
	if !b.Status.IsValid() {
		return ErrInvalidStatus
	}
	if b.CurrentDay.Week < 0 || b.CurrentDay.Day < 0 {
		return ErrCurrentDayRange
	}
	return nil
}

// Phase groups an ordered set of blocks into a season-level unit.
type Phase struct {
	ID          uuid.UUID `json:"id"`
	AthleteID   uuid.UUID `json:"athlete_id"`
	PhaseNumber int       `json:"phase_number"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// Validate checks the phase ordinal and date range.
func (p *Phase) Validate() error {
	if p.PhaseNumber <= 0 {
		return ErrPhaseNumber
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return ErrMissingDates
	}
	if p.EndDate.Before(p.StartDate) {
		return ErrDateOrder
	}
	return nil
}

// Athlete is a coached person owning phases and blocks.
type Athlete struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Sport     string    `json:"sport"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusChange is one recorded lifecycle transition of a block.
type StatusChange struct {
	ID        int64       `json:"id"`
	BlockID   uuid.UUID   `json:"block_id"`
	From      BlockStatus `json:"from"`
	To        BlockStatus `json:"to"`
	ChangedBy string      `json:"changed_by"`
	ChangedAt time.Time   `json:"changed_at"`
}
