// Package program derives display facts about an athlete's training program
// from its blocks and phases. Nothing here mutates its input or fails: when
// data is missing the result carries the Placeholder text instead.
package program

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/llalegg/trd-pb-sub003/internal/models"
)

// Placeholder is shown wherever a value cannot be derived.
const Placeholder = "–"

// DueDateLayout formats next-due dates, e.g. "Mar 4, 2026".
const DueDateLayout = "Jan 2, 2006"

// actionThresholdDays is the remaining-day count at or below which a coach
// needs to prepare the next block.
const actionThresholdDays = 3

// Progress is the countdown to the end of the active block.
type Progress struct {
	HasBlock      bool   `json:"has_block"`
	DaysRemaining int    `json:"days_remaining"`
	Text          string `json:"text"`
	NeedsAction   bool   `json:"needs_action"`
	// OverdueDays is how many days past its end date the active block is.
	// DaysRemaining stays clamped at zero in that case.
	OverdueDays int `json:"overdue_days,omitempty"`
}

// DueDate is the earliest upcoming next-block due date.
type DueDate struct {
	Date *time.Time `json:"date"`
	Text string     `json:"text"`
}

// CurrentBlock returns the active block with the lowest block number.
// The input slice is left in its original order.
func CurrentBlock(blocks []models.Block) (models.Block, bool) {
	sorted := slices.Clone(blocks)
	slices.SortStableFunc(sorted, func(a, b models.Block) int {
		return cmp.Compare(a.BlockNumber, b.BlockNumber)
	})
	for _, b := range sorted {
		if b.Status == models.BlockActive {
			return b, true
		}
	}
	return models.Block{}, false
}

// BlockProgress counts whole days from now until the active block ends.
func BlockProgress(blocks []models.Block, now time.Time) Progress {
	block, ok := CurrentBlock(blocks)
	if !ok {
		return Progress{Text: Placeholder}
	}

	days := daysBetween(now, block.EndDate)
	if days < 0 {
		return Progress{
			HasBlock:    true,
			Text:        daysText(0),
			NeedsAction: true,
			OverdueDays: -days,
		}
	}

	return Progress{
		HasBlock:      true,
		DaysRemaining: days,
		Text:          daysText(days),
		NeedsAction:   days <= actionThresholdDays,
	}
}

func daysText(days int) string {
	if days == 1 {
		return "in 1 day"
	}
	return fmt.Sprintf("in %d day(s)", days)
}

// ProgramPosition encodes phase/block/week/day progress as "P2 B3(4) W2 D2".
// The block count in parentheses is len(blocks), so callers pass one phase's blocks.
func ProgramPosition(blocks []models.Block, phase *models.Phase) string {
	block, ok := CurrentBlock(blocks)
	if !ok || phase == nil {
		return Placeholder
	}

	week := block.CurrentDay.Week
	if week == 0 {
		week = 1
	}
	day := block.CurrentDay.Day
	if day == 0 {
		day = 1
	}

	return fmt.Sprintf("P%d B%d(%d) W%d D%d", phase.PhaseNumber, block.BlockNumber, len(blocks), week, day)
}

// SubSeasonStatus labels the active block's season. Pre-season counts as
// in-season for display.
func SubSeasonStatus(blocks []models.Block) string {
	block, ok := CurrentBlock(blocks)
	if !ok {
		return Placeholder
	}

	season := block.Season
	switch {
	case strings.Contains(season, "In-Season"):
		return "In-Season"
	case strings.Contains(season, "Off-Season"):
		return "Off-Season"
	case strings.Contains(season, "Pre-Season"):
		return "In-Season"
	case season != "":
		return season
	default:
		return Placeholder
	}
}

// NextBlockDue returns the earliest NextBlockDue across all blocks.
func NextBlockDue(blocks []models.Block) DueDate {
	var earliest *time.Time
	for _, b := range blocks {
		if b.NextBlockDue == nil || b.NextBlockDue.IsZero() {
			continue
		}
		if earliest == nil || b.NextBlockDue.Before(*earliest) {
			d := *b.NextBlockDue
			earliest = &d
		}
	}
	if earliest == nil {
		return DueDate{Text: Placeholder}
	}

	d := dateOnly(*earliest)
	return DueDate{Date: &d, Text: d.Format(DueDateLayout)}
}

// CurrentPhase picks the phase containing now, else the latest phase that
// has already started, else the earliest upcoming one.
func CurrentPhase(phases []models.Phase, now time.Time) (models.Phase, bool) {
	if len(phases) == 0 {
		return models.Phase{}, false
	}

	today := dateOnly(now)
	sorted := slices.Clone(phases)
	slices.SortStableFunc(sorted, func(a, b models.Phase) int {
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c
		}
		return cmp.Compare(a.PhaseNumber, b.PhaseNumber)
	})

	var started *models.Phase
	for i := range sorted {
		p := &sorted[i]
		start, end := dateOnly(p.StartDate), dateOnly(p.EndDate)
		if start.After(today) {
			continue
		}
		if !end.Before(today) {
			return *p, true
		}
		started = p
	}
	if started != nil {
		return *started, true
	}
	return sorted[0], true
}

// dateOnly drops the clock part of t, keeping its calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from a to b. Both are truncated to
// midnight so partial days never appear.
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}
