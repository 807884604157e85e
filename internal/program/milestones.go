package program

import (
	"time"

	"github.com/llalegg/trd-pb-sub003/internal/models"
)

// Severity classifies how close the active block is to ending.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityUrgent   Severity = "urgent"
	SeverityWarning  Severity = "warning"
	SeverityMild     Severity = "mild"
	SeverityNeutral  Severity = "neutral"
)

// severityBands are checked in order; the first band whose limit is >= the
// remaining days wins.
var severityBands = []struct {
	maxDays  int
	severity Severity
}{
	{0, SeverityCritical},
	{3, SeverityUrgent},
	{7, SeverityWarning},
	{14, SeverityMild},
}

// SeverityFor maps a remaining-day count onto a severity band.
func SeverityFor(days int) Severity {
	for _, band := range severityBands {
		if days <= band.maxDays {
			return band.severity
		}
	}
	return SeverityNeutral
}

// Countdown is BlockProgress plus its severity band.
type Countdown struct {
	Progress
	Severity Severity `json:"severity"`
}

// DaysUntilBlockEnd classifies the active block's countdown.
// Without an active block the severity is neutral.
func DaysUntilBlockEnd(blocks []models.Block, now time.Time) Countdown {
	p := BlockProgress(blocks, now)
	if !p.HasBlock {
		return Countdown{Progress: p, Severity: SeverityNeutral}
	}
	return Countdown{Progress: p, Severity: SeverityFor(p.DaysRemaining)}
}

// Milestones is everything the program milestones widget shows for one phase.
type Milestones struct {
	Phase        *models.Phase  `json:"phase,omitempty"`
	CurrentBlock *models.Block  `json:"current_block,omitempty"`
	Position     string         `json:"position"`
	Countdown    Countdown      `json:"countdown"`
	SubSeason    string         `json:"sub_season"`
	NextBlockDue DueDate        `json:"next_block_due"`
	Blocks       []models.Block `json:"blocks,omitempty"`
}

// Summarize derives all milestone facts at once. Blocks are only included
// in the result when expanded is set.
func Summarize(blocks []models.Block, phase *models.Phase, now time.Time, expanded bool) Milestones {
	m := Milestones{
		Phase:        phase,
		Position:     ProgramPosition(blocks, phase),
		Countdown:    DaysUntilBlockEnd(blocks, now),
		SubSeason:    SubSeasonStatus(blocks),
		NextBlockDue: NextBlockDue(blocks),
	}
	if b, ok := CurrentBlock(blocks); ok {
		m.CurrentBlock = &b
	}
	if expanded {
		m.Blocks = blocks
	}
	return m
}
