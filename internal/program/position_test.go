package program

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/llalegg/trd-pb-sub003/internal/models"
)

// now is mid-afternoon so tests catch any partial-day leakage.
var now = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func day(offset int) time.Time {
	return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func block(number int, status models.BlockStatus, endOffset int) models.Block {
	return models.Block{
		ID:          uuid.New(),
		BlockNumber: number,
		Status:      status,
		StartDate:   day(endOffset - 27),
		EndDate:     day(endOffset),
	}
}

// TestCurrentBlock verifies the lowest-numbered active block wins and that
// the caller's slice order is untouched.
func TestCurrentBlock(t *testing.T) {
	blocks := []models.Block{
		block(4, models.BlockActive, 10),
		block(2, models.BlockComplete, -20),
		block(3, models.BlockActive, 5),
		block(1, models.BlockDraft, 30),
	}
	orig := make([]int, len(blocks))
	for i, b := range blocks {
		orig[i] = b.BlockNumber
	}

	got, ok := CurrentBlock(blocks)
	if !ok {
		t.Fatal("expected an active block")
	}
	if got.BlockNumber != 3 {
		t.Errorf("BlockNumber = %d, want 3", got.BlockNumber)
	}

	for i, b := range blocks {
		if b.BlockNumber != orig[i] {
			t.Fatalf("input reordered: position %d has block %d, want %d", i, b.BlockNumber, orig[i])
		}
	}
}

func TestCurrentBlockNone(t *testing.T) {
	if _, ok := CurrentBlock(nil); ok {
		t.Error("CurrentBlock(nil) reported a block")
	}
	blocks := []models.Block{block(1, models.BlockPlanned, 3), block(2, models.BlockComplete, -3)}
	if _, ok := CurrentBlock(blocks); ok {
		t.Error("CurrentBlock without active status reported a block")
	}
}

func TestBlockProgress(t *testing.T) {
	tests := []struct {
		name   string
		blocks []models.Block
		want   Progress
	}{
		{
			name: "no active block",
			want: Progress{Text: Placeholder},
		},
		{
			name:   "ends today",
			blocks: []models.Block{block(1, models.BlockActive, 0)},
			want:   Progress{HasBlock: true, DaysRemaining: 0, Text: "in 0 day(s)", NeedsAction: true},
		},
		{
			name:   "ends tomorrow",
			blocks: []models.Block{block(1, models.BlockActive, 1)},
			want:   Progress{HasBlock: true, DaysRemaining: 1, Text: "in 1 day", NeedsAction: true},
		},
		{
			name:   "three days left",
			blocks: []models.Block{block(1, models.BlockActive, 3)},
			want:   Progress{HasBlock: true, DaysRemaining: 3, Text: "in 3 day(s)", NeedsAction: true},
		},
		{
			name:   "four days left",
			blocks: []models.Block{block(1, models.BlockActive, 4)},
			want:   Progress{HasBlock: true, DaysRemaining: 4, Text: "in 4 day(s)"},
		},
		{
			name:   "ended yesterday clamps to zero",
			blocks: []models.Block{block(1, models.BlockActive, -1)},
			want:   Progress{HasBlock: true, DaysRemaining: 0, Text: "in 0 day(s)", NeedsAction: true, OverdueDays: 1},
		},
		{
			name:   "long overdue still clamps",
			blocks: []models.Block{block(1, models.BlockActive, -9)},
			want:   Progress{HasBlock: true, DaysRemaining: 0, Text: "in 0 day(s)", NeedsAction: true, OverdueDays: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlockProgress(tt.blocks, now)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BlockProgress mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestBlockProgressIgnoresClock verifies that an end date carrying a late
// clock time still counts as a whole day.
func TestBlockProgressIgnoresClock(t *testing.T) {
	b := block(1, models.BlockActive, 0)
	b.EndDate = time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC)
	lateNow := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)

	got := BlockProgress([]models.Block{b}, lateNow)
	if got.DaysRemaining != 1 {
		t.Errorf("DaysRemaining = %d, want 1", got.DaysRemaining)
	}
}

func TestProgramPosition(t *testing.T) {
	if got := ProgramPosition(nil, nil); got != Placeholder {
		t.Errorf("ProgramPosition(nil, nil) = %q, want %q", got, Placeholder)
	}

	active := block(3, models.BlockActive, 7)
	active.CurrentDay = models.CurrentDay{Week: 2, Day: 2}
	blocks := []models.Block{
		block(1, models.BlockComplete, -50),
		block(2, models.BlockComplete, -22),
		active,
		block(4, models.BlockPlanned, 35),
	}
	phase := &models.Phase{PhaseNumber: 2}

	if got, want := ProgramPosition(blocks, phase), "P2 B3(4) W2 D2"; got != want {
		t.Errorf("ProgramPosition = %q, want %q", got, want)
	}

	if got := ProgramPosition(blocks, nil); got != Placeholder {
		t.Errorf("ProgramPosition without phase = %q, want %q", got, Placeholder)
	}
}

// TestProgramPositionDefaults verifies week and day default to 1.
func TestProgramPositionDefaults(t *testing.T) {
	blocks := []models.Block{block(1, models.BlockActive, 10)}
	got := ProgramPosition(blocks, &models.Phase{PhaseNumber: 1})
	if want := "P1 B1(1) W1 D1"; got != want {
		t.Errorf("ProgramPosition = %q, want %q", got, want)
	}
}

func TestSubSeasonStatus(t *testing.T) {
	tests := []struct {
		season string
		want   string
	}{
		{"In-Season", "In-Season"},
		{"Spring In-Season", "In-Season"},
		{"Off-Season", "Off-Season"},
		{"Early Off-Season", "Off-Season"},
		{"Pre-Season", "In-Season"},
		{"Transition", "Transition"},
		{"", Placeholder},
	}
	for _, tt := range tests {
		b := block(1, models.BlockActive, 5)
		b.Season = tt.season
		if got := SubSeasonStatus([]models.Block{b}); got != tt.want {
			t.Errorf("SubSeasonStatus(%q) = %q, want %q", tt.season, got, tt.want)
		}
	}

	if got := SubSeasonStatus(nil); got != Placeholder {
		t.Errorf("SubSeasonStatus(nil) = %q, want %q", got, Placeholder)
	}
}

func TestNextBlockDue(t *testing.T) {
	if got := NextBlockDue(nil); got.Date != nil || got.Text != Placeholder {
		t.Errorf("NextBlockDue(nil) = %+v, want placeholder", got)
	}

	late := time.Date(2026, 4, 20, 9, 0, 0, 0, time.UTC)
	early := time.Date(2026, 3, 4, 18, 45, 0, 0, time.UTC)
	blocks := []models.Block{
		block(1, models.BlockActive, 5),
		block(2, models.BlockPlanned, 30),
		block(3, models.BlockPlanned, 60),
	}
	blocks[1].NextBlockDue = &late
	blocks[2].NextBlockDue = &early

	got := NextBlockDue(blocks)
	if got.Date == nil {
		t.Fatal("Date is nil")
	}
	if want := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC); !got.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", got.Date, want)
	}
	if got.Text != "Mar 4, 2026" {
		t.Errorf("Text = %q, want %q", got.Text, "Mar 4, 2026")
	}
	if !blocks[2].NextBlockDue.Equal(early) {
		t.Error("input due date was modified")
	}
}

func TestCurrentPhase(t *testing.T) {
	p1 := models.Phase{PhaseNumber: 1, StartDate: day(-120), EndDate: day(-31)}
	p2 := models.Phase{PhaseNumber: 2, StartDate: day(-30), EndDate: day(0)}
	p3 := models.Phase{PhaseNumber: 3, StartDate: day(30), EndDate: day(90)}

	tests := []struct {
		name   string
		phases []models.Phase
		want   int
		wantOK bool
	}{
		{name: "empty", wantOK: false},
		{name: "contains today", phases: []models.Phase{p3, p1, p2}, want: 2, wantOK: true},
		{name: "gap falls back to latest started", phases: []models.Phase{p1, p3}, want: 1, wantOK: true},
		{name: "only future", phases: []models.Phase{p3}, want: 3, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CurrentPhase(tt.phases, now)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.PhaseNumber != tt.want {
				t.Errorf("PhaseNumber = %d, want %d", got.PhaseNumber, tt.want)
			}
		})
	}
}
