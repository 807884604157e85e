package timeline

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/llalegg/trd-pb-sub003/internal/models"
)

func d(month time.Month, day int) time.Time {
	return time.Date(2026, month, day, 0, 0, 0, 0, time.UTC)
}

func TestLayout(t *testing.T) {
	blocks := []models.Block{
		{BlockNumber: 3, Status: models.BlockPlanned, StartDate: d(3, 30), EndDate: d(4, 26)},
		{BlockNumber: 1, Status: models.BlockComplete, StartDate: d(2, 2), EndDate: d(3, 1)},
		{BlockNumber: 2, Status: models.BlockActive, StartDate: d(3, 2), EndDate: d(3, 29)},
		{BlockNumber: 4, Status: models.BlockDraft, StartDate: d(5, 1), EndDate: d(5, 28)},
	}

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	tl := Layout(blocks, d(3, 1), d(4, 4), now)

	if tl.Days != 35 {
		t.Errorf("Days = %d, want 35", tl.Days)
	}
	if tl.Today == nil || *tl.Today != 9 {
		t.Errorf("Today = %v, want 9", tl.Today)
	}

	want := []Bar{
		{BlockNumber: 1, Status: models.BlockComplete, Offset: 0, Span: 1, ClippedStart: true},
		{BlockNumber: 2, Status: models.BlockActive, Offset: 1, Span: 28},
		{BlockNumber: 3, Status: models.BlockPlanned, Offset: 29, Span: 6, ClippedEnd: true},
	}
	if diff := cmp.Diff(want, tl.Bars, cmpopts.IgnoreFields(Bar{}, "BlockID")); diff != "" {
		t.Errorf("Bars mismatch (-want +got):\n%s", diff)
	}
}

// TestLayoutTodayOutside verifies no today marker is set when now falls
// outside the window.
func TestLayoutTodayOutside(t *testing.T) {
	tl := Layout(nil, d(6, 1), d(6, 30), d(3, 10))
	if tl.Today != nil {
		t.Errorf("Today = %d, want nil", *tl.Today)
	}
	if len(tl.Bars) != 0 {
		t.Errorf("Bars = %d, want 0", len(tl.Bars))
	}
}

func TestLayoutInvertedWindow(t *testing.T) {
	blocks := []models.Block{{BlockNumber: 1, StartDate: d(3, 1), EndDate: d(3, 28)}}
	tl := Layout(blocks, d(3, 20), d(3, 10), d(3, 15))
	if tl.Days != 0 || len(tl.Bars) != 0 || tl.Today != nil {
		t.Errorf("inverted window = %+v, want empty", tl)
	}
}

// TestLayoutSingleDayBlock verifies that a block starting and ending on the
// same day spans one column.
func TestLayoutSingleDayBlock(t *testing.T) {
	blocks := []models.Block{{BlockNumber: 1, StartDate: d(3, 5), EndDate: d(3, 5)}}
	tl := Layout(blocks, d(3, 1), d(3, 7), d(3, 1))
	if len(tl.Bars) != 1 {
		t.Fatalf("Bars = %d, want 1", len(tl.Bars))
	}
	if tl.Bars[0].Offset != 4 || tl.Bars[0].Span != 1 {
		t.Errorf("bar = %+v, want offset 4 span 1", tl.Bars[0])
	}
}
