// Package timeline lays blocks out on a day grid for the program calendar.
package timeline

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/llalegg/trd-pb-sub003/internal/models"
)

// Bar is one block's horizontal extent on the grid, in whole days.
type Bar struct {
	BlockID      uuid.UUID          `json:"block_id"`
	BlockNumber  int                `json:"block_number"`
	Status       models.BlockStatus `json:"status"`
	Offset       int                `json:"offset"`
	Span         int                `json:"span"`
	ClippedStart bool               `json:"clipped_start"`
	ClippedEnd   bool               `json:"clipped_end"`
}

// Timeline is the laid-out window. Days counts grid columns, both ends inclusive.
type Timeline struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
	Today *int      `json:"today,omitempty"`
	Bars  []Bar     `json:"bars"`
}

// Layout places every block that overlaps [start, end] on the grid.
func Layout(blocks []models.Block, start, end, now time.Time) Timeline {
	start, end = dateOnly(start), dateOnly(end)
	tl := Timeline{Start: start, End: end, Bars: []Bar{}}
	if end.Before(start) {
		return tl
	}
	tl.Days = daysBetween(start, end) + 1

	if today := daysBetween(start, now); today >= 0 && today < tl.Days {
		tl.Today = &today
	}

	sorted := slices.Clone(blocks)
	slices.SortStableFunc(sorted, func(a, b models.Block) int {
		if c := dateOnly(a.StartDate).Compare(dateOnly(b.StartDate)); c != 0 {
			return c
		}
		return cmp.Compare(a.BlockNumber, b.BlockNumber)
	})

	for _, b := range sorted {
		bs, be := dateOnly(b.StartDate), dateOnly(b.EndDate)
		if be.Before(start) || bs.After(end) || be.Before(bs) {
			continue
		}

		bar := Bar{BlockID: b.ID, BlockNumber: b.BlockNumber, Status: b.Status}
		if bs.Before(start) {
			bs = start
			bar.ClippedStart = true
		}
		if be.After(end) {
			be = end
			bar.ClippedEnd = true
		}
		bar.Offset = daysBetween(start, bs)
		bar.Span = daysBetween(bs, be) + 1
		tl.Bars = append(tl.Bars, bar)
	}
	return tl
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}
