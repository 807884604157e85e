package models

import "time"

// ProgramStats holds aggregate counts across all stored programs.
type ProgramStats struct {
	Athletes       int64                 `json:"athletes"`
	Phases         int64                 `json:"phases"`
	Blocks         int64                 `json:"blocks"`
	StatusChanges  int64                 `json:"status_changes"`
	BlocksByStatus map[BlockStatus]int64 `json:"blocks_by_status"`
	EarliestBlock  *time.Time            `json:"earliest_block"`
	LatestBlock    *time.Time            `json:"latest_block"`
}
