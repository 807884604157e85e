package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/llalegg/trd-pb-sub003/internal/client"
	"github.com/llalegg/trd-pb-sub003/internal/completion"
	"github.com/llalegg/trd-pb-sub003/internal/models"
	"github.com/llalegg/trd-pb-sub003/internal/storage"
)

// DataSource abstracts the program data layer for MCP tools. Both *storage.DB
// (local) and *client.Client (remote via REST API) satisfy this interface.
type DataSource interface {
	ListAthletes(ctx context.Context) ([]models.Athlete, error)
	GetAthlete(ctx context.Context, id uuid.UUID) (*models.Athlete, error)
	ListPhases(ctx context.Context, athleteID uuid.UUID) ([]models.Phase, error)
	ListBlocks(ctx context.Context, phaseID uuid.UUID) ([]models.Block, error)
}

// Completions is the exercise completion state the tools read and write.
type Completions interface {
	MarkCompleted(ctx context.Context, routineType, exerciseName string, sets int) (completion.Completion, error)
	GetCompletion(ctx context.Context, routineType, exerciseName string) (*completion.Completion, error)
	ListCompletions(ctx context.Context) ([]completion.Completion, error)
}

// Compile-time checks.
var (
	_ DataSource  = (*storage.DB)(nil)
	_ DataSource  = (*client.Client)(nil)
	_ Completions = (*client.Client)(nil)
)

// LocalCompletions serves Completions from an in-process tracker.
// onMark, if set, runs after every completion.
func LocalCompletions(t *completion.Tracker, onMark func(completion.Completion)) Completions {
	return &trackerCompletions{tracker: t, onMark: onMark}
}

type trackerCompletions struct {
	tracker *completion.Tracker
	onMark  func(completion.Completion)
}

func (tc *trackerCompletions) MarkCompleted(_ context.Context, routineType, exerciseName string, sets int) (completion.Completion, error) {
	c := tc.tracker.MarkCompleted(routineType, exerciseName, sets)
	if tc.onMark != nil {
		tc.onMark(c)
	}
	return c, nil
}

func (tc *trackerCompletions) GetCompletion(_ context.Context, routineType, exerciseName string) (*completion.Completion, error) {
	c, ok := tc.tracker.Completion(routineType, exerciseName)
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (tc *trackerCompletions) ListCompletions(context.Context) ([]completion.Completion, error) {
	return tc.tracker.Snapshot(), nil
}
