package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/llalegg/trd-pb-sub003/internal/completion"
	"github.com/llalegg/trd-pb-sub003/internal/models"
	"github.com/llalegg/trd-pb-sub003/internal/program"
	"github.com/llalegg/trd-pb-sub003/internal/timeline"
	"github.com/mark3labs/mcp-go/mcp"
)

// timelineDefaultDays is the window shown when an athlete has no current phase.
const timelineDefaultDays = 28

// timelineRange resolves the timeline window: explicit dates win, then the
// phase range, then four weeks from now.
func timelineRange(phase *models.Phase, startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	start, end := now, now.AddDate(0, 0, timelineDefaultDays-1)
	if phase != nil {
		start, end = phase.StartDate, phase.EndDate
	}

	var err error
	if startStr != "" {
		if start, err = parseFlexTime(startStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endStr != "" {
		if end, err = parseFlexTime(endStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end must not be before start")
	}
	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolListAthletes = mcp.NewTool("list_athletes",
	mcp.WithDescription("List all coached athletes with their IDs, names and sports. Use the ID with the other tools."),
)

var toolGetMilestones = mcp.NewTool("get_milestones",
	mcp.WithDescription("Program milestones for an athlete: position code (e.g. 'P2 B3(4) W2 D2'), days until the active block ends with a severity band, sub-season status, and the next block's due date."),
	mcp.WithString("athlete_id", mcp.Required(), mcp.Description("Athlete UUID")),
	mcp.WithNumber("phase", mcp.Description("Phase number. Defaults to the athlete's current phase.")),
	mcp.WithBoolean("expanded", mcp.Description("Include the phase's blocks in the result.")),
)

var toolGetProgramPosition = mcp.NewTool("get_program_position",
	mcp.WithDescription("Compact position of an athlete in their program as 'P<phase> B<block>(<blocks in phase>) W<week> D<day>', plus the sub-season label."),
	mcp.WithString("athlete_id", mcp.Required(), mcp.Description("Athlete UUID")),
	mcp.WithNumber("phase", mcp.Description("Phase number. Defaults to the athlete's current phase.")),
)

var toolGetTimeline = mcp.NewTool("get_timeline",
	mcp.WithDescription("Lay out the athlete's current phase blocks on a day grid. Each bar has a day offset and span from the window start."),
	mcp.WithString("athlete_id", mcp.Required(), mcp.Description("Athlete UUID")),
	mcp.WithString("start", mcp.Description("Window start (ISO 8601 or YYYY-MM-DD). Defaults to the phase start.")),
	mcp.WithString("end", mcp.Description("Window end (ISO 8601 or YYYY-MM-DD). Defaults to the phase end.")),
)

var toolListBlocks = mcp.NewTool("list_blocks",
	mcp.WithDescription("List the training blocks of one phase with dates, status, season and current week/day."),
	mcp.WithString("athlete_id", mcp.Required(), mcp.Description("Athlete UUID")),
	mcp.WithNumber("phase", mcp.Description("Phase number. Defaults to the athlete's current phase.")),
)

var toolMarkExerciseCompleted = mcp.NewTool("mark_exercise_completed",
	mcp.WithDescription("Record that an exercise was completed. Replaces any earlier record for the same routine type and exercise."),
	mcp.WithString("routine_type", mcp.Required(), mcp.Description("Routine type (e.g. 'lifting', 'throwing', 'mobility')")),
	mcp.WithString("exercise_name", mcp.Required(), mcp.Description("Exercise name (e.g. 'Back Squat')")),
	mcp.WithNumber("sets", mcp.Description("Number of completed sets. Defaults to 0.")),
)

var toolGetExerciseCompletion = mcp.NewTool("get_exercise_completion",
	mcp.WithDescription("Check whether an exercise has been completed and, if so, how many sets and when."),
	mcp.WithString("routine_type", mcp.Required(), mcp.Description("Routine type")),
	mcp.WithString("exercise_name", mcp.Required(), mcp.Description("Exercise name")),
)

// --- Tool handlers ---

func (h *handlers) listAthletes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	athletes, err := h.ds.ListAthletes(ctx)
	if err != nil {
		h.log.Error("mcp list_athletes", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(athletes)
}

// loadPhase resolves the athlete_id and phase arguments shared by the
// program tools. A non-nil result means the tool should return it as is.
func (h *handlers) loadPhase(ctx context.Context, req mcp.CallToolRequest, tool string) (*models.Phase, []models.Block, *mcp.CallToolResult) {
	idStr, err := req.RequireString("athlete_id")
	if err != nil {
		return nil, nil, mcp.NewToolResultError("athlete_id parameter is required")
	}
	athleteID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, nil, mcp.NewToolResultError("athlete_id must be a UUID")
	}
	if _, err := h.ds.GetAthlete(ctx, athleteID); err != nil {
		return nil, nil, mcp.NewToolResultError("athlete not found: " + err.Error())
	}

	phase, blocks, err := program.Load(ctx, h.ds, athleteID, req.GetInt("phase", 0), h.now())
	if errors.Is(err, program.ErrPhaseNotFound) {
		return nil, nil, mcp.NewToolResultError(err.Error())
	}
	if err != nil {
		h.log.Error("mcp "+tool, "error", err)
		return nil, nil, mcp.NewToolResultError("query failed: " + err.Error())
	}
	return phase, blocks, nil
}

func (h *handlers) getMilestones(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phase, blocks, res := h.loadPhase(ctx, req, "get_milestones")
	if res != nil {
		return res, nil
	}
	return jsonResult(program.Summarize(blocks, phase, h.now(), req.GetBool("expanded", false)))
}

type positionResult struct {
	Position  string `json:"position"`
	SubSeason string `json:"sub_season"`
}

func (h *handlers) getProgramPosition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phase, blocks, res := h.loadPhase(ctx, req, "get_program_position")
	if res != nil {
		return res, nil
	}
	return jsonResult(positionResult{
		Position:  program.ProgramPosition(blocks, phase),
		SubSeason: program.SubSeasonStatus(blocks),
	})
}

func (h *handlers) getTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phase, blocks, res := h.loadPhase(ctx, req, "get_timeline")
	if res != nil {
		return res, nil
	}

	now := h.now()
	start, end, err := timelineRange(phase, req.GetString("start", ""), req.GetString("end", ""), now)
	if err != nil {
		return mcp.NewToolResultError("invalid date range: " + err.Error()), nil
	}
	return jsonResult(timeline.Layout(blocks, start, end, now))
}

func (h *handlers) listBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, blocks, res := h.loadPhase(ctx, req, "list_blocks")
	if res != nil {
		return res, nil
	}
	if blocks == nil {
		blocks = []models.Block{}
	}
	return jsonResult(blocks)
}

func (h *handlers) markExerciseCompleted(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	routineType, err := req.RequireString("routine_type")
	if err != nil || routineType == "" {
		return mcp.NewToolResultError("routine_type parameter is required"), nil
	}
	exerciseName, err := req.RequireString("exercise_name")
	if err != nil || exerciseName == "" {
		return mcp.NewToolResultError("exercise_name parameter is required"), nil
	}
	sets := req.GetInt("sets", 0)
	if sets < 0 {
		return mcp.NewToolResultError("sets must not be negative"), nil
	}

	c, err := h.completions.MarkCompleted(ctx, routineType, exerciseName, sets)
	if err != nil {
		h.log.Error("mcp mark_exercise_completed", "error", err)
		return mcp.NewToolResultError("mark failed: " + err.Error()), nil
	}
	return jsonResult(c)
}

type completionResult struct {
	Completed     bool       `json:"completed"`
	CompletedSets int        `json:"completed_sets,omitempty"`
	Progress      int        `json:"progress"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func (h *handlers) getExerciseCompletion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	routineType, err := req.RequireString("routine_type")
	if err != nil {
		return mcp.NewToolResultError("routine_type parameter is required"), nil
	}
	exerciseName, err := req.RequireString("exercise_name")
	if err != nil {
		return mcp.NewToolResultError("exercise_name parameter is required"), nil
	}

	c, err := h.completions.GetCompletion(ctx, routineType, exerciseName)
	if err != nil {
		h.log.Error("mcp get_exercise_completion", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	var out completionResult
	if c != nil {
		at := c.CompletedAt
		out = completionResult{
			Completed:     c.Progress == completion.FullProgress,
			CompletedSets: c.CompletedSets,
			Progress:      c.Progress,
			CompletedAt:   &at,
		}
	}
	return jsonResult(out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
