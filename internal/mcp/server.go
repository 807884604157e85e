package mcp

import (
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, completions Completions, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("coachboard", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("coachboard training program server. Look up athletes, where they are in their program (phase, block, week, day), upcoming block deadlines, and record completed exercises."),
	)

	h := &handlers{ds: ds, completions: completions, log: log, now: time.Now}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListAthletes, Handler: h.listAthletes},
		server.ServerTool{Tool: toolGetMilestones, Handler: h.getMilestones},
		server.ServerTool{Tool: toolGetProgramPosition, Handler: h.getProgramPosition},
		server.ServerTool{Tool: toolGetTimeline, Handler: h.getTimeline},
		server.ServerTool{Tool: toolListBlocks, Handler: h.listBlocks},
		server.ServerTool{Tool: toolMarkExerciseCompleted, Handler: h.markExerciseCompleted},
		server.ServerTool{Tool: toolGetExerciseCompletion, Handler: h.getExerciseCompletion},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resAthletes, Handler: h.athletes},
		server.ServerResource{Resource: resCompletions, Handler: h.completionList},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds          DataSource
	completions Completions
	log         *slog.Logger
	now         func() time.Time
}

// --- Resource definitions ---

var resAthletes = mcp.NewResource(
	"coachboard://athletes",
	"Athletes",
	mcp.WithResourceDescription("All coached athletes with their IDs"),
	mcp.WithMIMEType("application/json"),
)

var resCompletions = mcp.NewResource(
	"coachboard://completions",
	"Exercise Completions",
	mcp.WithResourceDescription("Exercises completed in the current session, ordered by routine type and name"),
	mcp.WithMIMEType("application/json"),
)
