package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/llalegg/trd-pb-sub003/internal/client"
	"github.com/llalegg/trd-pb-sub003/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const usage = `Usage: coachboard-cli <command> [flags]

Commands:
  athletes                                  list athletes
  stats                                     show program counts
  milestones -athlete ID [-phase N] [-expanded]
                                            show program milestones
  complete -routine R -exercise E [-sets N] mark an exercise completed
  completions                               list completed exercises
  clear                                     reset completions (needs -api-key)
  mcp                                       serve MCP over stdio against the server
  version                                   print version

Every command accepts -server (default $COACHBOARD_SERVER_URL) and
-api-key (default $COACHBOARD_API_KEY).
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	serverURL := fs.String("server", envOr("COACHBOARD_SERVER_URL", "http://localhost:8080"), "coachboard server URL")
	apiKey := fs.String("api-key", os.Getenv("COACHBOARD_API_KEY"), "API key for coach write endpoints")

	var (
		athlete  = fs.String("athlete", "", "athlete UUID")
		phase    = fs.Int("phase", 0, "phase number (0 = current phase)")
		expanded = fs.Bool("expanded", false, "include the phase's blocks")
		routine  = fs.String("routine", "", "routine type")
		exercise = fs.String("exercise", "", "exercise name")
		sets     = fs.Int("sets", 0, "completed sets")
	)
	fs.Parse(args)

	c := client.New(*serverURL, *apiKey)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var err error
	switch cmd {
	case "athletes":
		err = printResult(c.ListAthletes(ctx))
	case "stats":
		err = printResult(c.GetStats(ctx))
	case "milestones":
		var id uuid.UUID
		if id, err = uuid.Parse(*athlete); err != nil {
			fatalf("-athlete must be a UUID: %v", err)
		}
		err = printResult(c.GetMilestones(ctx, id, *phase, *expanded))
	case "complete":
		if *routine == "" || *exercise == "" {
			fatalf("-routine and -exercise are required")
		}
		err = printResult(c.MarkCompleted(ctx, *routine, *exercise, *sets))
	case "completions":
		err = printResult(c.ListCompletions(ctx))
	case "clear":
		err = c.ClearCompletions(ctx)
	case "mcp":
		cancel()
		err = serveMCP(c)
	case "version":
		fmt.Println("coachboard-cli", Version)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fatalf("%s: %v", cmd, err)
	}
}

// serveMCP runs an MCP session on stdin/stdout whose tools read from the
// remote server. Logs go to stderr so they do not corrupt the protocol stream.
func serveMCP(c *client.Client) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return mcpserver.ServeStdio(mcp.New(c, c, Version, log))
}

func printResult[T any](v T, err error) error {
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
