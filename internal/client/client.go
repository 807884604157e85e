// Package client talks to the coachboard REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/llalegg/trd-pb-sub003/internal/completion"
	"github.com/llalegg/trd-pb-sub003/internal/models"
	"github.com/llalegg/trd-pb-sub003/internal/program"
)

// Client calls the coachboard server over HTTP. It satisfies the MCP
// DataSource so an MCP session can run locally against a remote server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client targeting baseURL. apiKey is only needed for
// coach write endpoints and may be empty.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client: %s returned %d: %s", e.Path, e.Code, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &StatusError{Path: path, Code: resp.StatusCode, Message: msg}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) ListAthletes(ctx context.Context) ([]models.Athlete, error) {
	var athletes []models.Athlete
	if err := c.get(ctx, "/api/v1/athletes", nil, &athletes); err != nil {
		return nil, err
	}
	return athletes, nil
}

// GetStats returns aggregate program counts.
func (c *Client) GetStats(ctx context.Context) (*models.ProgramStats, error) {
	var stats models.ProgramStats
	if err := c.get(ctx, "/api/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetAthlete has no dedicated endpoint; it is resolved from the athlete list.
func (c *Client) GetAthlete(ctx context.Context, id uuid.UUID) (*models.Athlete, error) {
	athletes, err := c.ListAthletes(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range athletes {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, &StatusError{Path: "/api/v1/athletes", Code: http.StatusNotFound, Message: "athlete not found"}
}

func (c *Client) ListPhases(ctx context.Context, athleteID uuid.UUID) ([]models.Phase, error) {
	var phases []models.Phase
	if err := c.get(ctx, "/api/v1/athletes/"+athleteID.String()+"/phases", nil, &phases); err != nil {
		return nil, err
	}
	return phases, nil
}

func (c *Client) ListBlocks(ctx context.Context, phaseID uuid.UUID) ([]models.Block, error) {
	var blocks []models.Block
	if err := c.get(ctx, "/api/v1/phases/"+phaseID.String()+"/blocks", nil, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// GetMilestones fetches the server-derived milestones. phase 0 means the
// athlete's current phase.
func (c *Client) GetMilestones(ctx context.Context, athleteID uuid.UUID, phase int, expanded bool) (*program.Milestones, error) {
	params := url.Values{}
	if phase > 0 {
		params.Set("phase", strconv.Itoa(phase))
	}
	if expanded {
		params.Set("expanded", "true")
	}

	var m program.Milestones
	if err := c.get(ctx, "/api/v1/athletes/"+athleteID.String()+"/milestones", params, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) MarkCompleted(ctx context.Context, routineType, exerciseName string, sets int) (completion.Completion, error) {
	in := map[string]any{
		"routine_type":   routineType,
		"exercise_name":  exerciseName,
		"completed_sets": sets,
	}
	var out completion.Completion
	if err := c.do(ctx, http.MethodPost, "/api/v1/completions", nil, in, &out); err != nil {
		return completion.Completion{}, err
	}
	return out, nil
}

// GetCompletion returns nil when the exercise has no record.
func (c *Client) GetCompletion(ctx context.Context, routineType, exerciseName string) (*completion.Completion, error) {
	path := "/api/v1/completions/" + url.PathEscape(routineType) + "/" + url.PathEscape(exerciseName)
	var resp struct {
		Completed  bool                   `json:"completed"`
		Completion *completion.Completion `json:"completion"`
	}
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Completion, nil
}

func (c *Client) ListCompletions(ctx context.Context) ([]completion.Completion, error) {
	var out []completion.Completion
	if err := c.get(ctx, "/api/v1/completions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearCompletions resets the server's tracker. Requires an API key.
func (c *Client) ClearCompletions(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/completions", nil, nil, nil)
}
