package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) athletes(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	athletes, err := h.ds.ListAthletes(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, athletes)
}

func (h *handlers) completionList(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := h.completions.ListCompletions(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, list)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
