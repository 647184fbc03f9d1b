package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

var resCurrentPlan = mcp.NewResource(
	"liftsync://current_plan",
	"Current Weekly Plan",
	mcp.WithResourceDescription("The current weekly training plan, from the local cache when available"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) currentPlan(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap, err := h.svc.Load(ctx, false)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
