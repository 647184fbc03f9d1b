package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftsync/internal/models"
)

// --- Tool definitions ---

var toolGetWeeklyPlan = mcp.NewTool("get_weekly_plan",
	mcp.WithDescription("Get the current weekly training plan: one entry per day with its exercises (block, name, sets, reps, load, rest, notes, log)."),
	mcp.WithBoolean("force", mcp.Description("Skip the local cache and read the newest weekly sheet. Defaults to false.")),
)

var toolGetSupplementalPlan = mcp.NewTool("get_supplemental_plan",
	mcp.WithDescription("Get the supplemental exercises for Tuesday, Thursday and Saturday from the current weekly plan."),
)

var toolLogWorkout = mcp.NewTool("log_workout",
	mcp.WithDescription("Write performed results into the Log column of the current weekly sheet. Entries must be in the same order as the exercises appear under the date."),
	mcp.WithString("date", mcp.Required(), mcp.Description("Date label exactly as written in the sheet's first column, e.g. 3/2/2026")),
	mcp.WithArray("entries", mcp.Required(),
		mcp.Description("Logged exercises in sheet order"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"exercise": map[string]any{"type": "string", "description": "Exercise name, may be abbreviated"},
				"log":      map[string]any{"type": "string", "description": "Result text, e.g. 185x5, 185x5, 185x4"},
			},
			"required": []string{"exercise", "log"},
		}),
	),
)

var toolGetSyncHistory = mcp.NewTool("get_sync_history",
	mcp.WithDescription("List recent plan loads, log write-backs and publishes, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of runs. Defaults to 20.")),
)

// --- Tool handlers ---

func (h *handlers) getWeeklyPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.svc.Load(ctx, req.GetBool("force", false))
	if err != nil {
		h.log.Error("mcp get_weekly_plan", "error", err)
		return mcp.NewToolResultError("load failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(snap)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSupplementalPlan(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bucket, err := h.svc.LoadSupplemental(ctx)
	if err != nil {
		h.log.Error("mcp get_supplemental_plan", "error", err)
		return mcp.NewToolResultError("load failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(bucket)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date parameter is required"), nil
	}

	entries, err := logEntries(req.GetArguments()["entries"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := h.svc.SaveLogs(ctx, date, entries)
	if err != nil {
		h.log.Error("mcp log_workout", "error", err)
		return mcp.NewToolResultError("write-back failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSyncHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runs, err := h.svc.History(ctx, req.GetInt("limit", 20))
	if err != nil {
		h.log.Error("mcp get_sync_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(runs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// logEntries converts the raw entries argument into log entries.
func logEntries(raw any) ([]models.LogEntry, error) {
	if raw == nil {
		return nil, fmt.Errorf("entries parameter is required")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid entries: %w", err)
	}
	var entries []models.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("entries must not be empty")
	}
	for i, e := range entries {
		if e.Exercise == "" {
			return nil, fmt.Errorf("entries[%d]: exercise is required", i)
		}
	}
	return entries, nil
}
