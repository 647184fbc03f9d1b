package mcp

import (
	"context"

	"github.com/claude/liftsync/internal/models"
	"github.com/claude/liftsync/internal/planner"
)

// PlanService abstracts the plan layer for MCP tools. Both *planner.Planner
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type PlanService interface {
	Load(ctx context.Context, forceRemote bool) (models.PlanSnapshot, error)
	LoadSupplemental(ctx context.Context) (models.SupplementalBucket, error)
	SaveLogs(ctx context.Context, dateLabel string, logs []models.LogEntry) (planner.LogResult, error)
	History(ctx context.Context, limit int) ([]models.SyncRun, error)
}

// Compile-time check: *planner.Planner satisfies PlanService.
var _ PlanService = (*planner.Planner)(nil)
