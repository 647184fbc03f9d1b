package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(svc PlanService, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("liftsync", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("liftsync weekly training plan server. Read the current weekly plan and its supplemental days, and log performed sets back to the plan sheet."),
	)

	h := &handlers{svc: svc, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetWeeklyPlan, Handler: h.getWeeklyPlan},
		server.ServerTool{Tool: toolGetSupplementalPlan, Handler: h.getSupplementalPlan},
		server.ServerTool{Tool: toolLogWorkout, Handler: h.logWorkout},
		server.ServerTool{Tool: toolGetSyncHistory, Handler: h.getSyncHistory},
	)

	s.AddResources(
		server.ServerResource{Resource: resCurrentPlan, Handler: h.currentPlan},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	svc PlanService
	log *slog.Logger
}
