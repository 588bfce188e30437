// Package mcp exposes the task tracker and focus history over the Model
// Context Protocol, so agents can query and mutate the same data the
// scheduler works from.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"taskroll/internal/domain"
	"taskroll/internal/ports"
	"taskroll/internal/services"
)

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server  *server.MCPServer
	tracker ports.TaskTracker
	history *services.HistoryService
}

// NewServer creates a new MCP server instance. history may be nil when focus
// logging is disabled; the stats tools then report an error.
func NewServer(tracker ports.TaskTracker, history *services.HistoryService) *Server {
	s := &Server{
		tracker: tracker,
		history: history,
	}

	s.server = server.NewMCPServer(
		"taskroll",
		"1.0.0",
		server.WithLogging(),
	)

	s.registerTools()
	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	listTool := mcp.NewTool(
		"list_tasks",
		mcp.WithDescription("List the tasks currently eligible for selection, with their urgency weights"),
		mcp.WithString(
			"query",
			mcp.Description("Optional fuzzy filter on task descriptions"),
		),
	)
	s.server.AddTool(listTool, s.handleListTasks)

	completeTool := mcp.NewTool(
		"complete_task",
		mcp.WithDescription("Mark a task done in the tracker"),
		mcp.WithString(
			"uuid",
			mcp.Required(),
			mcp.Description("The UUID of the task to complete"),
		),
	)
	s.server.AddTool(completeTool, s.handleCompleteTask)

	deferTool := mcp.NewTool(
		"defer_task",
		mcp.WithDescription("Defer a task by applying a wait mutation"),
		mcp.WithString(
			"uuid",
			mcp.Required(),
			mcp.Description("The UUID of the task to defer"),
		),
		mcp.WithString(
			"mutation",
			mcp.Description("Field mutation to apply (default: wait:+1d)"),
		),
	)
	s.server.AddTool(deferTool, s.handleDeferTask)

	statsTool := mcp.NewTool(
		"focus_stats",
		mcp.WithDescription("Aggregate focus session statistics"),
		mcp.WithString(
			"period",
			mcp.Description("Aggregation window: week or month (default: week)"),
			mcp.Enum("week", "month"),
		),
	)
	s.server.AddTool(statsTool, s.handleFocusStats)

	recentTool := mcp.NewTool(
		"recent_focus",
		mcp.WithDescription("List recent focus session records"),
		mcp.WithNumber(
			"days",
			mcp.Description("How many days back to look (default: 7)"),
		),
	)
	s.server.AddTool(recentTool, s.handleRecentFocus)
}

// Start begins serving MCP requests via stdio.
func (s *Server) Start(ctx context.Context) error {
	return server.ServeStdio(s.server)
}

// handleListTasks handles the list_tasks tool.
func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := s.tracker.FetchCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks = services.FilterTasks(tasks, request.GetString("query", ""))

	payload := make([]map[string]interface{}, 0, len(tasks))
	for _, task := range tasks {
		entry := map[string]interface{}{
			"id":          task.ID,
			"uuid":        task.UUID,
			"description": task.Description,
			"tags":        task.Tags,
			"project":     task.Project,
			"urgency":     task.Urgency,
		}
		if task.Due != nil {
			entry["due"] = task.Due.Format(time.RFC3339)
		}
		if task.Estimate != nil {
			entry["estimate"] = task.Estimate.String()
		}
		payload = append(payload, entry)
	}

	return jsonResult(payload)
}

// handleCompleteTask handles the complete_task tool.
func (s *Server) handleCompleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uuid, err := request.RequireString("uuid")
	if err != nil {
		return nil, err
	}

	if err := s.tracker.MarkComplete(ctx, uuid); err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("task %s marked done", uuid)), nil
}

// handleDeferTask handles the defer_task tool.
func (s *Server) handleDeferTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uuid, err := request.RequireString("uuid")
	if err != nil {
		return nil, err
	}
	mutation := request.GetString("mutation", "wait:+1d")

	if err := s.tracker.Modify(ctx, uuid, mutation); err != nil {
		return nil, fmt.Errorf("failed to defer task: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("task %s deferred (%s)", uuid, mutation)), nil
}

// handleFocusStats handles the focus_stats tool.
func (s *Server) handleFocusStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.history == nil {
		return nil, fmt.Errorf("focus history is disabled")
	}

	now := time.Now()
	var stats *domain.PeriodStats
	var err error

	switch request.GetString("period", "week") {
	case "month":
		stats, err = s.history.MonthStats(ctx, now)
	default:
		stats, err = s.history.WeekStats(ctx, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	byProject := make(map[string]string, len(stats.ByProject))
	for project, focus := range stats.ByProject {
		byProject[project] = focus.String()
	}

	return jsonResult(map[string]interface{}{
		"label":           stats.Label,
		"sessions":        stats.Sessions,
		"completed":       stats.Completed,
		"rerolled":        stats.Rerolled,
		"focus_time":      stats.FocusTime.String(),
		"completion_rate": stats.CompletionRate(),
		"by_project":      byProject,
	})
}

// handleRecentFocus handles the recent_focus tool.
func (s *Server) handleRecentFocus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.history == nil {
		return nil, fmt.Errorf("focus history is disabled")
	}

	days := int(request.GetFloat("days", 7))
	since := time.Now().AddDate(0, 0, -days)

	records, err := s.history.Recent(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list focus records: %w", err)
	}

	payload := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		entry := map[string]interface{}{
			"id":          record.ID,
			"task_uuid":   record.TaskUUID,
			"description": record.Description,
			"project":     record.Project,
			"planned":     record.Planned.String(),
			"started_at":  record.StartedAt.Format(time.RFC3339),
			"outcome":     string(record.Outcome),
			"git_branch":  record.GitBranch,
			"git_commit":  record.GitCommit,
		}
		if record.EndedAt != nil {
			entry["ended_at"] = record.EndedAt.Format(time.RFC3339)
		}
		payload = append(payload, entry)
	}

	return jsonResult(payload)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
