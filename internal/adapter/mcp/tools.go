package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/TaskForge/internal/domain/task"
)

var taskStatuses = []string{
	string(task.StatusCreated),
	string(task.StatusAssigned),
	string(task.StatusInProgress),
	string(task.StatusReview),
	string(task.StatusChangesRequested),
	string(task.StatusDone),
	string(task.StatusCancelled),
}

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.listTasksTool(),
		s.getTaskTool(),
		s.listSubtasksTool(),
		s.updateTaskStatusTool(),
		s.listWorkflowsTool(),
		s.getDefaultWorkflowTool(),
		s.promoteWorkflowTool(),
	)
}

func (s *Server) listTasksTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_tasks",
		mcplib.WithDescription("List top-level tasks of a project with subtask progress, newest first"),
		mcplib.WithString("project_id", mcplib.Required(), mcplib.Description("Project to list tasks for")),
		mcplib.WithString("status", mcplib.Description("Only return tasks in this status"), mcplib.Enum(taskStatuses...)),
		mcplib.WithBoolean("include_subtasks", mcplib.Description("Also return subtasks")),
		mcplib.WithNumber("limit", mcplib.Description("Page size, 1 to 100 (default 50)")),
		mcplib.WithNumber("offset", mcplib.Description("Number of tasks to skip")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleListTasks}
}

func (s *Server) getTaskTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_task",
		mcplib.WithDescription("Get a task by ID"),
		mcplib.WithString("task_id", mcplib.Required(), mcplib.Description("The task ID to look up")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleGetTask}
}

func (s *Server) listSubtasksTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_subtasks",
		mcplib.WithDescription("List the direct subtasks of a task, oldest first"),
		mcplib.WithString("task_id", mcplib.Required(), mcplib.Description("The parent task ID")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleListSubtasks}
}

func (s *Server) updateTaskStatusTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("update_task_status",
		mcplib.WithDescription("Move a task to a new status. Assigning requires an active tech lead agent."),
		mcplib.WithString("task_id", mcplib.Required(), mcplib.Description("The task to update")),
		mcplib.WithString("status", mcplib.Required(), mcplib.Description("The new status"), mcplib.Enum(taskStatuses...)),
		mcplib.WithString("result", mcplib.Description("Optional result text to record")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleUpdateTaskStatus}
}

func (s *Server) listWorkflowsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_workflows",
		mcplib.WithDescription("List the workflows of a project, newest first"),
		mcplib.WithString("project_id", mcplib.Required(), mcplib.Description("Project to list workflows for")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleListWorkflows}
}

func (s *Server) getDefaultWorkflowTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_default_workflow",
		mcplib.WithDescription("Get the default workflow of a project"),
		mcplib.WithString("project_id", mcplib.Required(), mcplib.Description("The project ID")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleGetDefaultWorkflow}
}

func (s *Server) promoteWorkflowTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("promote_workflow",
		mcplib.WithDescription("Make a workflow the default of its project, replacing the current default"),
		mcplib.WithString("workflow_id", mcplib.Required(), mcplib.Description("The workflow to promote")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handlePromoteWorkflow}
}

func (s *Server) handleListTasks(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tasks == nil {
		return mcplib.NewToolResultError("task service not configured"), nil
	}
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcplib.NewToolResultError("project_id is required"), nil
	}
	tasks, err := s.deps.Tasks.List(ctx, task.ListFilter{
		ProjectID:       projectID,
		Status:          task.Status(req.GetString("status", "")),
		IncludeSubtasks: req.GetBool("include_subtasks", false),
		Limit:           req.GetInt("limit", 0),
		Offset:          req.GetInt("offset", 0),
	})
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list tasks", err), nil
	}
	return toolResultJSON(tasks)
}

func (s *Server) handleGetTask(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tasks == nil {
		return mcplib.NewToolResultError("task service not configured"), nil
	}
	taskID := req.GetString("task_id", "")
	if taskID == "" {
		return mcplib.NewToolResultError("task_id is required"), nil
	}
	t, err := s.deps.Tasks.Get(ctx, taskID)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("failed to get task %s", taskID), err), nil
	}
	return toolResultJSON(t)
}

func (s *Server) handleListSubtasks(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tasks == nil {
		return mcplib.NewToolResultError("task service not configured"), nil
	}
	taskID := req.GetString("task_id", "")
	if taskID == "" {
		return mcplib.NewToolResultError("task_id is required"), nil
	}
	subtasks, err := s.deps.Tasks.ListSubtasks(ctx, taskID)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("failed to list subtasks of %s", taskID), err), nil
	}
	return toolResultJSON(subtasks)
}

func (s *Server) handleUpdateTaskStatus(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tasks == nil {
		return mcplib.NewToolResultError("task service not configured"), nil
	}
	taskID := req.GetString("task_id", "")
	if taskID == "" {
		return mcplib.NewToolResultError("task_id is required"), nil
	}
	status := task.Status(req.GetString("status", ""))
	if status == "" {
		return mcplib.NewToolResultError("status is required"), nil
	}

	patch := task.UpdateRequest{Status: &status}
	if result, ok := req.GetArguments()["result"].(string); ok {
		patch.Result = &result
	}
	t, err := s.deps.Tasks.Update(ctx, taskID, patch)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("failed to update task %s", taskID), err), nil
	}
	return toolResultJSON(t)
}

func (s *Server) handleListWorkflows(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Workflows == nil {
		return mcplib.NewToolResultError("workflow service not configured"), nil
	}
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcplib.NewToolResultError("project_id is required"), nil
	}
	wfs, err := s.deps.Workflows.List(ctx, projectID)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list workflows", err), nil
	}
	return toolResultJSON(wfs)
}

func (s *Server) handleGetDefaultWorkflow(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Workflows == nil {
		return mcplib.NewToolResultError("workflow service not configured"), nil
	}
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcplib.NewToolResultError("project_id is required"), nil
	}
	w, err := s.deps.Workflows.GetDefault(ctx, projectID)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("no default workflow for project %s", projectID), err), nil
	}
	return toolResultJSON(w)
}

func (s *Server) handlePromoteWorkflow(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Workflows == nil {
		return mcplib.NewToolResultError("workflow service not configured"), nil
	}
	workflowID := req.GetString("workflow_id", "")
	if workflowID == "" {
		return mcplib.NewToolResultError("workflow_id is required"), nil
	}
	w, err := s.deps.Workflows.Promote(ctx, workflowID)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("failed to promote workflow %s", workflowID), err), nil
	}
	return toolResultJSON(w)
}

// toolResultJSON returns v as a JSON text result.
func toolResultJSON(v any) (*mcplib.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal result", err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}
