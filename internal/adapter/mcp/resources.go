package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

const defaultWorkflowURIPrefix = "taskforge://projects/"

// registerResources registers all MCP resources on the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			defaultWorkflowURIPrefix+"{project_id}/workflows/default",
			"Default Workflow",
			mcplib.WithTemplateDescription("The default workflow graph of a project"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		s.handleDefaultWorkflowResource,
	)
}

// projectFromURI extracts the project id from
// taskforge://projects/{project_id}/workflows/default.
func projectFromURI(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, defaultWorkflowURIPrefix)
	if !ok {
		return "", false
	}
	projectID, ok := strings.CutSuffix(rest, "/workflows/default")
	if !ok || projectID == "" || strings.Contains(projectID, "/") {
		return "", false
	}
	return projectID, true
}

func (s *Server) handleDefaultWorkflowResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Workflows == nil {
		return nil, errors.New("workflow service not configured")
	}
	projectID, ok := projectFromURI(req.Params.URI)
	if !ok {
		return nil, errors.New("invalid default workflow resource URI")
	}
	w, err := s.deps.Workflows.GetDefault(ctx, projectID)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
