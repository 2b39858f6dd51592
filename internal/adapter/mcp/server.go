// Package mcp exposes the task and workflow core to agent runtimes as Model
// Context Protocol tools over streamable HTTP.
package mcp

import (
	"context"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/domain/workflow"
)

// TaskService is the part of the task service reachable from agents.
type TaskService interface {
	List(ctx context.Context, filter task.ListFilter) ([]task.Task, error)
	Get(ctx context.Context, id string) (*task.Task, error)
	Update(ctx context.Context, id string, req task.UpdateRequest) (*task.Task, error)
	ListSubtasks(ctx context.Context, parentID string) ([]task.Task, error)
}

// WorkflowService is the part of the workflow service reachable from agents.
type WorkflowService interface {
	List(ctx context.Context, projectID string) ([]workflow.Workflow, error)
	GetDefault(ctx context.Context, projectID string) (*workflow.Workflow, error)
	Promote(ctx context.Context, id string) (*workflow.Workflow, error)
}

// ServerConfig names the server in the MCP handshake.
type ServerConfig struct {
	Name    string
	Version string
}

// ServerDeps are the services backing the tools. Nil services make their
// tools return an error result.
type ServerDeps struct {
	Tasks     TaskService
	Workflows WorkflowService
}

// Server wraps an MCP server with TaskForge tools and resources registered.
type Server struct {
	cfg       ServerConfig
	deps      ServerDeps
	mcpServer *mcpserver.MCPServer
}

// NewServer creates the MCP server and registers all tools and resources.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithResourceCapabilities(false, false),
			mcpserver.WithRecovery(),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Handler returns the streamable HTTP transport for mounting on a router.
func (s *Server) Handler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcpServer, mcpserver.WithStateLess(true))
}
