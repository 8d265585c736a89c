package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/cibridge/cibridge-mcp/internal/config"
	"github.com/cibridge/cibridge-mcp/internal/document"
	"github.com/cibridge/cibridge-mcp/internal/health"
	"github.com/cibridge/cibridge-mcp/internal/joblog"
	"github.com/cibridge/cibridge-mcp/internal/pager"
	"github.com/cibridge/cibridge-mcp/internal/resource"
	"github.com/cibridge/cibridge-mcp/internal/ticket"
	"github.com/cibridge/cibridge-mcp/internal/upstream"
)

const (
	// ServerName is the MCP server name
	ServerName = "cibridge-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	registry *resource.Registry
	ci       *upstream.Client
	pager    *pager.Controller
	logs     *joblog.Service
	tickets  *ticket.Service
	docs     *document.Service
}

// NewServer creates a new MCP server instance. All configuration and the
// resource registry are resolved here, once, before any tool call.
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	ci := upstream.NewClient("ci", cfg.CI.BaseURL, cfg.CI.Credentials, cfg.HTTPTimeout, cfg.HTTPRetries)
	ticketClient := upstream.NewClient("ticket", cfg.Ticket.BaseURL, cfg.Ticket.Credentials, cfg.HTTPTimeout, cfg.HTTPRetries)
	docsClient := upstream.NewClient("docs", cfg.Docs.BaseURL, cfg.Docs.Credentials, cfg.HTTPTimeout, cfg.HTTPRetries)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		cfg:      cfg,
		registry: resource.New(cfg.MaxLimit),
		ci:       ci,
		pager:    pager.New(ci, cfg.PageSize, cfg.HardCap),
		logs:     joblog.New(ci),
		tickets:  ticket.New(ticketClient, cfg.Ticket.BaseURL),
		docs:     document.New(docsClient),
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// Checks exposes readiness checks for the optional health endpoint. Only
// the CI upstream is required; the collaborators are optional.
func (s *Server) Checks() map[string]health.Check {
	return map[string]health.Check{
		"ci": func() error {
			if !s.ci.Configured() {
				return fmt.Errorf("ci upstream not configured")
			}
			return nil
		},
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	// Generic list and get tools, one pair per registered resource kind.
	for _, kind := range s.registry.Kinds() {
		if kind.Listed {
			s.mcp.AddTool(listTool(kind), s.handleList(kind))
		}
		s.mcp.AddTool(getTool(kind), s.handleGet(kind))
	}

	// Parent-scoped listings: same pipeline with a fixed scoping clause.
	s.mcp.AddTool(listJobFilesTool(), s.handleListJobFiles)
	s.mcp.AddTool(listJobResultsTool(), s.handleListJobResults)
	s.mcp.AddTool(listPipelineJobsTool(), s.handleListPipelineJobs)

	// File artifact access.
	s.mcp.AddTool(getFileContentTool(), s.handleGetFileContent)
	s.mcp.AddTool(downloadFileTool(), s.handleDownloadFile)
	s.mcp.AddTool(getJobLogsTool(), s.handleGetJobLogs)
	s.mcp.AddTool(getJobArtifactsTool(), s.handleGetJobArtifacts)

	// External collaborators.
	s.mcp.AddTool(getTicketTool(), s.handleGetTicket)
	s.mcp.AddTool(searchTicketsTool(), s.handleSearchTickets)
	s.mcp.AddTool(createDocumentTool(), s.handleCreateDocument)

	// Helpers.
	s.mcp.AddTool(todayTool(), s.handleToday)
	s.mcp.AddTool(nowTool(), s.handleNow)
	s.mcp.AddTool(jobContextTool(), s.handleJobContext)
}
