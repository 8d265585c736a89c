package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/cibridge/cibridge-mcp/internal/filesink"
	"github.com/cibridge/cibridge-mcp/internal/pager"
	"github.com/cibridge/cibridge-mcp/internal/project"
	"github.com/cibridge/cibridge-mcp/internal/query"
	"github.com/cibridge/cibridge-mcp/internal/resource"
	"github.com/cibridge/cibridge-mcp/pkg/types"
)

// DefaultLimit is the number of items a listing tool returns when the
// caller does not pass a limit.
const DefaultLimit = 50

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
)

// listInput carries the validated parameters of one listing call.
type listInput struct {
	query  string
	limit  int
	offset int
	sort   string
	fields types.FieldSpec
	parent string // parent id for scoped listings, empty otherwise
}

// handleList builds the handler for a resource kind's generic list tool.
func (s *Server) handleList(kind resource.Kind) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in, err := extractListInput(request, "")
		if err != nil {
			return nil, err
		}
		return envelopeResult(s.list(ctx, kind, in))
	}
}

// handleGet builds the handler for a resource kind's single-record tool.
func (s *Server) handleGet(kind resource.Kind) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
		}
		id, ok := args["id"].(string)
		if !ok || id == "" {
			return nil, newMCPError(ErrorCodeInvalidParams, "id parameter is required", map[string]interface{}{
				"param": "id",
			})
		}

		var record map[string]any
		if err := s.ci.GetJSON(ctx, kind.GetEndpoint(id), nil, &record); err != nil {
			return errorResult(err)
		}
		// Single-record endpoints wrap the record under the kind name.
		if inner, ok := record[kind.Name].(map[string]any); ok {
			record = inner
		}
		return mcp.NewToolResultText(formatJSON(record)), nil
	}
}

// list is the shared listing pipeline: validate, translate, paginate,
// project, wrap. All listing tools, parent-scoped or not, funnel through
// here.
func (s *Server) list(ctx context.Context, kind resource.Kind, in listInput) types.Envelope {
	callID := uuid.NewString()
	logger := log.With().Str("call_id", callID).Str("resource", kind.Name).Logger()

	// Fail fast on caller input before any network call is made.
	if in.limit < 0 || in.offset < 0 {
		return types.ErrorEnvelope(fmt.Errorf(
			"%w: limit and offset must not be negative", types.ErrInvalidArgument).Error())
	}
	if in.limit > kind.MaxLimit {
		return types.ErrorEnvelope(fmt.Errorf(
			"%w: limit %d exceeds the %s maximum of %d",
			types.ErrInvalidArgument, in.limit, kind.Name, kind.MaxLimit).Error())
	}

	q, err := query.Parse(in.query)
	if err != nil {
		return types.ErrorEnvelope(err.Error())
	}
	if in.parent != "" {
		q = append(types.Query{kind.ParentClause(in.parent)}, q...)
	}

	sortKeys, err := query.ParseSort(in.sort)
	if err != nil {
		return types.ErrorEnvelope(err.Error())
	}
	for _, k := range sortKeys {
		if !query.FieldAllowed(k.Field, kind.Fields) {
			return types.ErrorEnvelope(fmt.Errorf(
				"%w: sort field %q is not sortable on %s", types.ErrInvalidArgument, k.Field, kind.Name).Error())
		}
	}

	filter, err := query.Translate(q, kind.Dialect, kind.Fields)
	if err != nil {
		return types.ErrorEnvelope(err.Error())
	}

	env, err := s.pager.FetchAll(ctx, pager.Request{
		Endpoint:    kind.Endpoint,
		FilterParam: kind.FilterParam,
		Filter:      filter,
		ItemsKey:    kind.ItemsKey,
		Sort:        query.RenderSort(sortKeys),
		Page:        types.PageRequest{Limit: in.limit, Offset: in.offset, Sort: sortKeys},
	})
	if err != nil {
		logger.Warn().Err(err).Msg("fetch failed")
		return types.ErrorEnvelope(err.Error())
	}

	// Projection runs strictly after pagination, on complete objects. An
	// empty field spec strips every item; it never means "all fields".
	env.Items = project.Apply(env.Items, in.fields)
	logger.Debug().Int("count", env.Count).Msg("list complete")
	return env
}

// Parent-scoped listings: the generic pipeline with a fixed scoping
// clause injected ahead of the caller's query.

func (s *Server) handleListJobFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.parentScopedList(ctx, request, "file", "job_id")
}

func (s *Server) handleListJobResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.parentScopedList(ctx, request, "result", "job_id")
}

func (s *Server) handleListPipelineJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.parentScopedList(ctx, request, "job", "pipeline_id")
}

func (s *Server) parentScopedList(ctx context.Context, request mcp.CallToolRequest, kindName, parentParam string) (*mcp.CallToolResult, error) {
	kind, ok := s.registry.Get(kindName)
	if !ok {
		return nil, newMCPError(ErrorCodeInternalError, "unknown resource kind", map[string]interface{}{
			"kind": kindName,
		})
	}
	in, err := extractListInput(request, parentParam)
	if err != nil {
		return nil, err
	}
	return envelopeResult(s.list(ctx, kind, in))
}

func (s *Server) handleGetFileContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file_id parameter is required", map[string]interface{}{
			"param": "file_id",
		})
	}

	body, err := s.ci.GetStream(ctx, "/files/"+fileID+"/content", nil)
	if err != nil {
		return errorResult(err)
	}
	defer func() { _ = body.Close() }()

	content, err := io.ReadAll(body)
	if err != nil {
		return errorResult(fmt.Errorf("%w: read file content: %v", types.ErrUpstreamUnavailable, err))
	}
	return mcp.NewToolResultText(string(content)), nil
}

func (s *Server) handleDownloadFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file_id parameter is required", map[string]interface{}{
			"param": "file_id",
		})
	}
	outputPath, ok := args["output_path"].(string)
	if !ok || outputPath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "output_path parameter is required", map[string]interface{}{
			"param": "output_path",
		})
	}

	body, err := s.ci.GetStream(ctx, "/files/"+fileID+"/content", nil)
	if err != nil {
		return errorResult(err)
	}
	defer func() { _ = body.Close() }()

	saved, err := filesink.Save(body, outputPath)
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]any{
		"file_id":     fileID,
		"output_path": saved,
		"downloaded":  true,
	})), nil
}

func (s *Server) handleGetJobLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	jobID, ok := args["job_id"].(string)
	if !ok || jobID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "job_id parameter is required", map[string]interface{}{
			"param": "job_id",
		})
	}

	rec, err := s.logs.Logs(ctx, jobID)
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(formatJSON(rec)), nil
}

func (s *Server) handleGetJobArtifacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	jobID, ok := args["job_id"].(string)
	if !ok || jobID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "job_id parameter is required", map[string]interface{}{
			"param": "job_id",
		})
	}

	artifacts, err := s.logs.Artifacts(ctx, jobID)
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(formatJSON(artifacts)), nil
}

func (s *Server) handleGetTicket(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	key, ok := args["key"].(string)
	if !ok || key == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "key parameter is required", map[string]interface{}{
			"param": "key",
		})
	}
	maxComments := getIntDefault(args, "max_comments", 0)

	record, err := s.tickets.Get(ctx, key, maxComments)
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(formatJSON(record)), nil
}

func (s *Server) handleSearchTickets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	jql, ok := args["jql"].(string)
	if !ok || jql == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "jql parameter is required", map[string]interface{}{
			"param": "jql",
		})
	}
	limit := getIntDefault(args, "limit", 0)

	tickets, err := s.tickets.Search(ctx, jql, limit)
	if err != nil {
		return errorResult(err)
	}
	return envelopeResult(types.NewEnvelope(tickets))
}

func (s *Server) handleCreateDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	content, _ := args["content"].(string)
	title, _ := args["title"].(string)
	folder := getStringDefault(args, "folder", "")

	doc, err := s.docs.Create(ctx, content, title, folder)
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]any{
		"id":  doc.ID,
		"url": doc.URL,
	})), nil
}

func (s *Server) handleToday(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(time.Now().UTC().Format("2006-01-02")), nil
}

func (s *Server) handleNow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(time.Now().UTC().Format(time.RFC3339)), nil
}

// handleJobContext aggregates a job with its files and results. The three
// fetches are independent reads, so they run concurrently.
func (s *Server) handleJobContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	jobID, ok := args["job_id"].(string)
	if !ok || jobID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "job_id parameter is required", map[string]interface{}{
			"param": "job_id",
		})
	}

	jobKind, _ := s.registry.Get("job")
	fileKind, _ := s.registry.Get("file")
	resultKind, _ := s.registry.Get("result")

	var (
		job     map[string]any
		files   types.Envelope
		results types.Envelope
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.ci.GetJSON(gctx, jobKind.GetEndpoint(jobID), nil, &job); err != nil {
			return err
		}
		if inner, ok := job["job"].(map[string]any); ok {
			job = inner
		}
		return nil
	})
	g.Go(func() error {
		files = s.list(gctx, fileKind, listInput{
			limit:  DefaultLimit,
			fields: types.FieldSpec{"id", "name", "size", "state"},
			parent: jobID,
		})
		return nil
	})
	g.Go(func() error {
		results = s.list(gctx, resultKind, listInput{
			limit:  DefaultLimit,
			fields: types.FieldSpec{"id", "name", "total", "success", "failures", "errors", "skips"},
			parent: jobID,
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return errorResult(err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]any{
		"job":     job,
		"files":   files,
		"results": results,
	})), nil
}

// Helper functions

// extractListInput pulls the shared listing parameters out of a request.
// parentParam names the required parent id parameter for scoped listings;
// empty means the tool has no parent scope.
func extractListInput(request mcp.CallToolRequest, parentParam string) (listInput, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return listInput{}, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	in := listInput{
		query:  getStringDefault(args, "query", ""),
		limit:  getIntDefault(args, "limit", DefaultLimit),
		offset: getIntDefault(args, "offset", 0),
		sort:   getStringDefault(args, "sort", ""),
		fields: getStringList(args, "fields"),
	}

	if parentParam != "" {
		parent, ok := args[parentParam].(string)
		if !ok || parent == "" {
			return listInput{}, newMCPError(ErrorCodeInvalidParams, parentParam+" parameter is required", map[string]interface{}{
				"param": parentParam,
			})
		}
		in.parent = parent
	}
	return in, nil
}

// envelopeResult renders an envelope as an indented JSON tool result.
func envelopeResult(env types.Envelope) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "encode envelope", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// errorResult renders a domain error as an error envelope. Failures reach
// the caller as structured data, never as a server crash.
func errorResult(err error) (*mcp.CallToolResult, error) {
	return envelopeResult(types.ErrorEnvelope(err.Error()))
}

// formatJSON formats a value as indented JSON
func formatJSON(data any) string {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(raw)
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringList extracts a string-array parameter; a missing or malformed
// value yields an empty list.
func getStringList(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, el := range raw {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
