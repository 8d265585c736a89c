package mcp

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cibridge/cibridge-mcp/internal/resource"
)

// listParams returns the parameter schema shared by every listing tool.
func listParams(kind resource.Kind) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"type": "string",
			"description": fmt.Sprintf(
				"Filter clauses of the form field:operator:value, comma-separated and combined with AND. "+
					"Operators: eq, ne, lt, le, gt, ge, like, in (in takes a bracketed list: status:in:[failure,error]). "+
					"Queryable fields: %s.", strings.Join(kind.Fields, ", ")),
		},
		"limit": map[string]interface{}{
			"type":        "integer",
			"description": fmt.Sprintf("Maximum number of results to return (default %d, max %d)", DefaultLimit, kind.MaxLimit),
			"default":     DefaultLimit,
			"minimum":     0,
			"maximum":     kind.MaxLimit,
		},
		"offset": map[string]interface{}{
			"type":        "integer",
			"description": "Number of results to skip for pagination",
			"default":     0,
			"minimum":     0,
		},
		"sort": map[string]interface{}{
			"type":        "string",
			"description": "Sort criteria as field:asc or field:desc (e.g. created_at:desc)",
		},
		"fields": map[string]interface{}{
			"type":        "array",
			"description": "Field names to return on each item. Dot notation reaches nested records (components.name). An empty or omitted list returns items stripped of all fields.",
			"items":       map[string]interface{}{"type": "string"},
		},
	}
}

// listTool returns the listing tool definition for a resource kind.
func listTool(kind resource.Kind) mcp.Tool {
	return mcp.Tool{
		Name:        "list_" + kind.Plural,
		Description: fmt.Sprintf("List CI %s with filtering, sorting, pagination, and field selection", kind.Plural),
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: listParams(kind),
		},
	}
}

// getTool returns the single-record tool definition for a resource kind.
func getTool(kind resource.Kind) mcp.Tool {
	return mcp.Tool{
		Name:        "get_" + kind.Name,
		Description: fmt.Sprintf("Get a single CI %s by id", kind.Name),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": fmt.Sprintf("The %s id", kind.Name),
				},
			},
			Required: []string{"id"},
		},
	}
}

func listJobFilesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_job_files",
		Description: "List the files attached to a CI job",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"job_id": map[string]interface{}{
					"type":        "string",
					"description": "The id of the job owning the files",
				},
				"fields": map[string]interface{}{
					"type":        "array",
					"description": "Field names to return on each file. An empty or omitted list returns items stripped of all fields.",
					"items":       map[string]interface{}{"type": "string"},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Maximum number of files to return (default %d)", DefaultLimit),
					"default":     DefaultLimit,
					"minimum":     0,
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Number of files to skip for pagination",
					"default":     0,
					"minimum":     0,
				},
			},
			Required: []string{"job_id"},
		},
	}
}

func listJobResultsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_job_results",
		Description: "List the test results attached to a CI job",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"job_id": map[string]interface{}{
					"type":        "string",
					"description": "The id of the job owning the results",
				},
				"fields": map[string]interface{}{
					"type":        "array",
					"description": "Field names to return on each result. An empty or omitted list returns items stripped of all fields.",
					"items":       map[string]interface{}{"type": "string"},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Maximum number of results to return (default %d)", DefaultLimit),
					"default":     DefaultLimit,
					"minimum":     0,
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Number of results to skip for pagination",
					"default":     0,
					"minimum":     0,
				},
			},
			Required: []string{"job_id"},
		},
	}
}

func listPipelineJobsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_pipeline_jobs",
		Description: "List the CI jobs belonging to a pipeline",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pipeline_id": map[string]interface{}{
					"type":        "string",
					"description": "The id of the pipeline owning the jobs",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Additional filter clauses (field:operator:value, comma-separated) combined with the pipeline scope",
				},
				"fields": map[string]interface{}{
					"type":        "array",
					"description": "Field names to return on each job. An empty or omitted list returns items stripped of all fields.",
					"items":       map[string]interface{}{"type": "string"},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Maximum number of jobs to return (default %d)", DefaultLimit),
					"default":     DefaultLimit,
					"minimum":     0,
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Number of jobs to skip for pagination",
					"default":     0,
					"minimum":     0,
				},
				"sort": map[string]interface{}{
					"type":        "string",
					"description": "Sort criteria as field:asc or field:desc",
				},
			},
			Required: []string{"pipeline_id"},
		},
	}
}

func getFileContentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_file_content",
		Description: "Fetch the raw content of a CI file artifact",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_id": map[string]interface{}{
					"type":        "string",
					"description": "The id of the file",
				},
			},
			Required: []string{"file_id"},
		},
	}
}

func downloadFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "download_file",
		Description: "Download a CI file artifact to a local path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_id": map[string]interface{}{
					"type":        "string",
					"description": "The id of the file to download",
				},
				"output_path": map[string]interface{}{
					"type":        "string",
					"description": "Local path to save the file to",
				},
			},
			Required: []string{"file_id", "output_path"},
		},
	}
}

func getJobLogsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_job_logs",
		Description: "Get the log output of a CI job, probing the known log locations",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"job_id": map[string]interface{}{
					"type":        "string",
					"description": "The id of the job",
				},
			},
			Required: []string{"job_id"},
		},
	}
}

func getJobArtifactsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_job_artifacts",
		Description: "List the artifacts attached to a CI job",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"job_id": map[string]interface{}{
					"type":        "string",
					"description": "The id of the job",
				},
			},
			Required: []string{"job_id"},
		},
	}
}

func getTicketTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_ticket",
		Description: "Get a ticket by key, including recent comments and its change history",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"key": map[string]interface{}{
					"type":        "string",
					"description": "The ticket key (e.g. PROJ-1234)",
				},
				"max_comments": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of recent comments to include",
					"default":     10,
					"minimum":     1,
				},
			},
			Required: []string{"key"},
		},
	}
}

func searchTicketsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_tickets",
		Description: "Search tickets with a JQL query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"jql": map[string]interface{}{
					"type":        "string",
					"description": "The JQL query string",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of tickets to return",
					"default":     25,
					"minimum":     1,
				},
			},
			Required: []string{"jql"},
		},
	}
}

func createDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_document",
		Description: "Create a document from markdown content; returns the document id and URL",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Markdown content of the document",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Document title",
				},
				"folder": map[string]interface{}{
					"type":        "string",
					"description": "Optional folder name to create the document in",
				},
			},
			Required: []string{"content", "title"},
		},
	}
}

func todayTool() mcp.Tool {
	return mcp.Tool{
		Name:        "today",
		Description: "Get today's date (UTC, YYYY-MM-DD), for building date-range queries",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

func nowTool() mcp.Tool {
	return mcp.Tool{
		Name:        "now",
		Description: "Get the current UTC timestamp in RFC 3339 format",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

func jobContextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_job_context",
		Description: "Fetch a CI job together with its files and test results in one call",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"job_id": map[string]interface{}{
					"type":        "string",
					"description": "The id of the job",
				},
			},
			Required: []string{"job_id"},
		},
	}
}
