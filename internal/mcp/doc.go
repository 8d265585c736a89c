// Package mcp implements the Model Context Protocol (MCP) server for CIBridge.
//
// The server exposes the proxied upstream services as MCP tools over stdio.
// Every listing tool (list_jobs, list_components, list_files, ...) funnels
// through one shared pipeline:
//
//	caller parameters
//	  → validation (fail fast, zero network calls on bad input)
//	  → query translation into the resource's upstream filter dialect
//	  → sequential pagination up to the caller's limit and the hard cap
//	  → field projection (empty field list strips items to empty objects)
//	  → normalized envelope {items, count, error}
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout is reserved for the protocol; all logging goes to stderr.
//
// # Tool surface
//
// Listing tools take the uniform parameters query, limit, offset, sort,
// and fields:
//
//	Request:
//	{
//	  "name": "list_jobs",
//	  "arguments": {
//	    "query": "status:eq:failure,tags:in:[daily]",
//	    "limit": 20,
//	    "sort": "created_at:desc",
//	    "fields": ["id", "name", "status"]
//	  }
//	}
//
// Get tools fetch one record by id. Parent-scoped tools (list_job_files,
// list_job_results, list_pipeline_jobs) are the same listing pipeline with
// a fixed scoping clause injected ahead of the caller's query.
//
// Collaborator tools proxy the ticket tracker (get_ticket, search_tickets),
// the document service (create_document), and local artifact downloads
// (get_file_content, download_file).
//
// # Error behavior
//
// Domain failures (invalid arguments, untranslatable queries, upstream
// errors, partial pagination) surface inside the returned envelope's error
// field; a failed tool call never affects concurrent or subsequent calls.
// Only malformed protocol parameters produce JSON-RPC errors.
package mcp
