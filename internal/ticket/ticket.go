// Package ticket is the ticketing-service collaborator.
//
// The ticket tracker is treated as an opaque HTTP service: this package
// owns the reshaping of its issue payloads into flat records (fields plus
// the most recent comments and the change history) and nothing else.
package ticket

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/cibridge/cibridge-mcp/internal/upstream"
	"github.com/cibridge/cibridge-mcp/pkg/types"
)

// DefaultMaxComments bounds how many recent comments a ticket carries.
const DefaultMaxComments = 10

// DefaultSearchLimit is the number of tickets a search returns when the
// caller does not pass a limit.
const DefaultSearchLimit = 25

// Service accesses the ticket tracker through one upstream client.
type Service struct {
	client  *upstream.Client
	baseURL string
}

// New creates a ticket service. baseURL is used to build browse links in
// returned records.
func New(client *upstream.Client, baseURL string) *Service {
	return &Service{client: client, baseURL: baseURL}
}

// Get fetches one ticket by key, including its changelog, and reshapes it
// into a flat record with at most maxComments recent comments.
func (s *Service) Get(ctx context.Context, key string, maxComments int) (types.Object, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: ticket key must not be empty", types.ErrInvalidArgument)
	}
	if maxComments <= 0 {
		maxComments = DefaultMaxComments
	}

	q := url.Values{}
	q.Set("expand", "changelog")

	var issue map[string]any
	if err := s.client.GetJSON(ctx, "/rest/api/2/issue/"+url.PathEscape(key), q, &issue); err != nil {
		return nil, fmt.Errorf("get ticket %s: %w", key, err)
	}
	return s.reshape(issue, maxComments), nil
}

// Search runs a JQL query and returns reshaped tickets.
func (s *Service) Search(ctx context.Context, jql string, limit int) ([]types.Object, error) {
	if jql == "" {
		return nil, fmt.Errorf("%w: jql must not be empty", types.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	q := url.Values{}
	q.Set("jql", jql)
	q.Set("maxResults", strconv.Itoa(limit))
	q.Set("expand", "changelog")

	var resp struct {
		Issues []map[string]any `json:"issues"`
	}
	if err := s.client.GetJSON(ctx, "/rest/api/2/search", q, &resp); err != nil {
		return nil, fmt.Errorf("search tickets: %w", err)
	}

	out := make([]types.Object, 0, len(resp.Issues))
	for _, issue := range resp.Issues {
		out = append(out, s.reshape(issue, DefaultMaxComments))
	}
	return out, nil
}

// reshape flattens the tracker's issue payload into the record shape the
// tools return.
func (s *Service) reshape(issue map[string]any, maxComments int) types.Object {
	fields, _ := issue["fields"].(map[string]any)
	key, _ := issue["key"].(string)

	rec := types.Object{
		"key":               key,
		"summary":           fields["summary"],
		"description":       fields["description"],
		"status":            nestedName(fields, "status"),
		"priority":          nestedName(fields, "priority"),
		"issue_type":        nestedName(fields, "issuetype"),
		"assignee":          nestedDisplayName(fields, "assignee"),
		"reporter":          nestedDisplayName(fields, "reporter"),
		"created":           fields["created"],
		"updated":           fields["updated"],
		"resolution":        nestedName(fields, "resolution"),
		"labels":            fields["labels"],
		"components":        names(fields, "components"),
		"fix_versions":      names(fields, "fixVersions"),
		"affected_versions": names(fields, "versions"),
		"url":               s.baseURL + "/browse/" + key,
	}
	rec["comments"] = recentComments(fields, maxComments)
	rec["changelog"] = changelog(issue)
	return rec
}

func recentComments(fields map[string]any, max int) []types.Object {
	comments := []types.Object{}
	wrapper, _ := fields["comment"].(map[string]any)
	list, _ := wrapper["comments"].([]any)
	if len(list) > max {
		list = list[len(list)-max:]
	}
	for _, el := range list {
		c, ok := el.(map[string]any)
		if !ok {
			continue
		}
		comments = append(comments, types.Object{
			"id":      c["id"],
			"author":  nestedDisplayName(c, "author"),
			"body":    c["body"],
			"created": c["created"],
			"updated": c["updated"],
		})
	}
	return comments
}

func changelog(issue map[string]any) []types.Object {
	entries := []types.Object{}
	wrapper, _ := issue["changelog"].(map[string]any)
	histories, _ := wrapper["histories"].([]any)
	for _, el := range histories {
		h, ok := el.(map[string]any)
		if !ok {
			continue
		}
		items := []types.Object{}
		rawItems, _ := h["items"].([]any)
		for _, ri := range rawItems {
			item, ok := ri.(map[string]any)
			if !ok {
				continue
			}
			items = append(items, types.Object{
				"field":       item["field"],
				"field_type":  item["fieldtype"],
				"from_string": item["fromString"],
				"to_string":   item["toString"],
			})
		}
		entries = append(entries, types.Object{
			"author":  nestedDisplayName(h, "author"),
			"created": h["created"],
			"items":   items,
		})
	}
	return entries
}

func nestedName(m map[string]any, key string) any {
	obj, _ := m[key].(map[string]any)
	if obj == nil {
		return nil
	}
	return obj["name"]
}

func nestedDisplayName(m map[string]any, key string) any {
	obj, _ := m[key].(map[string]any)
	if obj == nil {
		return nil
	}
	return obj["displayName"]
}

func names(m map[string]any, key string) []any {
	list, _ := m[key].([]any)
	out := []any{}
	for _, el := range list {
		if obj, ok := el.(map[string]any); ok {
			if n, ok := obj["name"]; ok {
				out = append(out, n)
			}
		}
	}
	return out
}
