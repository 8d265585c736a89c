// Package document is the document-conversion collaborator.
//
// Markdown content is converted to HTML locally and handed to the
// document service, which owns storage and sharing. The service is an
// opaque HTTP API returning the created document's id and URL.
package document

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/cibridge/cibridge-mcp/internal/upstream"
	"github.com/cibridge/cibridge-mcp/pkg/types"
)

// Document identifies a created document.
type Document struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Service accesses the document service through one upstream client.
type Service struct {
	client *upstream.Client
	md     goldmark.Markdown
}

// New creates a document service.
func New(client *upstream.Client) *Service {
	return &Service{
		client: client,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		),
	}
}

// Create converts markdown content to HTML and creates a document with
// the given title, optionally inside a named folder.
func (s *Service) Create(ctx context.Context, content, title, folder string) (Document, error) {
	if title == "" {
		return Document{}, fmt.Errorf("%w: document title must not be empty", types.ErrInvalidArgument)
	}
	if content == "" {
		return Document{}, fmt.Errorf("%w: document content must not be empty", types.ErrInvalidArgument)
	}

	var html bytes.Buffer
	if err := s.md.Convert([]byte(content), &html); err != nil {
		return Document{}, fmt.Errorf("convert markdown: %w", err)
	}

	payload := map[string]any{
		"title":   title,
		"mime":    "text/html",
		"content": html.String(),
	}
	if folder != "" {
		payload["folder"] = folder
	}

	var doc Document
	if err := s.client.PostJSON(ctx, "/documents", payload, &doc); err != nil {
		return Document{}, fmt.Errorf("create document %q: %w", title, err)
	}
	return doc, nil
}
