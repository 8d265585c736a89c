package query

import (
	"fmt"
	"strings"

	"github.com/cibridge/cibridge-mcp/pkg/types"
)

// Translate validates every clause field against the resource's allow-list
// and renders the query in the dialect's native syntax. An empty query
// translates to an empty filter string.
//
// A field is allowed when it appears in the allow-list exactly, or when
// its top-level segment does ("components" admits "components.version").
func Translate(q types.Query, d Dialect, allowed []string) (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		allowedSet[f] = struct{}{}
	}

	parts := make([]string, 0, len(q))
	for _, c := range q {
		if !fieldAllowed(c.Field, allowedSet) {
			return "", fmt.Errorf(
				"%w: field %q is not queryable on this resource", types.ErrInvalidQuery, c.Field)
		}
		rendered, err := d.Render(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}
	return d.Join(parts), nil
}

// FieldAllowed reports whether a single field name passes the allow-list,
// using the same top-level-segment rule as Translate. The facade uses it
// to vet sort keys before any network call.
func FieldAllowed(field string, allowed []string) bool {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		allowedSet[f] = struct{}{}
	}
	return fieldAllowed(field, allowedSet)
}

func fieldAllowed(field string, allowed map[string]struct{}) bool {
	if _, ok := allowed[field]; ok {
		return true
	}
	top, _, found := strings.Cut(field, ".")
	if !found {
		return false
	}
	_, ok := allowed[top]
	return ok
}
