// Package project implements output field projection.
//
// Projection is applied strictly after pagination completes, so it always
// operates on complete upstream objects. It is a pure function with no
// failure modes: a requested field absent from an object is omitted, never
// synthesized as null.
package project

import (
	"strings"

	"github.com/cibridge/cibridge-mcp/pkg/types"
)

// Apply projects every object through the field spec, returning a new
// slice of new objects. An empty spec strips every object down to an empty
// projection; it never means "all fields".
func Apply(objects []types.Object, fields types.FieldSpec) []types.Object {
	out := make([]types.Object, len(objects))
	for i, obj := range objects {
		out[i] = One(obj, fields)
	}
	return out
}

// One projects a single object. Dot notation reaches into nested objects
// and into lists of objects: "components.name" keeps only the name key of
// every entry in the components list.
func One(obj types.Object, fields types.FieldSpec) types.Object {
	out := types.Object{}

	// Simple fields copy the value as-is; dotted fields are grouped by
	// their top-level key so sibling sub-fields project together.
	groups := map[string][]string{}
	for _, f := range fields {
		top, rest, found := strings.Cut(f, ".")
		if !found {
			if v, ok := obj[f]; ok && v != nil {
				out[f] = v
			}
			continue
		}
		groups[top] = append(groups[top], rest)
	}

	for top, subs := range groups {
		v, ok := obj[top]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case map[string]any:
			nested := One(t, subs)
			if len(nested) > 0 {
				out[top] = nested
			}
		case []any:
			items := make([]any, 0, len(t))
			for _, el := range t {
				m, ok := el.(map[string]any)
				if !ok {
					continue
				}
				nested := One(m, subs)
				if len(nested) > 0 {
					items = append(items, nested)
				}
			}
			if len(items) > 0 {
				out[top] = items
			}
		}
	}

	return out
}
