// Package query implements the uniform query grammar and its translation
// into each upstream's native filter syntax.
//
// The inbound grammar is a comma-separated list of clauses, each
// "field:operator:value". Clauses combine with an implicit AND. The in
// operator takes a bracketed list: "status:in:[failure,error]". Commas
// inside brackets belong to the list, not to the clause separator.
//
// Translation is table-driven: each upstream dialect owns one mapping
// table from the uniform operator set to its token syntax, so supporting
// a new resource kind means picking a dialect in the resource registry,
// not writing new parsing logic.
package query

import (
	"fmt"
	"strings"

	"github.com/cibridge/cibridge-mcp/pkg/types"
)

// Parse converts a query-grammar string into a validated Query. An empty
// string parses to an empty query (no filtering).
func Parse(s string) (types.Query, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var q types.Query
	for _, raw := range splitClauses(s) {
		clause, err := parseClause(raw)
		if err != nil {
			return nil, err
		}
		q = append(q, clause)
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// splitClauses splits on commas that are not inside a bracketed list.
func splitClauses(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func parseClause(raw string) (types.Clause, error) {
	raw = strings.TrimSpace(raw)

	// Field and operator cannot contain colons; the value can (timestamps),
	// so only the first two separators are structural.
	segs := strings.SplitN(raw, ":", 3)
	if len(segs) != 3 {
		return types.Clause{}, fmt.Errorf(
			"%w: clause %q is not of the form field:operator:value", types.ErrInvalidQuery, raw)
	}

	field := strings.TrimSpace(segs[0])
	op := types.Operator(strings.TrimSpace(segs[1]))
	val := strings.TrimSpace(segs[2])

	if op == types.OpIn {
		values, err := parseList(val)
		if err != nil {
			return types.Clause{}, err
		}
		return types.Clause{Field: field, Op: op, Values: values}, nil
	}

	if val == "" {
		return types.Clause{}, fmt.Errorf("%w: clause %q has an empty value", types.ErrInvalidQuery, raw)
	}
	return types.Clause{Field: field, Op: op, Value: val}, nil
}

func parseList(val string) ([]string, error) {
	if !strings.HasPrefix(val, "[") || !strings.HasSuffix(val, "]") {
		return nil, fmt.Errorf(
			"%w: in operator requires a bracketed list, got %q", types.ErrInvalidQuery, val)
	}
	inner := val[1 : len(val)-1]
	if strings.TrimSpace(inner) == "" {
		return nil, fmt.Errorf("%w: in operator requires a non-empty list", types.ErrInvalidQuery)
	}

	var values []string
	for _, v := range strings.Split(inner, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("%w: in list contains an empty value", types.ErrInvalidQuery)
		}
		values = append(values, v)
	}
	return values, nil
}

// ParseSort converts the inbound sort syntax ("field:asc" or "field:desc",
// comma-separated for multiple keys) into sort keys. An empty string means
// no explicit ordering.
func ParseSort(s string) ([]types.SortKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var keys []types.SortKey
	for _, raw := range strings.Split(s, ",") {
		raw = strings.TrimSpace(raw)
		field, dir, found := strings.Cut(raw, ":")
		if field == "" {
			return nil, fmt.Errorf("%w: sort key %q has no field", types.ErrInvalidArgument, raw)
		}
		if !found {
			dir = "asc"
		}
		switch dir {
		case "asc":
			keys = append(keys, types.SortKey{Field: field})
		case "desc":
			keys = append(keys, types.SortKey{Field: field, Desc: true})
		default:
			return nil, fmt.Errorf(
				"%w: sort direction must be asc or desc, got %q", types.ErrInvalidArgument, dir)
		}
	}
	return keys, nil
}

// RenderSort renders sort keys in the upstream convention: descending
// fields are prefixed with a minus sign, keys joined by commas.
func RenderSort(keys []types.SortKey) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k.Desc {
			parts = append(parts, "-"+k.Field)
		} else {
			parts = append(parts, k.Field)
		}
	}
	return strings.Join(parts, ",")
}
