package query

import (
	"fmt"
	"strings"

	"github.com/cibridge/cibridge-mcp/pkg/types"
)

// Dialect renders validated clauses in one upstream's native filter
// syntax. Escaping and quoting are the dialect's responsibility; a value
// that cannot be represented safely is rejected, never truncated.
type Dialect interface {
	// Name identifies the dialect in error messages.
	Name() string
	// Render produces one native filter clause, or ErrInvalidQuery when
	// the operator/value combination is not representable.
	Render(c types.Clause) (string, error)
	// Join combines rendered clauses into the final filter string.
	Join(parts []string) string
}

// WhereDialect renders the colon-separated "where" filter syntax used by
// most CI API resources: "field:value" for equality, "field:op:value" for
// everything else. The grammar has no quoting mechanism, so structural
// characters in values are rejected. List operators are not representable.
type WhereDialect struct{}

// whereTokens maps the uniform operator set onto the where grammar.
var whereTokens = map[types.Operator]string{
	types.OpEq:   "", // equality is the bare field:value form
	types.OpNe:   "ne",
	types.OpLt:   "lt",
	types.OpLe:   "le",
	types.OpGt:   "gt",
	types.OpGe:   "ge",
	types.OpLike: "like",
}

func (WhereDialect) Name() string { return "where" }

func (WhereDialect) Render(c types.Clause) (string, error) {
	token, ok := whereTokens[c.Op]
	if !ok {
		return "", fmt.Errorf(
			"%w: operator %q is not representable in the where grammar", types.ErrInvalidQuery, c.Op)
	}
	if strings.ContainsAny(c.Value, ",:") {
		return "", fmt.Errorf(
			"%w: value %q contains characters the where grammar cannot quote", types.ErrInvalidQuery, c.Value)
	}
	if token == "" {
		return c.Field + ":" + c.Value, nil
	}
	return c.Field + ":" + token + ":" + c.Value, nil
}

func (WhereDialect) Join(parts []string) string {
	return strings.Join(parts, ",")
}

// SearchDialect renders the parenthesized search DSL used by the job
// search endpoint: "(field='value')" clauses joined by "and", with "=~"
// for pattern matching and "in ['a','b']" for list membership. Values are
// single-quoted; the grammar gives no escape for quotes or backslashes,
// so values containing them are rejected.
type SearchDialect struct{}

// searchTokens maps the uniform operator set onto the search DSL
// comparison tokens.
var searchTokens = map[types.Operator]string{
	types.OpEq:   "=",
	types.OpNe:   "!=",
	types.OpLt:   "<",
	types.OpLe:   "<=",
	types.OpGt:   ">",
	types.OpGe:   ">=",
	types.OpLike: "=~",
}

func (SearchDialect) Name() string { return "search" }

func (SearchDialect) Render(c types.Clause) (string, error) {
	if c.Op == types.OpIn {
		quoted := make([]string, len(c.Values))
		for i, v := range c.Values {
			q, err := quoteSearchValue(v)
			if err != nil {
				return "", err
			}
			quoted[i] = q
		}
		return fmt.Sprintf("(%s in [%s])", c.Field, strings.Join(quoted, ",")), nil
	}

	token, ok := searchTokens[c.Op]
	if !ok {
		return "", fmt.Errorf(
			"%w: operator %q is not representable in the search grammar", types.ErrInvalidQuery, c.Op)
	}
	q, err := quoteSearchValue(c.Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s%s%s)", c.Field, token, q), nil
}

func (SearchDialect) Join(parts []string) string {
	return strings.Join(parts, " and ")
}

func quoteSearchValue(v string) (string, error) {
	if strings.ContainsAny(v, `'\`) {
		return "", fmt.Errorf(
			"%w: value %q contains characters the search grammar cannot quote", types.ErrInvalidQuery, v)
	}
	return "'" + v + "'", nil
}
