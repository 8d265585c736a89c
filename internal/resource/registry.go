// Package resource defines the registry of proxied resource kinds.
//
// Each kind carries everything the tool facade needs to serve it: the
// upstream endpoint, the filter dialect and its query-string parameter,
// the location of items in the response body, the allow-list of queryable
// fields, and the scoping field used by parent-scoped listings. The
// registry is resolved once at startup; adding a resource kind means
// adding a row here, not new parsing logic.
package resource

import (
	"fmt"

	"github.com/cibridge/cibridge-mcp/internal/query"
	"github.com/cibridge/cibridge-mcp/pkg/types"
)

// Kind describes one category of upstream entity.
type Kind struct {
	// Name is the singular kind name ("job").
	Name string
	// Plural names the collection in tool names and endpoints ("jobs").
	Plural string
	// Endpoint is the upstream listing path.
	Endpoint string
	// ItemsKey locates items in the listing response body.
	ItemsKey string
	// FilterParam is the query-string parameter the endpoint reads its
	// filter from.
	FilterParam string
	// Dialect renders translated filters for this endpoint.
	Dialect query.Dialect
	// Fields is the allow-list of queryable and sortable field names.
	Fields []string
	// ParentKey is the field used to scope listings to a parent resource;
	// empty when the kind has no parent-scoped variant.
	ParentKey string
	// MaxLimit caps the caller's limit parameter.
	MaxLimit int
	// Listed controls whether a generic list tool is exposed; unlisted
	// kinds are reachable only through parent-scoped tools.
	Listed bool
}

// GetEndpoint returns the upstream path for a single record of this kind.
func (k Kind) GetEndpoint(id string) string {
	return fmt.Sprintf("%s/%s", k.Endpoint, id)
}

// ParentClause builds the scoping clause injected ahead of the caller's
// query by parent-scoped listings.
func (k Kind) ParentClause(parentID string) types.Clause {
	return types.Clause{Field: k.ParentKey, Op: types.OpEq, Value: parentID}
}

// Registry maps kind names to their definitions.
type Registry struct {
	kinds map[string]Kind
	order []string
}

// New builds the registry. maxLimit is the default per-resource ceiling on
// the caller's limit parameter.
func New(maxLimit int) *Registry {
	r := &Registry{kinds: map[string]Kind{}}

	where := query.WhereDialect{}
	search := query.SearchDialect{}

	r.add(Kind{
		Name: "job", Plural: "jobs",
		Endpoint: "/jobs", ItemsKey: "hits.hits",
		FilterParam: "query", Dialect: search,
		Fields: []string{
			"id", "name", "status", "state", "status_reason", "comment",
			"configuration", "duration", "created_at", "updated_at", "tags",
			"url", "client_version", "previous_job_id", "user_agent",
			"components", "remoteci", "team", "topic", "product", "pipeline",
			"files", "keys_values", "tests", "results", "extra",
		},
		ParentKey: "pipeline.id",
		MaxLimit:  maxLimit, Listed: true,
	})
	r.add(Kind{
		Name: "component", Plural: "components",
		Endpoint: "/components", ItemsKey: "components",
		FilterParam: "where", Dialect: where,
		Fields: []string{
			"id", "name", "type", "version", "tags", "state",
			"created_at", "updated_at", "topic_id", "url",
		},
		MaxLimit: maxLimit, Listed: true,
	})
	r.add(Kind{
		Name: "file", Plural: "files",
		Endpoint: "/files", ItemsKey: "files",
		FilterParam: "where", Dialect: where,
		Fields: []string{
			"id", "name", "size", "state", "mime", "md5",
			"created_at", "updated_at", "job_id", "jobstate_id",
		},
		ParentKey: "job_id",
		MaxLimit:  maxLimit, Listed: true,
	})
	r.add(Kind{
		Name: "pipeline", Plural: "pipelines",
		Endpoint: "/pipelines", ItemsKey: "pipelines",
		FilterParam: "where", Dialect: where,
		Fields: []string{
			"id", "name", "state", "team_id", "created_at", "updated_at",
		},
		MaxLimit: maxLimit, Listed: true,
	})
	r.add(Kind{
		Name: "product", Plural: "products",
		Endpoint: "/products", ItemsKey: "products",
		FilterParam: "where", Dialect: where,
		Fields: []string{
			"id", "name", "label", "description", "state",
			"created_at", "updated_at",
		},
		MaxLimit: maxLimit, Listed: true,
	})
	r.add(Kind{
		Name: "team", Plural: "teams",
		Endpoint: "/teams", ItemsKey: "teams",
		FilterParam: "where", Dialect: where,
		Fields: []string{
			"id", "name", "state", "external", "country",
			"created_at", "updated_at",
		},
		MaxLimit: maxLimit, Listed: true,
	})
	r.add(Kind{
		Name: "topic", Plural: "topics",
		Endpoint: "/topics", ItemsKey: "topics",
		FilterParam: "where", Dialect: where,
		Fields: []string{
			"id", "name", "state", "component_types", "product_id",
			"next_topic_id", "export_control", "created_at", "updated_at",
		},
		MaxLimit: maxLimit, Listed: true,
	})
	r.add(Kind{
		Name: "remoteci", Plural: "remotecis",
		Endpoint: "/remotecis", ItemsKey: "remotecis",
		FilterParam: "where", Dialect: where,
		Fields: []string{
			"id", "name", "state", "public", "team_id",
			"created_at", "updated_at",
		},
		MaxLimit: maxLimit, Listed: true,
	})
	r.add(Kind{
		Name: "result", Plural: "results",
		Endpoint: "/results", ItemsKey: "results",
		FilterParam: "where", Dialect: where,
		Fields: []string{
			"id", "name", "total", "success", "failures", "errors",
			"skips", "time", "job_id", "created_at", "updated_at",
		},
		ParentKey: "job_id",
		MaxLimit:  maxLimit, Listed: false,
	})

	return r
}

func (r *Registry) add(k Kind) {
	r.kinds[k.Name] = k
	r.order = append(r.order, k.Name)
}

// Get looks up a kind by name.
func (r *Registry) Get(name string) (Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Kinds returns every kind in registration order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.kinds[name])
	}
	return out
}
