package types

import "errors"

// Error taxonomy shared across the query translator, pagination controller,
// upstream client, and tool facade. Callers match with errors.Is; producers
// wrap with fmt.Errorf("...: %w", ...) to add context.
var (
	// ErrInvalidArgument marks malformed caller input: negative limit or
	// offset, a limit over the per-resource maximum, or an unusable
	// parameter shape. Raised before any network call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidQuery marks a query that cannot be translated: unknown
	// field, unrepresentable operator/value combination, or a value that
	// would break the upstream grammar's quoting rules.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUpstreamUnavailable covers network failures and 5xx responses.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUpstreamRejected covers 4xx responses other than 404.
	ErrUpstreamRejected = errors.New("upstream rejected request")

	// ErrNotFound covers 404 responses for a specific resource id.
	ErrNotFound = errors.New("not found")

	// ErrPartialResult marks an envelope whose item prefix is valid but
	// whose later pages failed to fetch.
	ErrPartialResult = errors.New("partial result")
)
