// Package types provides shared type definitions for the CIBridge MCP server.
//
// This package defines the domain types that cross component boundaries:
// the uniform query grammar (Query, Clause, Operator), pagination inputs
// (PageRequest, SortKey), output field selection (FieldSpec), the normalized
// result envelope returned by every listing tool, and the error taxonomy
// shared by the upstream client, the query translator, and the pagination
// controller.
//
// # Core Types
//
// Query is an ordered sequence of predicate clauses combined with an
// implicit logical AND:
//
//	q := types.Query{
//	    {Field: "status", Op: types.OpEq, Value: "failure"},
//	    {Field: "tags", Op: types.OpIn, Values: []string{"daily"}},
//	}
//
// Envelope is the uniform return shape of every listing tool:
//
//	{items: [...], count: N}          on success
//	{items: [...], count: N, error: "..."} on partial failure
//
// Errors are sentinel values meant for errors.Is checks after unwrapping:
//
//	if errors.Is(err, types.ErrNotFound) { ... }
package types
