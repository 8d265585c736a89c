package types

import "fmt"

// SortKey is a single sort criterion.
type SortKey struct {
	Field string
	Desc  bool
}

// PageRequest carries the caller's pagination and ordering inputs.
//
// A Limit of 0 means "no results requested" (used to probe counts only),
// never "unlimited".
type PageRequest struct {
	Limit  int
	Offset int
	Sort   []SortKey
}

// Validate rejects negative limit or offset before any network call is made.
func (p PageRequest) Validate() error {
	if p.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative, got %d", ErrInvalidArgument, p.Limit)
	}
	if p.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative, got %d", ErrInvalidArgument, p.Offset)
	}
	return nil
}

// FieldSpec is the allow-list of output field names applied after
// pagination completes. An empty spec strips every object to an empty
// projection; it never means "all fields".
type FieldSpec []string
