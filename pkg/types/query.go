package types

import "fmt"

// Operator is a comparison operator in the uniform query grammar.
type Operator string

const (
	OpEq   Operator = "eq"
	OpNe   Operator = "ne"
	OpLt   Operator = "lt"
	OpLe   Operator = "le"
	OpGt   Operator = "gt"
	OpGe   Operator = "ge"
	OpLike Operator = "like"
	OpIn   Operator = "in"
)

// Operators lists every operator the grammar accepts.
var Operators = []Operator{OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpLike, OpIn}

// Valid reports whether op is one of the enumerated operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpLike, OpIn:
		return true
	}
	return false
}

// Clause is a single predicate: field, operator, and either a scalar value
// or a value list. Exactly one of Value/Values is meaningful: Values for
// OpIn, Value for everything else.
type Clause struct {
	Field  string
	Op     Operator
	Value  string
	Values []string
}

// Validate checks the clause invariants: non-empty field, known operator,
// and a value shape compatible with the operator.
func (c Clause) Validate() error {
	if c.Field == "" {
		return fmt.Errorf("%w: clause field must not be empty", ErrInvalidQuery)
	}
	if !c.Op.Valid() {
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidQuery, string(c.Op))
	}
	if c.Op == OpIn {
		if len(c.Values) == 0 {
			return fmt.Errorf("%w: operator %q requires a value list", ErrInvalidQuery, OpIn)
		}
		return nil
	}
	if len(c.Values) > 0 {
		return fmt.Errorf("%w: operator %q takes a single value", ErrInvalidQuery, c.Op)
	}
	return nil
}

// Query is an ordered sequence of clauses combined with an implicit AND.
// Queries are built per call from caller input and discarded afterwards.
type Query []Clause

// Validate checks every clause in order and returns the first violation.
func (q Query) Validate() error {
	for _, c := range q {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
