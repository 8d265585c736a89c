package types

// Object is a single upstream record. Upstream schemas are not modeled
// beyond the per-resource field allow-lists, so records stay generic maps.
type Object = map[string]any

// Envelope is the normalized result shape returned by every listing tool.
// It is owned exclusively by the call that produced it and never mutated
// after return.
type Envelope struct {
	Items []Object `json:"items"`
	Count int      `json:"count"`
	Error string   `json:"error,omitempty"`
}

// NewEnvelope wraps items in an envelope with Count set to len(items).
func NewEnvelope(items []Object) Envelope {
	if items == nil {
		items = []Object{}
	}
	return Envelope{Items: items, Count: len(items)}
}

// ErrorEnvelope returns an empty envelope carrying only an error message.
func ErrorEnvelope(msg string) Envelope {
	return Envelope{Items: []Object{}, Error: msg}
}
