package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cibridge/cibridge-mcp/pkg/types"
)

func sampleObjects() []types.Object {
	return []types.Object{
		{
			"id":     "j1",
			"name":   "daily-ocp",
			"status": "failure",
			"topic":  map[string]any{"id": "t1", "name": "OCP-4.19"},
			"components": []any{
				map[string]any{"name": "ocp", "type": "ocp", "version": "4.19.0"},
				map[string]any{"name": "storage", "type": "storage", "version": "1.2"},
			},
		},
		{
			"id":     "j2",
			"status": "success",
		},
	}
}

func TestApply(t *testing.T) {
	t.Run("keeps only requested fields", func(t *testing.T) {
		out := Apply(sampleObjects(), types.FieldSpec{"id", "status"})
		require.Len(t, out, 2)
		assert.Equal(t, types.Object{"id": "j1", "status": "failure"}, out[0])
		assert.Equal(t, types.Object{"id": "j2", "status": "success"}, out[1])
	})

	t.Run("missing fields are omitted, not null", func(t *testing.T) {
		out := Apply(sampleObjects(), types.FieldSpec{"id", "name"})
		assert.Equal(t, types.Object{"id": "j2"}, out[1])
		_, hasName := out[1]["name"]
		assert.False(t, hasName)
	})

	t.Run("empty field set strips every object", func(t *testing.T) {
		objs := sampleObjects()
		out := Apply(objs, types.FieldSpec{})
		require.Len(t, out, len(objs))
		for _, obj := range out {
			assert.Empty(t, obj)
		}
	})

	t.Run("dot notation into nested object", func(t *testing.T) {
		out := Apply(sampleObjects(), types.FieldSpec{"topic.name"})
		assert.Equal(t, types.Object{"topic": types.Object{"name": "OCP-4.19"}}, out[0])
		assert.Empty(t, out[1])
	})

	t.Run("dot notation into list of objects", func(t *testing.T) {
		out := Apply(sampleObjects(), types.FieldSpec{"components.name", "components.version"})
		require.Contains(t, out[0], "components")
		comps := out[0]["components"].([]any)
		require.Len(t, comps, 2)
		assert.Equal(t, types.Object{"name": "ocp", "version": "4.19.0"}, comps[0].(types.Object))
		assert.Equal(t, types.Object{"name": "storage", "version": "1.2"}, comps[1].(types.Object))
	})

	t.Run("input objects are not mutated", func(t *testing.T) {
		objs := sampleObjects()
		_ = Apply(objs, types.FieldSpec{"id"})
		assert.Contains(t, objs[0], "name")
		assert.Contains(t, objs[0], "components")
	})
}

func TestIdempotence(t *testing.T) {
	specs := []types.FieldSpec{
		{},
		{"id"},
		{"id", "status", "name"},
		{"topic.name"},
		{"components.name", "components.version"},
		{"id", "does_not_exist"},
	}

	for _, spec := range specs {
		once := Apply(sampleObjects(), spec)
		twice := Apply(once, spec)
		assert.Equal(t, once, twice, "projection must be idempotent for spec %v", spec)
	}
}
