package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cibridge/cibridge-mcp/pkg/types"
)

var jobFields = []string{"id", "name", "status", "created_at", "tags", "components"}

func TestTranslate(t *testing.T) {
	t.Run("empty query yields empty filter", func(t *testing.T) {
		out, err := Translate(nil, WhereDialect{}, jobFields)
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("where dialect end to end", func(t *testing.T) {
		q, err := Parse("status:eq:failure,name:like:ptp")
		require.NoError(t, err)

		out, err := Translate(q, WhereDialect{}, jobFields)
		require.NoError(t, err)
		assert.Equal(t, "status:failure,name:like:ptp", out)
	})

	t.Run("search dialect end to end", func(t *testing.T) {
		q, err := Parse("components.name:eq:ocp,status:in:[failure,error]")
		require.NoError(t, err)

		out, err := Translate(q, SearchDialect{}, jobFields)
		require.NoError(t, err)
		assert.Equal(t, "(components.name='ocp') and (status in ['failure','error'])", out)
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		q := types.Query{{Field: "secret", Op: types.OpEq, Value: "x"}}
		_, err := Translate(q, WhereDialect{}, jobFields)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidQuery))
	})

	t.Run("dotted field admitted by top-level segment", func(t *testing.T) {
		q := types.Query{{Field: "components.version", Op: types.OpEq, Value: "4.19.0"}}
		_, err := Translate(q, SearchDialect{}, jobFields)
		require.NoError(t, err)
	})

	t.Run("dotted field with unknown top segment rejected", func(t *testing.T) {
		q := types.Query{{Field: "internal.version", Op: types.OpEq, Value: "1"}}
		_, err := Translate(q, SearchDialect{}, jobFields)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidQuery))
	})
}

func TestFieldAllowed(t *testing.T) {
	assert.True(t, FieldAllowed("status", jobFields))
	assert.True(t, FieldAllowed("components.type", jobFields))
	assert.False(t, FieldAllowed("owner", jobFields))
	assert.False(t, FieldAllowed("owner.name", jobFields))
}
