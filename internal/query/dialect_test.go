package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cibridge/cibridge-mcp/pkg/types"
)

func TestWhereDialect(t *testing.T) {
	d := WhereDialect{}

	t.Run("equality uses the bare form", func(t *testing.T) {
		out, err := d.Render(types.Clause{Field: "name", Op: types.OpEq, Value: "ptp"})
		require.NoError(t, err)
		assert.Equal(t, "name:ptp", out)
	})

	t.Run("other operators carry their token", func(t *testing.T) {
		cases := map[types.Operator]string{
			types.OpNe:   "state:ne:archived",
			types.OpLt:   "state:lt:archived",
			types.OpLe:   "state:le:archived",
			types.OpGt:   "state:gt:archived",
			types.OpGe:   "state:ge:archived",
			types.OpLike: "state:like:archived",
		}
		for op, want := range cases {
			out, err := d.Render(types.Clause{Field: "state", Op: op, Value: "archived"})
			require.NoError(t, err)
			assert.Equal(t, want, out)
		}
	})

	t.Run("in is not representable", func(t *testing.T) {
		_, err := d.Render(types.Clause{Field: "state", Op: types.OpIn, Values: []string{"a", "b"}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidQuery))
	})

	t.Run("structural characters are rejected, not truncated", func(t *testing.T) {
		for _, v := range []string{"a,b", "a:b"} {
			_, err := d.Render(types.Clause{Field: "name", Op: types.OpEq, Value: v})
			require.Error(t, err, "value %q", v)
			assert.True(t, errors.Is(err, types.ErrInvalidQuery))
		}
	})

	t.Run("join uses commas", func(t *testing.T) {
		assert.Equal(t, "a:1,b:2", d.Join([]string{"a:1", "b:2"}))
	})
}

func TestSearchDialect(t *testing.T) {
	d := SearchDialect{}

	t.Run("comparison tokens", func(t *testing.T) {
		cases := map[types.Operator]string{
			types.OpEq:   "(status='failure')",
			types.OpNe:   "(status!='failure')",
			types.OpLt:   "(status<'failure')",
			types.OpLe:   "(status<='failure')",
			types.OpGt:   "(status>'failure')",
			types.OpGe:   "(status>='failure')",
			types.OpLike: "(status=~'failure')",
		}
		for op, want := range cases {
			out, err := d.Render(types.Clause{Field: "status", Op: op, Value: "failure"})
			require.NoError(t, err)
			assert.Equal(t, want, out)
		}
	})

	t.Run("in renders a quoted list", func(t *testing.T) {
		out, err := d.Render(types.Clause{Field: "tags", Op: types.OpIn, Values: []string{"daily", "weekly"}})
		require.NoError(t, err)
		assert.Equal(t, "(tags in ['daily','weekly'])", out)
	})

	t.Run("quote characters are rejected", func(t *testing.T) {
		for _, v := range []string{"o'brien", `back\slash`} {
			_, err := d.Render(types.Clause{Field: "name", Op: types.OpEq, Value: v})
			require.Error(t, err, "value %q", v)
			assert.True(t, errors.Is(err, types.ErrInvalidQuery))
		}
	})

	t.Run("join uses and", func(t *testing.T) {
		assert.Equal(t, "(a='1') and (b='2')", d.Join([]string{"(a='1')", "(b='2')"}))
	})
}
