package pager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cibridge/cibridge-mcp/internal/upstream"
	"github.com/cibridge/cibridge-mcp/pkg/types"
)

// fakeUpstream serves a fixed set of jobs behind limit/offset pagination.
type fakeUpstream struct {
	total    int
	calls    int
	failFrom int // fail the Nth call (1-based); 0 disables
}

func (f *fakeUpstream) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.calls++
		if f.failFrom > 0 && f.calls >= f.failFrom {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		items := []any{}
		for i := offset; i < f.total && len(items) < limit; i++ {
			items = append(items, map[string]any{
				"id":     fmt.Sprintf("job-%d", i),
				"status": "failure",
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jobs":  items,
			"_meta": map[string]any{"count": f.total},
		})
	}
}

func newController(t *testing.T, f *fakeUpstream, pageSize, hardCap int) (*Controller, func()) {
	t.Helper()
	server := httptest.NewServer(f.handler())
	client := upstream.NewClient("ci", server.URL, nil, 5*time.Second, 0)
	return New(client, pageSize, hardCap), server.Close
}

func req(limit, offset int) Request {
	return Request{
		Endpoint:    "/jobs",
		FilterParam: "where",
		ItemsKey:    "jobs",
		Page:        types.PageRequest{Limit: limit, Offset: offset},
	}
}

func TestFetchAll(t *testing.T) {
	t.Run("single page under the limit", func(t *testing.T) {
		f := &fakeUpstream{total: 3}
		c, done := newController(t, f, 100, 1000)
		defer done()

		env, err := c.FetchAll(context.Background(), req(10, 0))
		require.NoError(t, err)
		assert.Equal(t, 3, env.Count)
		assert.Len(t, env.Items, 3)
		assert.Empty(t, env.Error)
		assert.Equal(t, 1, f.calls)
	})

	t.Run("limit split across pages preserves arrival order", func(t *testing.T) {
		f := &fakeUpstream{total: 10}
		c, done := newController(t, f, 2, 1000)
		defer done()

		env, err := c.FetchAll(context.Background(), req(5, 0))
		require.NoError(t, err)
		require.Equal(t, 5, env.Count)
		for i, item := range env.Items {
			assert.Equal(t, fmt.Sprintf("job-%d", i), item["id"])
		}
		// 2+2+1: the last page is bounded by what is still wanted.
		assert.Equal(t, 3, f.calls)
	})

	t.Run("caller limit is never exceeded", func(t *testing.T) {
		f := &fakeUpstream{total: 50}
		c, done := newController(t, f, 10, 1000)
		defer done()

		env, err := c.FetchAll(context.Background(), req(7, 0))
		require.NoError(t, err)
		assert.Equal(t, 7, env.Count)
	})

	t.Run("offset is forwarded", func(t *testing.T) {
		f := &fakeUpstream{total: 10}
		c, done := newController(t, f, 100, 1000)
		defer done()

		env, err := c.FetchAll(context.Background(), req(3, 4))
		require.NoError(t, err)
		require.Equal(t, 3, env.Count)
		assert.Equal(t, "job-4", env.Items[0]["id"])
	})

	t.Run("limit zero issues no upstream calls", func(t *testing.T) {
		f := &fakeUpstream{total: 10}
		c, done := newController(t, f, 100, 1000)
		defer done()

		env, err := c.FetchAll(context.Background(), req(0, 0))
		require.NoError(t, err)
		assert.Equal(t, 0, env.Count)
		assert.Empty(t, env.Items)
		assert.Equal(t, 0, f.calls)
	})

	t.Run("hard cap bounds accumulation regardless of caller limit", func(t *testing.T) {
		f := &fakeUpstream{total: 100}
		c, done := newController(t, f, 10, 25)
		defer done()

		env, err := c.FetchAll(context.Background(), req(80, 0))
		require.NoError(t, err)
		assert.Equal(t, 25, env.Count)
	})

	t.Run("negative limit fails before any call", func(t *testing.T) {
		f := &fakeUpstream{total: 10}
		c, done := newController(t, f, 100, 1000)
		defer done()

		_, err := c.FetchAll(context.Background(), req(-1, 0))
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidArgument))
		assert.Equal(t, 0, f.calls)
	})

	t.Run("first page failure is a hard error", func(t *testing.T) {
		f := &fakeUpstream{total: 10, failFrom: 1}
		c, done := newController(t, f, 2, 1000)
		defer done()

		env, err := c.FetchAll(context.Background(), req(5, 0))
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrUpstreamUnavailable))
		assert.Empty(t, env.Items)
	})

	t.Run("later page failure preserves the prefix", func(t *testing.T) {
		f := &fakeUpstream{total: 10, failFrom: 2}
		c, done := newController(t, f, 2, 1000)
		defer done()

		env, err := c.FetchAll(context.Background(), req(6, 0))
		require.NoError(t, err)
		assert.Equal(t, 2, env.Count)
		assert.Equal(t, "job-0", env.Items[0]["id"])
		assert.Equal(t, "job-1", env.Items[1]["id"])
		assert.NotEmpty(t, env.Error)
		assert.Contains(t, env.Error, types.ErrPartialResult.Error())
	})
}

func TestExtractItems(t *testing.T) {
	t.Run("flat items key", func(t *testing.T) {
		body := map[string]any{"files": []any{map[string]any{"id": "f1"}}}
		items := extractItems(body, "files")
		require.Len(t, items, 1)
		assert.Equal(t, "f1", items[0]["id"])
	})

	t.Run("nested key with source unwrapping", func(t *testing.T) {
		body := map[string]any{
			"hits": map[string]any{
				"hits": []any{
					map[string]any{"_source": map[string]any{"id": "j1"}},
					map[string]any{"id": "j2"},
				},
			},
		}
		items := extractItems(body, "hits.hits")
		require.Len(t, items, 2)
		assert.Equal(t, "j1", items[0]["id"])
		assert.Equal(t, "j2", items[1]["id"])
	})

	t.Run("missing key yields no items", func(t *testing.T) {
		assert.Empty(t, extractItems(map[string]any{}, "jobs"))
		assert.Empty(t, extractItems(map[string]any{"jobs": "nope"}, "jobs"))
	})
}
