package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cibridge/cibridge-mcp/pkg/types"
)

func TestClientAuth(t *testing.T) {
	t.Run("api key becomes a bearer header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		}))
		defer server.Close()

		c := NewClient("ci", server.URL, APIKey{Key: "secret"}, 5*time.Second, 0)
		var out map[string]any
		require.NoError(t, c.GetJSON(context.Background(), "/ping", nil, &out))
	})

	t.Run("user password becomes basic auth", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "remoteci", user)
			assert.Equal(t, "hunter2", pass)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		}))
		defer server.Close()

		c := NewClient("ci", server.URL, UserPassword{Login: "remoteci", Password: "hunter2"}, 5*time.Second, 0)
		var out map[string]any
		require.NoError(t, c.GetJSON(context.Background(), "/ping", nil, &out))
	})
}

func TestClientStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, types.ErrNotFound},
		{http.StatusBadRequest, types.ErrUpstreamRejected},
		{http.StatusUnauthorized, types.ErrUpstreamRejected},
		{http.StatusInternalServerError, types.ErrUpstreamUnavailable},
		{http.StatusBadGateway, types.ErrUpstreamUnavailable},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))

		c := NewClient("ci", server.URL, nil, 5*time.Second, 0)
		var out map[string]any
		err := c.GetJSON(context.Background(), "/thing", nil, &out)
		require.Error(t, err, "status %d", tc.status)
		assert.True(t, errors.Is(err, tc.want), "status %d should map to %v, got %v", tc.status, tc.want, err)
		server.Close()
	}
}

func TestClientNetworkFailure(t *testing.T) {
	// Closed server: transport-level failure.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	server.Close()

	c := NewClient("ci", server.URL, nil, time.Second, 0)
	var out map[string]any
	err := c.GetJSON(context.Background(), "/thing", nil, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUpstreamUnavailable))
}

func TestClientNoRetriesByDefault(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient("ci", server.URL, nil, 5*time.Second, 0)
	var out map[string]any
	err := c.GetJSON(context.Background(), "/thing", nil, &out)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestClientOptInRetry(t *testing.T) {
	t.Run("retries 5xx until success", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			if calls < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		}))
		defer server.Close()

		c := NewClient("ci", server.URL, nil, 5*time.Second, 3)
		var out map[string]any
		require.NoError(t, c.GetJSON(context.Background(), "/thing", nil, &out))
		assert.Equal(t, 3, calls)
	})

	t.Run("4xx is permanent even with retries enabled", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		c := NewClient("ci", server.URL, nil, 5*time.Second, 3)
		var out map[string]any
		err := c.GetJSON(context.Background(), "/thing", nil, &out)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrUpstreamRejected))
		assert.Equal(t, 1, calls)
	})
}

func TestClientQueryString(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer server.Close()

	c := NewClient("ci", server.URL, nil, 5*time.Second, 0)
	q := url.Values{}
	q.Set("limit", "10")
	q.Set("where", "name:like:log")
	var out map[string]any
	require.NoError(t, c.GetJSON(context.Background(), "/files", q, &out))
	assert.Equal(t, "10", got.Get("limit"))
	assert.Equal(t, "name:like:log", got.Get("where"))
}

func TestClientUnconfigured(t *testing.T) {
	c := NewClient("docs", "", nil, time.Second, 0)
	var out map[string]any
	err := c.GetJSON(context.Background(), "/documents", nil, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUpstreamUnavailable))
	assert.False(t, c.Configured())
}
