// Package upstream implements the outbound HTTP client adapter.
//
// One Client wraps one upstream base URL with shared credentials and a
// request timeout. Responses are mapped onto the error taxonomy in
// pkg/types: 2xx success, 404 not-found, other 4xx rejected, 5xx and
// transport failures unavailable. Retries are off by default; an opt-in
// retry count can be configured on the adapter, never above it.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/cibridge/cibridge-mcp/pkg/types"
)

// Client issues requests against a single upstream service.
type Client struct {
	name    string
	baseURL string
	creds   Credentials
	retries int
	http    *http.Client
}

// NewClient creates a client for one upstream. name is used for logging
// only. creds may be nil for unauthenticated upstreams. retries is the
// number of additional attempts on transport errors and 5xx responses;
// zero disables retrying entirely.
func NewClient(name, baseURL string, creds Credentials, timeout time.Duration, retries int) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		name:    name,
		baseURL: baseURL,
		creds:   creds,
		retries: retries,
		http:    &http.Client{Timeout: timeout},
	}
}

// Name returns the upstream name the client was created with.
func (c *Client) Name() string { return c.name }

// Configured reports whether the client has a base URL to talk to.
func (c *Client) Configured() bool { return c.baseURL != "" }

// GetJSON issues a GET and decodes the JSON response body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", types.ErrUpstreamUnavailable, c.name, err)
	}
	return nil
}

// PostJSON issues a POST with a JSON payload and decodes the response.
func (c *Client) PostJSON(ctx context.Context, path string, payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", c.name, err)
	}

	body, err := c.do(ctx, http.MethodPost, path, nil, raw)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", types.ErrUpstreamUnavailable, c.name, err)
	}
	return nil
}

// GetStream issues a GET and returns the raw response body. The caller
// owns the returned reader and must close it.
func (c *Client) GetStream(ctx context.Context, path string, query url.Values) (io.ReadCloser, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) (io.ReadCloser, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: %s upstream is not configured", types.ErrUpstreamUnavailable, c.name)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	attempt := func() (io.ReadCloser, error) {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
		if err != nil {
			return nil, fmt.Errorf("create %s request: %w", c.name, err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.creds != nil {
			c.creds.authorize(req)
		}

		log.Debug().
			Str("upstream", c.name).
			Str("method", method).
			Str("url", u).
			Msg("upstream request")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrUpstreamUnavailable, c.name, err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp.Body, nil
		}

		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, c.statusError(resp.StatusCode, detail)
	}

	if c.retries <= 0 {
		return attempt()
	}

	var body io.ReadCloser
	op := func() error {
		var err error
		body, err = attempt()
		if err == nil {
			return nil
		}
		// Only transport failures and 5xx are worth retrying.
		if errors.Is(err, types.ErrUpstreamUnavailable) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.retries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}

// statusError maps a non-2xx status code onto the error taxonomy.
func (c *Client) statusError(status int, detail []byte) error {
	msg := string(bytes.TrimSpace(detail))
	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s returned 404: %s", types.ErrNotFound, c.name, msg)
	case status >= 400 && status < 500:
		return fmt.Errorf("%w: %s returned %d: %s", types.ErrUpstreamRejected, c.name, status, msg)
	default:
		return fmt.Errorf("%w: %s returned %d: %s", types.ErrUpstreamUnavailable, c.name, status, msg)
	}
}
