// Package pager implements the pagination controller.
//
// It drives repeated calls against a listing endpoint, accumulating items
// in arrival order until the upstream runs out of results, the caller's
// limit is met, or the hard cap is reached. Pages are fetched strictly
// sequentially; nothing is reordered or deduplicated, and a failed later
// page degrades the result to a partial envelope instead of discarding
// the pages already fetched.
package pager

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cibridge/cibridge-mcp/internal/upstream"
	"github.com/cibridge/cibridge-mcp/pkg/types"
)

// Request describes one paginated listing fetch.
type Request struct {
	// Endpoint is the upstream path, e.g. "/jobs".
	Endpoint string
	// FilterParam is the query-string parameter carrying the translated
	// filter ("where" or "query" depending on the resource's dialect).
	FilterParam string
	// Filter is the translated filter string; empty means unfiltered.
	Filter string
	// ItemsKey locates the item list in the response body. Dot notation
	// descends into nested objects ("hits.hits" for search responses).
	ItemsKey string
	// Sort is the rendered upstream sort expression; empty means the
	// upstream's default order.
	Sort string
	// Page carries the caller's limit and starting offset.
	Page types.PageRequest
}

// Controller fetches pages through one upstream client.
type Controller struct {
	client   *upstream.Client
	pageSize int
	hardCap  int
}

// New creates a controller. pageSize is the upstream's maximum single-page
// size; hardCap is a safety ceiling on accumulated items independent of
// caller input.
func New(client *upstream.Client, pageSize, hardCap int) *Controller {
	return &Controller{client: client, pageSize: pageSize, hardCap: hardCap}
}

// FetchAll accumulates pages until the caller's limit, the hard cap, or
// the natural end of the result set, whichever comes first.
//
// A failure on the first page is returned as a hard error with an empty
// envelope. A failure on a later page returns the prefix fetched so far
// with the envelope's Error field populated and a nil error: partial
// failure is reported, not hidden and not retried.
func (c *Controller) FetchAll(ctx context.Context, req Request) (types.Envelope, error) {
	if err := req.Page.Validate(); err != nil {
		return types.Envelope{}, err
	}

	// Limit 0 means no results were requested; nothing to fetch.
	if req.Page.Limit == 0 {
		return types.NewEnvelope(nil), nil
	}

	want := req.Page.Limit
	if want > c.hardCap {
		want = c.hardCap
	}

	var items []types.Object
	offset := req.Page.Offset

	for len(items) < want {
		pageLimit := want - len(items)
		if pageLimit > c.pageSize {
			pageLimit = c.pageSize
		}

		page, err := c.fetchPage(ctx, req, pageLimit, offset)
		if err != nil {
			if len(items) == 0 {
				return types.Envelope{}, err
			}
			log.Warn().
				Str("endpoint", req.Endpoint).
				Int("fetched", len(items)).
				Err(err).
				Msg("page fetch failed after partial success")
			env := types.NewEnvelope(items)
			env.Error = fmt.Errorf("%w: %v", types.ErrPartialResult, err).Error()
			return env, nil
		}

		// A short page is the upstream signalling the end of the set. An
		// over-full page (an upstream ignoring its limit parameter) is
		// truncated so the caller's limit still holds.
		short := len(page) < pageLimit
		if over := len(items)+len(page)-want; over > 0 {
			page = page[:len(page)-over]
		}
		items = append(items, page...)
		offset += len(page)

		if short {
			break
		}
	}

	return types.NewEnvelope(items), nil
}

// fetchPage issues a single bounded upstream call and extracts its items.
func (c *Controller) fetchPage(ctx context.Context, req Request, limit, offset int) ([]types.Object, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	if req.Filter != "" {
		q.Set(req.FilterParam, req.Filter)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}

	var body map[string]any
	if err := c.client.GetJSON(ctx, req.Endpoint, q, &body); err != nil {
		return nil, err
	}
	return extractItems(body, req.ItemsKey), nil
}

// extractItems walks the items key path and converts the list entries.
// Search responses wrap each record in a document with a _source payload;
// those are unwrapped so callers always see plain records.
func extractItems(body map[string]any, itemsKey string) []types.Object {
	var cur any = body
	for _, seg := range strings.Split(itemsKey, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[seg]
	}

	list, ok := cur.([]any)
	if !ok {
		return nil
	}

	items := make([]types.Object, 0, len(list))
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if src, ok := m["_source"].(map[string]any); ok {
			m = src
		}
		items = append(items, m)
	}
	return items
}
