package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/services"
	"github.com/desertthunder/spotlist/internal/shared"
	"golang.org/x/sync/singleflight"
)

// Fetcher drains offset-paginated collections one page at a time and memoizes completed results by request
// identity.
type Fetcher struct {
	transport services.Transport
	cache     CollectionCache
	group     singleflight.Group
	logger    *log.Logger
}

// NewFetcher creates a Fetcher. A nil cache gets a process-lifetime [MemoryCache].
func NewFetcher(transport services.Transport, cache CollectionCache, logger *log.Logger) *Fetcher {
	if cache == nil {
		cache = NewMemoryCache(0)
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Fetcher{transport: transport, cache: cache, logger: logger}
}

// FetchAll returns every item of the collection described by desc, in server order.
//
// A cached collection is returned without any transport call. Otherwise pages are requested sequentially until
// the accumulated count reaches the server-reported total, and the full sequence is cached exactly once. Any page
// error aborts the fetch and nothing is cached. Concurrent calls for the same identity share one fetch; a caller
// whose context ends while waiting returns its context error.
//
// The shared fetch is detached from the cancellation of the caller that started it, so one caller giving up does
// not fail the others. Each page request is still bounded by the transport's own timeout.
func (f *Fetcher) FetchAll(ctx context.Context, desc models.RequestDescriptor) ([]json.RawMessage, error) {
	key := desc.Identity()
	if items, ok := f.cache.Get(key); ok {
		f.logger.Debug("collection cache hit", "identity", key, "items", len(items))
		return items, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detached := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (any, error) {
		if items, ok := f.cache.Get(key); ok {
			return items, nil
		}

		items, err := f.drain(detached, desc)
		if err != nil {
			return nil, err
		}
		if err := f.cache.Put(key, items); err != nil {
			f.logger.Warn("failed to cache collection", "identity", key, "error", err)
		}
		return items, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]json.RawMessage), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// drain walks the pages of desc starting at offset 0.
func (f *Fetcher) drain(ctx context.Context, desc models.RequestDescriptor) ([]json.RawMessage, error) {
	limit := explicitLimit(desc)
	if limit > 0 {
		desc = desc.WithQuery(models.LimitParam, strconv.Itoa(limit))
	}

	items := make([]json.RawMessage, 0)
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var page models.Page
		if err := f.transport.Request(ctx, desc.WithQuery(models.OffsetParam, strconv.Itoa(offset)), &page); err != nil {
			return nil, err
		}
		f.logger.Debug("fetched page", "endpoint", desc.Endpoint, "offset", offset, "items", len(page.Items), "total", page.Total)

		items = append(items, page.Items...)
		switch {
		case len(items) == page.Total:
			return items, nil
		case len(items) > page.Total:
			return nil, fmt.Errorf("%w: %s returned %d items for a total of %d", shared.ErrPaginationInconsistency, desc.Endpoint, len(items), page.Total)
		case len(page.Items) == 0:
			return nil, fmt.Errorf("%w: %s returned an empty page at offset %d before reaching total %d", shared.ErrPaginationInconsistency, desc.Endpoint, offset, page.Total)
		}

		next, err := nextOffset(offset, limit, page)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrPaginationInconsistency, desc.Endpoint, err)
		}
		offset = next
	}
}

// nextOffset is the base offset (server-reported, else the previous one) plus the step (explicit limit, else
// server-reported limit).
func nextOffset(previous, limit int, page models.Page) (int, error) {
	base := page.Offset
	if base == 0 {
		base = previous
	}

	step := limit
	if step <= 0 {
		step = page.Limit
	}
	if step <= 0 {
		return 0, fmt.Errorf("no page size to advance from offset %d", base)
	}
	return base + step, nil
}

// explicitLimit is the limit query parameter when set, else the page size hint.
func explicitLimit(desc models.RequestDescriptor) int {
	if raw, ok := desc.Query[models.LimitParam]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return desc.PageSize
}

// Collect fetches the full collection and decodes each item into T. Items that are JSON null are skipped.
func Collect[T any](ctx context.Context, f *Fetcher, desc models.RequestDescriptor) ([]T, error) {
	raw, err := f.FetchAll(ctx, desc)
	if err != nil {
		return nil, err
	}
	return decodeItems[T](raw, desc.Endpoint)
}

func decodeItems[T any](raw []json.RawMessage, endpoint string) ([]T, error) {
	out := make([]T, 0, len(raw))
	for i, item := range raw {
		if string(item) == "null" {
			continue
		}
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("%w: failed to decode item %d of %s: %v", shared.ErrAPIRequest, i, endpoint, err)
		}
		out = append(out, v)
	}
	return out, nil
}
