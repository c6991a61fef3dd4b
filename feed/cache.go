package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/juqihq/feedcore/model"
	Logger "github.com/juqihq/feedcore/utils/log"
)

// CacheStore is the best-effort cache collaborator. Get returns the empty
// string with a nil error on miss. No durability is assumed; every caller
// must work when the store is down.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// CachedPage is the viewer-agnostic portion of one feed page. It must
// never contain per-viewer engagement flags or visibility decisions: the
// same entry is served to every viewer requesting the same feed/cursor,
// and the viewer-specific stages re-run on top of it.
type CachedPage struct {
	Posts      []*model.Post `json:"posts"`
	HasMore    bool          `json:"hasMore"`
	NextCursor int64         `json:"nextCursor,omitempty"`
}

// ResultCache is the cache-aside wrapper around the page query. Cache
// failures are fail-open: the compute path runs directly and the request
// proceeds uncached.
type ResultCache struct {
	Store CacheStore
	Stats statsd.ClientInterface
}

func pageKey(t FeedType, scopeKey string, cursor int64) string {
	if cursor == 0 {
		return fmt.Sprintf("feed_%s_%s_first", t, scopeKey)
	}
	return fmt.Sprintf("feed_%s_%s_%d", t, scopeKey, cursor)
}

// GetOrCompute returns the cached page for (feed type, scope, cursor) or
// computes and stores it. Empty pages are not cached so a scope's first
// posts show up without waiting out a TTL.
func (c *ResultCache) GetOrCompute(ctx context.Context, t FeedType, scopeKey string, cursor int64, ttl time.Duration, compute func() (*CachedPage, error)) (*CachedPage, error) {
	if c == nil || c.Store == nil || ttl <= 0 {
		return compute()
	}

	key := pageKey(t, scopeKey, cursor)
	cached, err := c.Store.Get(ctx, key)
	if err != nil {
		Logger.Log.WithError(err).Warn("feed page cache read failed")
	} else if cached != "" {
		var page CachedPage
		if err := json.Unmarshal([]byte(cached), &page); err == nil {
			c.count("feedcore.page_cache.hit", t)
			return &page, nil
		}
		Logger.Log.WithField("key", key).Warn("discarding undecodable feed page cache entry")
	}
	c.count("feedcore.page_cache.miss", t)

	page, err := compute()
	if err != nil {
		return nil, err
	}
	if len(page.Posts) > 0 {
		if buf, err := json.Marshal(page); err == nil {
			if err := c.Store.Set(ctx, key, string(buf), ttl); err != nil {
				Logger.Log.WithError(err).Warn("feed page cache write failed")
			}
		}
	}
	return page, nil
}

// InvalidateFirstPage drops only the first-page entry for a scope. Deeper
// pages are left to expire: a viewer paging past a concurrent insert can
// see a post duplicated or skipped. That trade-off is deliberate and
// downstream behavior depends on it; do not extend this to a full scan.
func (c *ResultCache) InvalidateFirstPage(ctx context.Context, t FeedType, scopeKey string) {
	if c == nil || c.Store == nil {
		return
	}
	if err := c.Store.Del(ctx, pageKey(t, scopeKey, 0)); err != nil {
		Logger.Log.WithError(err).Warn("feed first-page invalidation failed")
	}
}

func (c *ResultCache) count(name string, t FeedType) {
	if c.Stats == nil {
		return
	}
	_ = c.Stats.Incr(name, []string{"feed_type:" + string(t)}, 1)
}
