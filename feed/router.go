package feed

import (
	"context"
	"os"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/juqihq/feedcore/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrUnknownFeedType marks a request outside the closed feed-type
	// enumeration. Caller error.
	ErrUnknownFeedType = errors.New("unknown feed type")
	// ErrMissingViewer marks a viewer-bound feed requested anonymously.
	ErrMissingViewer = errors.New("feed requires a viewer")
	// ErrMissingScope marks a scoped feed requested without its scope.
	ErrMissingScope = errors.New("feed requires a scope")
	// ErrModeratorOnly marks the review queue requested by a non-moderator.
	ErrModeratorOnly = errors.New("feed requires a moderator viewer")
	// ErrNoGroupOwner marks a curated feed for a group without an owner.
	ErrNoGroupOwner = errors.New("group has no owner")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// Router is the top-level entry of the read pipeline: it expands the
// request into a query spec and runs cache, executor, visibility,
// enrichment and assembly in order.
type Router struct {
	DB         *gorm.DB
	CacheStore CacheStore

	// BoardGroupID anchors the announcement-board feed. Defaults to the
	// BOARD_GROUP_ID env.
	BoardGroupID string

	Cache      *ResultCache
	Executor   *Executor
	Visibility *Visibility
	Enricher   *Enricher
	Assembler  *Assembler
}

// NewRouter wires the pipeline. cache and stats may be nil: the pipeline
// degrades to uncached, unmetered operation.
func NewRouter(db *gorm.DB, cache CacheStore, stats statsd.ClientInterface, assets AssetResolver) *Router {
	return &Router{
		DB:           db,
		CacheStore:   cache,
		BoardGroupID: os.Getenv("BOARD_GROUP_ID"),
		Cache:        &ResultCache{Store: cache, Stats: stats},
		Executor:     &Executor{DB: db},
		Visibility:   &Visibility{DB: db, Cache: cache},
		Enricher:     &Enricher{DB: db},
		Assembler:    &Assembler{Assets: assets},
	}
}

// Get serves one feed page. Store errors propagate to the caller; cache
// and asset failures degrade silently inside their stages.
func (r *Router) Get(ctx context.Context, req *FeedRequest) (*FeedPage, error) {
	if !req.FeedType.Known() {
		return nil, ErrUnknownFeedType
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	spec, err := r.expandSpec(ctx, req)
	if err != nil {
		return nil, err
	}
	if spec.moderatorOnly {
		if err := r.requireModerator(ctx, req.ViewerID); err != nil {
			return nil, err
		}
	}

	compute := func() (*CachedPage, error) {
		return r.Executor.Execute(ctx, spec, req.Cursor, limit)
	}

	var page *CachedPage
	if r.bypassCache(spec, req) {
		page, err = compute()
	} else {
		ttl := spec.ttl
		if req.Cursor > 0 && spec.deepTTL > 0 {
			ttl = spec.deepTTL
		}
		page, err = r.Cache.GetOrCompute(ctx, spec.feedType, spec.scopeKey, req.Cursor, ttl, compute)
	}
	if err != nil {
		return nil, err
	}

	// visibility runs on both cache hits and misses: cached pages are
	// shared across viewers and carry no per-viewer decisions
	visible := r.Visibility.Filter(ctx, req.ViewerID, page.Posts)

	enriched, err := r.Enricher.Enrich(ctx, req.ViewerID, visible)
	if err != nil {
		return nil, err
	}
	items, err := r.Assembler.Assemble(ctx, enriched)
	if err != nil {
		return nil, err
	}

	resp := &FeedPage{List: items, HasMore: page.HasMore}
	if len(page.Posts) > 0 && page.NextCursor != 0 {
		cursor := page.NextCursor
		resp.Cursor = &cursor
	}
	return resp, nil
}

// InvalidateOnPublish is the write-path hook: a new post drops the
// first-page cache entries of the scopes it lands in. Deeper pages are
// deliberately left alone (see ResultCache.InvalidateFirstPage).
func (r *Router) InvalidateOnPublish(ctx context.Context, post *model.Post) {
	r.Cache.InvalidateFirstPage(ctx, FeedTypeLatest, latestScopeKey)
	if post.GroupID != "" {
		r.Cache.InvalidateFirstPage(ctx, FeedTypeGroup, post.GroupID)
	}
	if post.Topic != "" {
		r.Cache.InvalidateFirstPage(ctx, FeedTypeTopic, post.Topic)
	}
}

func (r *Router) bypassCache(spec *querySpec, req *FeedRequest) bool {
	if spec.ttl <= 0 {
		return true
	}
	return spec.bypassOnRefresh && req.Refresh && req.Cursor == 0
}

func (r *Router) requireModerator(ctx context.Context, viewerID string) error {
	if viewerID == "" {
		return ErrModeratorOnly
	}
	var viewer model.User
	if err := r.DB.WithContext(ctx).First(&viewer, "id = ?", viewerID).Error; err != nil {
		return ErrModeratorOnly
	}
	if !viewer.IsModerator() {
		return ErrModeratorOnly
	}
	return nil
}
