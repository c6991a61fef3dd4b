package feed

import (
	"context"
	"time"

	"github.com/juqihq/feedcore/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Executor turns a query spec plus a cursor into one raw, viewer-agnostic
// page. It overfetches a single row past the limit to learn whether more
// results exist, and derives the next cursor from the boundary row.
type Executor struct {
	DB *gorm.DB
}

func emptyPage() *CachedPage {
	return &CachedPage{Posts: []*model.Post{}}
}

// Execute runs the page query. A short-circuited spec (empty follow set)
// and a cursor into a single-page feed both yield an empty page, not an
// error.
func (e *Executor) Execute(ctx context.Context, spec *querySpec, cursor int64, limit int) (*CachedPage, error) {
	if spec.shortCircuit {
		return emptyPage(), nil
	}
	if spec.singlePage && cursor > 0 {
		return emptyPage(), nil
	}
	if spec.favoritedBy != "" {
		return e.favoritesPage(ctx, spec, cursor, limit)
	}

	q := e.DB.WithContext(ctx).Model(&model.Post{}).Where("posts.hidden = ?", false)

	if len(spec.statuses) > 0 {
		q = q.Where("posts.status IN ?", spec.statuses)
	}
	if spec.authorIn != nil {
		q = q.Where("posts.author_id IN ?", spec.authorIn)
	}
	if spec.authorID != "" {
		q = q.Where("posts.author_id = ?", spec.authorID)
	}
	if spec.groupID != "" {
		q = q.Where("posts.group_id = ?", spec.groupID)
	}
	if spec.topic != "" {
		q = q.Where("posts.topic = ?", spec.topic)
	}
	if spec.noForwards {
		q = q.Where("posts.forwarded_from_id IS NULL")
	}
	if spec.newcomerOnly {
		q = q.Where("posts.newcomer_post = ?", true)
	}
	if spec.publishedAfter > 0 {
		q = q.Where("posts.published_at > ?", spec.publishedAfter)
	}
	if spec.likedBy != "" {
		q = q.Joins("JOIN post_likes ON post_likes.post_id = posts.id AND post_likes.user_id = ?", spec.likedBy)
	}

	// The id column breaks ties between rows sharing a sort-key value so
	// two pages never overlap or skip around the boundary.
	switch spec.sort {
	case sortTimeAsc:
		if cursor > 0 {
			q = q.Where("posts.published_at > ?", cursor)
		}
		q = q.Order("posts.published_at asc, posts.id asc")
	case sortLikeDesc:
		if cursor > 0 {
			q = q.Where("posts.published_at < ?", cursor)
		}
		q = q.Order("posts.like_count desc, posts.published_at desc, posts.id desc")
	default:
		if cursor > 0 {
			q = q.Where("posts.published_at < ?", cursor)
		} else if spec.pinColumn != "" {
			// pins float to the top of the first page only; cursor pages
			// fall back to pure time order
			q = q.Order("posts." + spec.pinColumn + " desc")
		}
		q = q.Order("posts.published_at desc, posts.id desc")
	}

	var posts []*model.Post
	if err := q.Limit(limit + 1).Find(&posts).Error; err != nil {
		return nil, errors.Wrap(err, "feed page query")
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	page := &CachedPage{Posts: posts, HasMore: hasMore}
	if len(posts) > 0 {
		page.NextCursor = nextCursor(posts[len(posts)-1])
	}
	return page, nil
}

// favoritesPage paginates over the viewer's collection rows instead of the
// posts themselves, then resolves the posts in one membership query. Posts
// deleted since being collected simply drop out of the page.
func (e *Executor) favoritesPage(ctx context.Context, spec *querySpec, cursor int64, limit int) (*CachedPage, error) {
	q := e.DB.WithContext(ctx).Model(&model.PostFavorite{}).
		Where("user_id = ?", spec.favoritedBy)
	if cursor > 0 {
		q = q.Where("created_at < ?", time.UnixMilli(cursor))
	}

	var favs []*model.PostFavorite
	if err := q.Order("created_at desc, post_id desc").Limit(limit + 1).Find(&favs).Error; err != nil {
		return nil, errors.Wrap(err, "favorites page query")
	}

	hasMore := len(favs) > limit
	if hasMore {
		favs = favs[:limit]
	}
	if len(favs) == 0 {
		return emptyPage(), nil
	}

	ids := make([]string, len(favs))
	for i, f := range favs {
		ids[i] = f.PostID
	}

	var posts []*model.Post
	if err := e.DB.WithContext(ctx).Where("id IN ? AND hidden = ?", ids, false).Find(&posts).Error; err != nil {
		return nil, errors.Wrap(err, "resolving collected posts")
	}

	byID := make(map[string]*model.Post, len(posts))
	for _, p := range posts {
		byID[p.Id] = p
	}
	ordered := make([]*model.Post, 0, len(favs))
	for _, f := range favs {
		if p, ok := byID[f.PostID]; ok {
			ordered = append(ordered, p)
		}
	}

	return &CachedPage{
		Posts:      ordered,
		HasMore:    hasMore,
		NextCursor: favs[len(favs)-1].CreatedAt.UnixMilli(),
	}, nil
}

// nextCursor derives the pagination bound from the boundary row: the
// normalized publish time, falling back to the record create time when the
// publish field is absent, or 0 (cursor omitted) when both are.
func nextCursor(boundary *model.Post) int64 {
	if boundary.PublishedAt != 0 {
		return NormalizeMillis(boundary.PublishedAt)
	}
	if !boundary.CreatedAt.IsZero() {
		return boundary.CreatedAt.UnixMilli()
	}
	return 0
}
