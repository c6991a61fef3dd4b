package feed

import (
	"context"

	"github.com/juqihq/feedcore/model"
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"gorm.io/gorm"
)

// Engagement is the viewer's relationship to one post.
type Engagement struct {
	Liked     bool `json:"liked"`
	Collected bool `json:"collected"`
}

// EnrichedPost pairs a raw post with its author record and the viewer's
// engagement flags.
type EnrichedPost struct {
	Post   *model.Post
	Author *model.User
	Viewer Engagement
}

// Enricher batch-resolves author records and per-viewer engagement for the
// ids present in one page. Lookup cost is a constant number of membership
// queries regardless of page size, which is why this runs as its own stage
// instead of a per-item join inside the page query.
type Enricher struct {
	DB *gorm.DB
}

func (e *Enricher) Enrich(ctx context.Context, viewerID string, posts []*model.Post) ([]*EnrichedPost, error) {
	if len(posts) == 0 {
		return []*EnrichedPost{}, nil
	}

	authorIDs := make([]string, 0, len(posts))
	postIDs := make([]string, 0, len(posts))
	seenAuthor := make(map[string]bool, len(posts))
	for _, post := range posts {
		postIDs = append(postIDs, post.Id)
		if !seenAuthor[post.AuthorID] {
			seenAuthor[post.AuthorID] = true
			authorIDs = append(authorIDs, post.AuthorID)
		}
	}

	var (
		authors      []*model.User
		likedIDs     []string
		collectedIDs []string
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		return e.DB.WithContext(ctx).Where("id IN ?", authorIDs).Find(&authors).Error
	})
	if viewerID != "" {
		p.Go(func(ctx context.Context) error {
			return e.DB.WithContext(ctx).Model(&model.PostLike{}).
				Where("user_id = ? AND post_id IN ?", viewerID, postIDs).
				Pluck("post_id", &likedIDs).Error
		})
		p.Go(func(ctx context.Context) error {
			return e.DB.WithContext(ctx).Model(&model.PostFavorite{}).
				Where("user_id = ? AND post_id IN ?", viewerID, postIDs).
				Pluck("post_id", &collectedIDs).Error
		})
	}
	if err := p.Wait(); err != nil {
		return nil, errors.Wrap(err, "feed enrichment lookups")
	}

	authorByID := make(map[string]*model.User, len(authors))
	for _, a := range authors {
		authorByID[a.Id] = a
	}
	liked := make(map[string]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	collected := make(map[string]bool, len(collectedIDs))
	for _, id := range collectedIDs {
		collected[id] = true
	}

	out := make([]*EnrichedPost, 0, len(posts))
	for _, post := range posts {
		out = append(out, &EnrichedPost{
			Post:   post,
			Author: authorByID[post.AuthorID],
			Viewer: Engagement{Liked: liked[post.Id], Collected: collected[post.Id]},
		})
	}
	return out, nil
}
