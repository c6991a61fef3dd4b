package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/juqihq/feedcore/model"
	Logger "github.com/juqihq/feedcore/utils/log"
	"github.com/sourcegraph/conc/pool"
	"gorm.io/gorm"
)

const (
	visibilitySetTTL   = 5 * time.Minute
	visibilitySetLimit = 1000
)

// Visibility removes posts the viewer must not see: authors the viewer
// muted, authors who hid their content from the viewer, and suspended
// accounts. It runs on every page, cache hit or miss, because its
// decisions are per-viewer and must never end up inside a shared cache
// entry.
type Visibility struct {
	DB    *gorm.DB
	Cache CacheStore
}

// Filter returns the order-preserving subset of posts visible to the
// viewer. Anonymous viewers and moderators see everything. Each of the
// three author sets fails open to empty on a lookup error: availability
// wins over occasionally showing content that should have been hidden.
func (v *Visibility) Filter(ctx context.Context, viewerID string, posts []*model.Post) []*model.Post {
	if viewerID == "" || len(posts) == 0 {
		return posts
	}

	var viewer model.User
	if err := v.DB.WithContext(ctx).First(&viewer, "id = ?", viewerID).Error; err == nil && viewer.IsModerator() {
		return posts
	}

	var muted, mutedMe, suspended []string
	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		muted = v.cachedSet(ctx, viewerID+"_muted_v2", func(ctx context.Context) ([]string, error) {
			var ids []string
			err := v.DB.WithContext(ctx).Model(&model.UserMute{}).
				Where("owner_id = ? AND direction = ?", viewerID, model.MuteDirectionHideThem).
				Limit(visibilitySetLimit).Pluck("muted_id", &ids).Error
			return ids, err
		})
		return nil
	})
	p.Go(func(ctx context.Context) error {
		mutedMe = v.cachedSet(ctx, viewerID+"_muted_me", func(ctx context.Context) ([]string, error) {
			var ids []string
			err := v.DB.WithContext(ctx).Model(&model.UserMute{}).
				Where("muted_id = ? AND direction = ?", viewerID, model.MuteDirectionHideMe).
				Limit(visibilitySetLimit).Pluck("owner_id", &ids).Error
			return ids, err
		})
		return nil
	})
	p.Go(func(ctx context.Context) error {
		// store-wide, not viewer-scoped; still fetched per call because the
		// set is small and the short TTL bounds the cost
		suspended = v.cachedSet(ctx, "suspended_authors", func(ctx context.Context) ([]string, error) {
			var ids []string
			err := v.DB.WithContext(ctx).Model(&model.User{}).
				Where("join_status = ?", model.JoinStatusSuspended).
				Pluck("id", &ids).Error
			return ids, err
		})
		return nil
	})
	_ = p.Wait()

	hidden := make(map[string]bool, len(muted)+len(mutedMe)+len(suspended))
	for _, id := range muted {
		hidden[id] = true
	}
	for _, id := range mutedMe {
		hidden[id] = true
	}
	for _, id := range suspended {
		hidden[id] = true
	}

	out := make([]*model.Post, 0, len(posts))
	followerOnly := false
	for _, post := range posts {
		if hidden[post.AuthorID] {
			continue
		}
		if post.Status == model.PostStatusFollowerOnly {
			followerOnly = true
		}
		out = append(out, post)
	}

	if followerOnly {
		out = v.filterFollowerOnly(ctx, viewerID, out)
	}
	return out
}

// filterFollowerOnly keeps follower-only posts iff the viewer follows the
// author. Unlike the mute sets this fails closed: when the follow set
// cannot be resolved the restricted posts are dropped, never leaked.
func (v *Visibility) filterFollowerOnly(ctx context.Context, viewerID string, posts []*model.Post) []*model.Post {
	following, err := FollowingIDs(ctx, v.DB, v.Cache, viewerID)
	followSet := make(map[string]bool, len(following))
	if err != nil {
		Logger.Log.WithError(err).Warn("follow set unavailable, dropping follower-only posts")
	} else {
		for _, id := range following {
			followSet[id] = true
		}
	}

	out := make([]*model.Post, 0, len(posts))
	for _, post := range posts {
		if post.Status == model.PostStatusFollowerOnly && !followSet[post.AuthorID] && post.AuthorID != viewerID {
			continue
		}
		out = append(out, post)
	}
	return out
}

func (v *Visibility) cachedSet(ctx context.Context, key string, load func(context.Context) ([]string, error)) []string {
	if v.Cache != nil {
		cached, err := v.Cache.Get(ctx, key)
		if err != nil {
			Logger.Log.WithError(err).Warn("visibility set cache read failed")
		} else if cached != "" {
			var ids []string
			if err := json.Unmarshal([]byte(cached), &ids); err == nil {
				return ids
			}
		}
	}

	ids, err := load(ctx)
	if err != nil {
		Logger.Log.WithError(err).WithField("key", key).Warn("visibility set lookup failed, failing open")
		return nil
	}
	if ids == nil {
		ids = []string{}
	}

	if v.Cache != nil {
		if buf, err := json.Marshal(ids); err == nil {
			if err := v.Cache.Set(ctx, key, string(buf), visibilitySetTTL); err != nil {
				Logger.Log.WithError(err).Warn("visibility set cache write failed")
			}
		}
	}
	return ids
}
