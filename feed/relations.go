package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/juqihq/feedcore/model"
	Logger "github.com/juqihq/feedcore/utils/log"
	"gorm.io/gorm"
)

const (
	followingListTTL   = 4 * time.Minute
	followingListLimit = 1000

	// followStatusTimeout keeps profile/detail surfaces responsive when the
	// relationship lookup is slow; on expiry the status degrades to "not
	// following".
	followStatusTimeout = 2500 * time.Millisecond
)

func followingListKey(userID string) string {
	return "following_list_" + userID
}

// FollowingIDs returns the ids the user actively follows, cache-aside with
// a short TTL. A store failure is returned to the caller; feeds built on
// the follow graph cannot proceed without it.
func FollowingIDs(ctx context.Context, db *gorm.DB, cache CacheStore, userID string) ([]string, error) {
	key := followingListKey(userID)
	if cache != nil {
		cached, err := cache.Get(ctx, key)
		if err != nil {
			Logger.Log.WithError(err).Warn("following list cache read failed")
		} else if cached != "" {
			var ids []string
			if err := json.Unmarshal([]byte(cached), &ids); err == nil {
				return ids, nil
			}
		}
	}

	var ids []string
	err := db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("follower_id = ? AND status = ?", userID, model.FollowStatusActive).
		Limit(followingListLimit).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}

	if cache != nil {
		if buf, err := json.Marshal(ids); err == nil {
			if err := cache.Set(ctx, key, string(buf), followingListTTL); err != nil {
				Logger.Log.WithError(err).Warn("following list cache write failed")
			}
		}
	}
	return ids, nil
}

// FollowStatus reports whether follower actively follows followee. The
// lookup runs under a hard timeout and fails to false on timeout or store
// error rather than propagating.
func FollowStatus(ctx context.Context, db *gorm.DB, followerID, followeeID string) bool {
	ctx, cancel := context.WithTimeout(ctx, followStatusTimeout)
	defer cancel()

	var n int64
	err := db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("follower_id = ? AND followee_id = ? AND status = ?",
			followerID, followeeID, model.FollowStatusActive).
		Count(&n).Error
	if err != nil {
		Logger.Log.WithError(err).Warn("follow status lookup failed, treating as not following")
		return false
	}
	return n > 0
}
