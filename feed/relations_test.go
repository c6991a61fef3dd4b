package feed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/juqihq/feedcore/model"
	"github.com/juqihq/feedcore/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowingIDs(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	ctx := context.Background()

	seedUser(t, db, "viewer")
	seedUser(t, db, "a")
	seedUser(t, db, "b")
	seedFollow(t, db, "viewer", "a")
	seedFollow(t, db, "viewer", "b")
	// inactive edges stay out of the set
	require.NoError(t, db.Create(&model.UserFollow{
		FollowerID: "viewer", FolloweeID: "c", Status: model.FollowStatusInactive,
	}).Error)

	ids, err := FollowingIDs(ctx, db, nil, "viewer")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	ids, err = FollowingIDs(ctx, db, nil, "nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
}

func TestFollowingIDsCacheAside(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	store, mr := newTestCache(t)
	ctx := context.Background()

	seedUser(t, db, "viewer")
	seedUser(t, db, "a")
	seedFollow(t, db, "viewer", "a")

	ids, err := FollowingIDs(ctx, db, store, "viewer")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	// the set is now cached; a new edge is invisible until the TTL runs out
	seedUser(t, db, "b")
	seedFollow(t, db, "viewer", "b")
	ids, err = FollowingIDs(ctx, db, store, "viewer")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	mr.FastForward(followingListTTL + time.Second)
	ids, err = FollowingIDs(ctx, db, store, "viewer")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	cached, err := store.Get(ctx, followingListKey("viewer"))
	require.NoError(t, err)
	var fromCache []string
	require.NoError(t, json.Unmarshal([]byte(cached), &fromCache))
	assert.ElementsMatch(t, []string{"a", "b"}, fromCache)
}

func TestFollowingIDsSurvivesCacheOutage(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	store, mr := newTestCache(t)

	seedUser(t, db, "viewer")
	seedUser(t, db, "a")
	seedFollow(t, db, "viewer", "a")

	mr.SetError("redis gone")
	ids, err := FollowingIDs(context.Background(), db, store, "viewer")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestFollowStatus(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	ctx := context.Background()

	seedUser(t, db, "viewer")
	seedUser(t, db, "author")
	seedFollow(t, db, "viewer", "author")

	assert.True(t, FollowStatus(ctx, db, "viewer", "author"))
	assert.False(t, FollowStatus(ctx, db, "author", "viewer"))
	assert.False(t, FollowStatus(ctx, db, "viewer", "nobody"))
}
