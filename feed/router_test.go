package feed

import (
	"context"
	"testing"

	"github.com/juqihq/feedcore/model"
	"github.com/juqihq/feedcore/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T, db *gorm.DB, cache CacheStore) *Router {
	t.Helper()
	r := NewRouter(db, cache, nil, &HostRewriteResolver{
		CloudHost:  "cloud://bucket",
		PublicHost: "https://cdn.example.com",
	})
	return r
}

func TestGetLatestWalk(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	r := newTestRouter(t, db, nil)
	ctx := context.Background()

	seedUser(t, db, "author")
	p10 := seedPost(t, db, "author", testBaseMillis+10_000)
	p20 := seedPost(t, db, "author", testBaseMillis+20_000)
	p30 := seedPost(t, db, "author", testBaseMillis+30_000)

	page, err := r.Get(ctx, &FeedRequest{FeedType: FeedTypeLatest, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{p30.Id, p20.Id}, itemIDs(page.List))
	assert.True(t, page.HasMore)
	require.NotNil(t, page.Cursor)
	assert.Equal(t, p20.PublishedAt, *page.Cursor)

	page, err = r.Get(ctx, &FeedRequest{FeedType: FeedTypeLatest, Limit: 2, Cursor: *page.Cursor})
	require.NoError(t, err)
	assert.Equal(t, []string{p10.Id}, itemIDs(page.List))
	assert.False(t, page.HasMore)
}

func TestGetUnknownFeedType(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	r := newTestRouter(t, db, nil)

	_, err := r.Get(context.Background(), &FeedRequest{FeedType: "trending"})
	assert.ErrorIs(t, err, ErrUnknownFeedType)
}

func TestGetViewerAndScopeValidation(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	r := newTestRouter(t, db, nil)
	ctx := context.Background()

	_, err := r.Get(ctx, &FeedRequest{FeedType: FeedTypeFollowing})
	assert.ErrorIs(t, err, ErrMissingViewer)
	_, err = r.Get(ctx, &FeedRequest{FeedType: FeedTypeFavorites})
	assert.ErrorIs(t, err, ErrMissingViewer)
	_, err = r.Get(ctx, &FeedRequest{FeedType: FeedTypeGroup})
	assert.ErrorIs(t, err, ErrMissingScope)
	_, err = r.Get(ctx, &FeedRequest{FeedType: FeedTypeTopic})
	assert.ErrorIs(t, err, ErrMissingScope)
	_, err = r.Get(ctx, &FeedRequest{FeedType: FeedTypeProfile})
	assert.ErrorIs(t, err, ErrMissingScope)
}

func TestGetHasMoreSurvivesVisibilityFiltering(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	r := newTestRouter(t, db, nil)
	ctx := context.Background()

	seedUser(t, db, "viewer")
	seedUser(t, db, "alice")
	seedUser(t, db, "muted")
	seedMute(t, db, "viewer", "muted", model.MuteDirectionHideThem)

	seedPost(t, db, "muted", testBaseMillis+3_000)
	seedPost(t, db, "muted", testBaseMillis+2_000)
	seedPost(t, db, "alice", testBaseMillis+1_000)

	page, err := r.Get(ctx, &FeedRequest{FeedType: FeedTypeLatest, ViewerID: "viewer", Limit: 2})
	require.NoError(t, err)
	// both page rows were the muted author's; the list is empty but the
	// page itself was full, so pagination keeps going
	assert.Empty(t, page.List)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.Cursor)

	page, err = r.Get(ctx, &FeedRequest{FeedType: FeedTypeLatest, ViewerID: "viewer", Limit: 2, Cursor: *page.Cursor})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, "alice", page.List[0].AuthorID)
}

func TestGetFollowingFeed(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	r := newTestRouter(t, db, nil)
	ctx := context.Background()

	seedUser(t, db, "viewer")
	seedUser(t, db, "followed")
	seedUser(t, db, "stranger")
	seedFollow(t, db, "viewer", "followed")

	seedPost(t, db, "followed", testBaseMillis+2_000)
	seedPost(t, db, "stranger", testBaseMillis+1_000)

	page, err := r.Get(ctx, &FeedRequest{FeedType: FeedTypeFollowing, ViewerID: "viewer"})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, "followed", page.List[0].AuthorID)
}

func TestGetFollowingEmptySetShortCircuits(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	r := newTestRouter(t, db, nil)

	seedUser(t, db, "loner")
	seedUser(t, db, "author")
	seedPost(t, db, "author", testBaseMillis)

	page, err := r.Get(context.Background(), &FeedRequest{FeedType: FeedTypeFollowing, ViewerID: "loner"})
	require.NoError(t, err)
	assert.Empty(t, page.List)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.Cursor)
}

func TestGetCacheTransparency(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	store, _ := newTestCache(t)
	r := newTestRouter(t, db, store)
	ctx := context.Background()

	seedUser(t, db, "author")
	seedPost(t, db, "author", testBaseMillis, func(p *model.Post) { p.GroupID = "g1" })
	req := &FeedRequest{FeedType: FeedTypeGroup, Scope: Scope{GroupID: "g1"}}

	warm, err := r.Get(ctx, req)
	require.NoError(t, err)
	hit, err := r.Get(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, itemIDs(warm.List), itemIDs(hit.List))
	assert.Equal(t, warm.HasMore, hit.HasMore)

	// a post published behind the cached entry shows up only after the
	// first page is invalidated
	fresh := seedPost(t, db, "author", testBaseMillis+60_000, func(p *model.Post) { p.GroupID = "g1" })
	stale, err := r.Get(ctx, req)
	require.NoError(t, err)
	assert.Len(t, stale.List, 1)

	r.InvalidateOnPublish(ctx, fresh)
	page, err := r.Get(ctx, req)
	require.NoError(t, err)
	require.Len(t, page.List, 2)
	assert.Equal(t, fresh.Id, page.List[0].Id)
}

func TestGetCachedPageStaysViewerSpecific(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	store, _ := newTestCache(t)
	r := newTestRouter(t, db, store)
	ctx := context.Background()

	seedUser(t, db, "viewer")
	seedUser(t, db, "muted")
	seedMute(t, db, "viewer", "muted", model.MuteDirectionHideThem)
	seedPost(t, db, "muted", testBaseMillis, func(p *model.Post) { p.GroupID = "g1" })

	// anonymous request warms the shared cache entry
	page, err := r.Get(ctx, &FeedRequest{FeedType: FeedTypeGroup, Scope: Scope{GroupID: "g1"}})
	require.NoError(t, err)
	assert.Len(t, page.List, 1)

	// the cache hit still goes through the viewer's visibility filter
	page, err = r.Get(ctx, &FeedRequest{FeedType: FeedTypeGroup, Scope: Scope{GroupID: "g1"}, ViewerID: "viewer"})
	require.NoError(t, err)
	assert.Empty(t, page.List)
}

func TestGetReviewRequiresModerator(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	r := newTestRouter(t, db, nil)
	ctx := context.Background()

	seedUser(t, db, "member")
	seedUser(t, db, "mod", func(u *model.User) { u.Admin = true })
	seedUser(t, db, "author")
	held := seedPost(t, db, "author", testBaseMillis, func(p *model.Post) { p.Status = model.PostStatusRiskHeld })

	_, err := r.Get(ctx, &FeedRequest{FeedType: FeedTypeReview})
	assert.ErrorIs(t, err, ErrModeratorOnly)
	_, err = r.Get(ctx, &FeedRequest{FeedType: FeedTypeReview, ViewerID: "member"})
	assert.ErrorIs(t, err, ErrModeratorOnly)

	page, err := r.Get(ctx, &FeedRequest{FeedType: FeedTypeReview, ViewerID: "mod"})
	require.NoError(t, err)
	assert.Equal(t, []string{held.Id}, itemIDs(page.List))
}

func TestGetEngagementFlags(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	r := newTestRouter(t, db, nil)
	ctx := context.Background()

	seedUser(t, db, "viewer")
	seedUser(t, db, "author")
	liked := seedPost(t, db, "author", testBaseMillis+2_000)
	collected := seedPost(t, db, "author", testBaseMillis+1_000)
	require.NoError(t, model.LikePost(db, "viewer", liked.Id))
	require.NoError(t, model.FavoritePost(db, "viewer", collected.Id))

	page, err := r.Get(ctx, &FeedRequest{FeedType: FeedTypeLatest, ViewerID: "viewer"})
	require.NoError(t, err)
	require.Len(t, page.List, 2)
	assert.True(t, page.List[0].Viewer.Liked)
	assert.False(t, page.List[0].Viewer.Collected)
	assert.False(t, page.List[1].Viewer.Liked)
	assert.True(t, page.List[1].Viewer.Collected)
	assert.EqualValues(t, 1, page.List[0].LikeCount)
}

func TestGetFavoritesFeed(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	r := newTestRouter(t, db, nil)
	ctx := context.Background()

	seedUser(t, db, "viewer")
	seedUser(t, db, "author")
	old := seedPost(t, db, "author", testBaseMillis+9_000)
	recent := seedPost(t, db, "author", testBaseMillis+1_000)
	require.NoError(t, model.FavoritePost(db, "viewer", old.Id))
	require.NoError(t, model.FavoritePost(db, "viewer", recent.Id))

	page, err := r.Get(ctx, &FeedRequest{FeedType: FeedTypeFavorites, ViewerID: "viewer"})
	require.NoError(t, err)
	// ordered by collect time, not publish time
	require.Len(t, page.List, 2)
	assert.Equal(t, []string{recent.Id, old.Id}, itemIDs(page.List))
	assert.True(t, page.List[0].Viewer.Collected)
}

func TestGetProfileStatuses(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	r := newTestRouter(t, db, nil)
	ctx := context.Background()

	seedUser(t, db, "author")
	seedUser(t, db, "follower")
	seedUser(t, db, "stranger")
	seedFollow(t, db, "follower", "author")

	pub := seedPost(t, db, "author", testBaseMillis+3_000)
	restricted := seedPost(t, db, "author", testBaseMillis+2_000, func(p *model.Post) { p.Status = model.PostStatusFollowerOnly })
	pending := seedPost(t, db, "author", testBaseMillis+1_000, func(p *model.Post) { p.Status = model.PostStatusPending })

	req := func(viewer string) *FeedRequest {
		return &FeedRequest{FeedType: FeedTypeProfile, ViewerID: viewer, Scope: Scope{AuthorID: "author"}}
	}

	page, err := r.Get(ctx, req("stranger"))
	require.NoError(t, err)
	assert.Equal(t, []string{pub.Id}, itemIDs(page.List))

	page, err = r.Get(ctx, req("follower"))
	require.NoError(t, err)
	assert.Equal(t, []string{pub.Id, restricted.Id}, itemIDs(page.List))

	page, err = r.Get(ctx, req("author"))
	require.NoError(t, err)
	assert.Equal(t, []string{pub.Id, restricted.Id, pending.Id}, itemIDs(page.List))
}

func TestGetGroupCuratedRequiresOwner(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	r := newTestRouter(t, db, nil)
	ctx := context.Background()

	seedUser(t, db, "owner")
	seedUser(t, db, "member")
	require.NoError(t, db.Create(&model.Group{Id: "g1", OwnerID: "owner"}).Error)
	require.NoError(t, db.Create(&model.Group{Id: "orphan"}).Error)

	own := seedPost(t, db, "owner", testBaseMillis+1_000, func(p *model.Post) { p.GroupID = "g1" })
	seedPost(t, db, "member", testBaseMillis+2_000, func(p *model.Post) { p.GroupID = "g1" })

	page, err := r.Get(ctx, &FeedRequest{FeedType: FeedTypeGroupCurated, Scope: Scope{GroupID: "g1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{own.Id}, itemIDs(page.List))

	_, err = r.Get(ctx, &FeedRequest{FeedType: FeedTypeGroupCurated, Scope: Scope{GroupID: "orphan"}})
	assert.ErrorIs(t, err, ErrNoGroupOwner)
}

func TestGetAssetResolution(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	r := newTestRouter(t, db, nil)
	ctx := context.Background()

	seedUser(t, db, "author", func(u *model.User) { u.AvatarRef = "cloud://bucket/avatar.png" })
	seedPost(t, db, "author", testBaseMillis, func(p *model.Post) {
		p.Images = []byte(`["cloud://bucket/a.jpg","https://elsewhere.example.com/b.jpg"]`)
	})

	page, err := r.Get(ctx, &FeedRequest{FeedType: FeedTypeLatest})
	require.NoError(t, err)
	require.Len(t, page.List, 1)

	item := page.List[0]
	assert.Equal(t, []string{
		"https://cdn.example.com/a.jpg",
		"https://elsewhere.example.com/b.jpg",
	}, item.Images)
	require.Len(t, item.ImageThumbs, 2)
	assert.Equal(t, "https://cdn.example.com/a.jpg"+thumbVariant, item.ImageThumbs[0])
	require.NotNil(t, item.Author)
	assert.Equal(t, "https://cdn.example.com/avatar.png", item.Author.AvatarURL)
}

func TestGetLimitClamping(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	r := newTestRouter(t, db, nil)
	ctx := context.Background()

	seedUser(t, db, "author")
	for i := 0; i < MaxPageSize+5; i++ {
		seedPost(t, db, "author", testBaseMillis+int64(i)*1_000)
	}

	page, err := r.Get(ctx, &FeedRequest{FeedType: FeedTypeLatest, Limit: 500})
	require.NoError(t, err)
	assert.Len(t, page.List, MaxPageSize)

	page, err = r.Get(ctx, &FeedRequest{FeedType: FeedTypeLatest})
	require.NoError(t, err)
	assert.Len(t, page.List, DefaultPageSize)
}

func TestGetRefreshBypassesLatestCache(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	store, _ := newTestCache(t)
	r := newTestRouter(t, db, store)
	ctx := context.Background()

	seedUser(t, db, "author")
	seedPost(t, db, "author", testBaseMillis)

	page, err := r.Get(ctx, &FeedRequest{FeedType: FeedTypeLatest})
	require.NoError(t, err)
	assert.Len(t, page.List, 1)

	seedPost(t, db, "author", testBaseMillis+60_000)

	// plain request is served stale out of the cache
	page, err = r.Get(ctx, &FeedRequest{FeedType: FeedTypeLatest})
	require.NoError(t, err)
	assert.Len(t, page.List, 1)

	// pull-to-refresh goes to the store
	page, err = r.Get(ctx, &FeedRequest{FeedType: FeedTypeLatest, Refresh: true})
	require.NoError(t, err)
	assert.Len(t, page.List, 2)
}
