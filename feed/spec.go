package feed

import (
	"context"
	"time"

	"github.com/juqihq/feedcore/model"
	"github.com/pkg/errors"
)

type sortOrder int

const (
	sortTimeDesc sortOrder = iota
	sortTimeAsc
	sortLikeDesc
	sortFavoritedDesc
)

// querySpec is the typed description of one feed variant's page query.
// Specs are built per request by expandSpec; the executor consumes them
// without knowing which feed type they came from.
type querySpec struct {
	feedType FeedType
	scopeKey string

	// predicate
	statuses       []model.PostStatus // empty = no status constraint
	authorIn       []string           // non-nil and empty short-circuits to an empty page
	authorID       string
	groupID        string
	topic          string
	noForwards     bool
	newcomerOnly   bool
	likedBy        string // restrict to posts this viewer charged
	favoritedBy    string // page over this viewer's collection instead of posts
	publishedAfter int64  // exclusive lower bound, epoch millis

	// ordering
	sort      sortOrder
	pinColumn string // ordered first on the cursor-less page when set

	// pagination
	singlePage bool // cursor requests return an empty page

	// caching
	ttl             time.Duration // 0 disables the page cache
	deepTTL         time.Duration // TTL for cursor pages when different
	bypassOnRefresh bool

	moderatorOnly bool
	shortCircuit  bool
}

const (
	latestScopeKey = "home"
	hotScopeKey    = "hot"
)

var (
	latestStatuses    = []model.PostStatus{model.PostStatusVisible, model.PostStatusHomeVisible}
	followingStatuses = []model.PostStatus{model.PostStatusVisible, model.PostStatusHomeVisible, model.PostStatusFollowerOnly}
	reviewStatuses    = []model.PostStatus{model.PostStatusPending, model.PostStatusRiskHeld}

	hotWindow = 8 * time.Hour
)

// expandSpec maps a request onto a query spec, resolving the relational
// expansions some feed types need (follow graph, group rules) before the
// page query can be built.
func (r *Router) expandSpec(ctx context.Context, req *FeedRequest) (*querySpec, error) {
	spec := &querySpec{feedType: req.FeedType, sort: sortTimeDesc}

	switch req.FeedType {
	case FeedTypeLatest:
		spec.scopeKey = latestScopeKey
		spec.statuses = latestStatuses
		spec.ttl = 5 * time.Second
		spec.bypassOnRefresh = true

	case FeedTypeFollowing:
		if req.ViewerID == "" {
			return nil, ErrMissingViewer
		}
		spec.scopeKey = req.ViewerID
		spec.statuses = followingStatuses
		following, err := FollowingIDs(ctx, r.DB, r.CacheStore, req.ViewerID)
		if err != nil {
			return nil, errors.Wrap(err, "resolving follow set")
		}
		spec.authorIn = following
		if len(following) == 0 {
			spec.shortCircuit = true
		}

	case FeedTypeGroup:
		if req.Scope.GroupID == "" {
			return nil, ErrMissingScope
		}
		spec.scopeKey = req.Scope.GroupID
		spec.groupID = req.Scope.GroupID
		spec.statuses = r.groupStatuses(ctx, req.Scope.GroupID)
		spec.ttl = 5 * time.Minute
		spec.deepTTL = 50 * time.Minute

	case FeedTypeTopic:
		if req.Scope.Topic == "" {
			return nil, ErrMissingScope
		}
		spec.scopeKey = req.Scope.Topic
		spec.topic = req.Scope.Topic
		spec.statuses = []model.PostStatus{model.PostStatusVisible}
		spec.ttl = time.Minute

	case FeedTypeHot:
		spec.scopeKey = hotScopeKey
		spec.statuses = []model.PostStatus{model.PostStatusVisible}
		spec.noForwards = true
		spec.publishedAfter = time.Now().Add(-hotWindow).UnixMilli()
		spec.sort = sortLikeDesc
		spec.singlePage = true
		spec.ttl = 10 * time.Minute

	case FeedTypeGroupHot:
		if req.Scope.GroupID == "" {
			return nil, ErrMissingScope
		}
		spec.scopeKey = req.Scope.GroupID
		spec.groupID = req.Scope.GroupID
		spec.statuses = []model.PostStatus{model.PostStatusVisible}
		spec.sort = sortLikeDesc

	case FeedTypeGroupCurated:
		if req.Scope.GroupID == "" {
			return nil, ErrMissingScope
		}
		var group model.Group
		if err := r.DB.WithContext(ctx).First(&group, "id = ?", req.Scope.GroupID).Error; err != nil {
			return nil, errors.Wrap(err, "loading group")
		}
		if group.OwnerID == "" {
			return nil, ErrNoGroupOwner
		}
		spec.scopeKey = req.Scope.GroupID
		spec.groupID = req.Scope.GroupID
		spec.authorID = group.OwnerID
		spec.statuses = []model.PostStatus{model.PostStatusVisible}
		spec.pinColumn = "pinned_at"

	case FeedTypeFavorites:
		if req.ViewerID == "" {
			return nil, ErrMissingViewer
		}
		spec.scopeKey = req.ViewerID
		spec.favoritedBy = req.ViewerID
		spec.sort = sortFavoritedDesc

	case FeedTypeCharged:
		if req.ViewerID == "" {
			return nil, ErrMissingViewer
		}
		spec.scopeKey = req.ViewerID
		spec.likedBy = req.ViewerID
		spec.statuses = []model.PostStatus{model.PostStatusVisible}

	case FeedTypeReview:
		spec.scopeKey = "review"
		spec.statuses = reviewStatuses
		spec.moderatorOnly = true
		if req.Scope.AuthorID != "" {
			spec.scopeKey = req.Scope.AuthorID
			spec.authorID = req.Scope.AuthorID
		}

	case FeedTypeNewcomer:
		spec.scopeKey = "newcomer"
		spec.statuses = []model.PostStatus{model.PostStatusPending}
		spec.newcomerOnly = true
		spec.sort = sortTimeAsc
		spec.ttl = time.Second

	case FeedTypeBoard:
		if r.BoardGroupID == "" {
			return nil, ErrMissingScope
		}
		spec.scopeKey = "board"
		spec.groupID = r.BoardGroupID
		spec.statuses = []model.PostStatus{model.PostStatusVisible}
		spec.noForwards = true
		spec.pinColumn = "pinned_at"
		spec.ttl = 20 * time.Minute

	case FeedTypeProfile:
		if req.Scope.AuthorID == "" {
			return nil, ErrMissingScope
		}
		spec.scopeKey = req.Scope.AuthorID
		spec.authorID = req.Scope.AuthorID
		spec.statuses = r.profileStatuses(ctx, req.ViewerID, req.Scope.AuthorID)
		spec.pinColumn = "author_pinned_at"

	default:
		return nil, ErrUnknownFeedType
	}

	return spec, nil
}

// groupStatuses derives a group feed's status allow-list from the group
// record. Secret groups historically carry posts under both the visible
// and circle-only statuses, so both are admitted; a missing group record
// degrades the same way rather than failing the request.
func (r *Router) groupStatuses(ctx context.Context, groupID string) []model.PostStatus {
	var group model.Group
	err := r.DB.WithContext(ctx).First(&group, "id = ?", groupID).Error
	if err != nil || group.Secret || group.PostStatus == 0 {
		return []model.PostStatus{model.PostStatusVisible, model.PostStatusCircleOnly}
	}
	return []model.PostStatus{group.PostStatus}
}

// profileStatuses picks which statuses of an author's posts the viewer may
// list. Owners see everything including held and pending posts; followers
// additionally see follower-only posts; everyone else gets the public set.
func (r *Router) profileStatuses(ctx context.Context, viewerID, authorID string) []model.PostStatus {
	if viewerID == authorID {
		return []model.PostStatus{
			model.PostStatusVisible, model.PostStatusCircleOnly,
			model.PostStatusPending, model.PostStatusHomeVisible,
			model.PostStatusRiskHeld, model.PostStatusFollowerOnly,
		}
	}
	statuses := []model.PostStatus{model.PostStatusVisible, model.PostStatusHomeVisible}
	if viewerID != "" && FollowStatus(ctx, r.DB, viewerID, authorID) {
		statuses = append(statuses, model.PostStatusFollowerOnly)
	}
	return statuses
}
