package feed

// FeedType names one post-selection variant. The enumeration is closed:
// the router rejects anything else before touching the store.
type FeedType string

const (
	// FeedTypeLatest is the global newest-first home feed.
	FeedTypeLatest FeedType = "latest"
	// FeedTypeFollowing restricts the home feed to followed authors.
	FeedTypeFollowing FeedType = "following"
	// FeedTypeGroup lists one group's posts.
	FeedTypeGroup FeedType = "group"
	// FeedTypeTopic lists posts carrying one topic tag.
	FeedTypeTopic FeedType = "topic"
	// FeedTypeHot ranks the last eight hours by like count. Single page.
	FeedTypeHot FeedType = "hot"
	// FeedTypeGroupHot ranks one group's posts by like count.
	FeedTypeGroupHot FeedType = "group_hot"
	// FeedTypeGroupCurated lists the group owner's posts, pins first.
	FeedTypeGroupCurated FeedType = "group_curated"
	// FeedTypeFavorites lists posts the viewer collected, newest
	// collection first.
	FeedTypeFavorites FeedType = "favorites"
	// FeedTypeCharged lists posts the viewer charged (liked).
	FeedTypeCharged FeedType = "charged"
	// FeedTypeReview is the moderation queue, moderator viewers only.
	FeedTypeReview FeedType = "review"
	// FeedTypeNewcomer is the new-member queue, oldest first.
	FeedTypeNewcomer FeedType = "newcomer"
	// FeedTypeBoard is the announcement board group.
	FeedTypeBoard FeedType = "board"
	// FeedTypeProfile lists one author's posts; the status allow-list
	// depends on the viewer's relation to the author.
	FeedTypeProfile FeedType = "profile"
)

var knownFeedTypes = map[FeedType]bool{
	FeedTypeLatest:       true,
	FeedTypeFollowing:    true,
	FeedTypeGroup:        true,
	FeedTypeTopic:        true,
	FeedTypeHot:          true,
	FeedTypeGroupHot:     true,
	FeedTypeGroupCurated: true,
	FeedTypeFavorites:    true,
	FeedTypeCharged:      true,
	FeedTypeReview:       true,
	FeedTypeNewcomer:     true,
	FeedTypeBoard:        true,
	FeedTypeProfile:      true,
}

// Known reports whether t is part of the closed enumeration.
func (t FeedType) Known() bool {
	return knownFeedTypes[t]
}
