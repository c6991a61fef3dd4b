package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PostStatus is the lifecycle/visibility state of a post. Values mirror the
// ones persisted by the publish and moderation workflows, which own every
// transition; this package only reads them.
type PostStatus int

const (
	// PostStatusVisible is readable in every feed.
	PostStatusVisible PostStatus = 1
	// PostStatusCircleOnly is readable only inside its group.
	PostStatusCircleOnly PostStatus = 2
	// PostStatusPending is waiting for review, shown in the review and
	// newcomer queues only.
	PostStatusPending PostStatus = 5
	// PostStatusHomeVisible is readable on the home (latest) feed but kept
	// out of topic/group surfaces.
	PostStatusHomeVisible PostStatus = 6
	// PostStatusRiskHeld was flagged by risk control and is held back from
	// public feeds.
	PostStatusRiskHeld PostStatus = 7
	// PostStatusFollowerOnly is readable only by followers of the author.
	PostStatusFollowerOnly PostStatus = 9
)

/*

Post is a piece of user generated content ("dyn" in the legacy store)

Id: primary key
CreatedAt: time when entity is created
DeletedAt: soft-delete marker, set by the delete workflow, never hard-deleted

AuthorID:
Author: the user who published the post, "belongs-to" relation

Status: visibility state, see PostStatus
Hidden: group/admin level takedown flag, orthogonal to Status

PublishedAt: publish time as an epoch integer. Historical writers stored it
	in seconds, milliseconds or an ISO string depending on client version, so
	reads must go through feed.NormalizeMillis instead of trusting the unit.

Images/Video/Voice: opaque asset references, resolved to fetchable URLs at
	assembly time, never stored as final URLs

ForwardedFromID:
ForwardSnapshot: set when the post forwards another post; the snapshot keeps
	the forwarded content renderable after the source is deleted

Mentions: user ids mentioned in the content
Topic: topic tag, empty when the post is not attached to a topic
GroupID: owning group ("circle"), empty for plain home posts
NewcomerPost: true while the author is still in the new-member review window

PinnedAt: group/board pin time, 0 when not pinned
AuthorPinnedAt: profile-page pin time, 0 when not pinned

*/
type Post struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt

	AuthorID string `gorm:"index"`
	Author   User

	Content string
	Status  PostStatus `gorm:"index"`
	Hidden  bool

	LikeCount    int64
	CommentCount int64
	ShareCount   int64
	BoostCount   int64

	PublishedAt int64 `gorm:"index"`

	Images datatypes.JSON
	Video  string
	Voice  string

	ForwardedFromID *string
	ForwardSnapshot datatypes.JSON
	Mentions        datatypes.JSON
	Topic           string `gorm:"index"`
	GroupID         string `gorm:"index"`
	NewcomerPost    bool

	PinnedAt       int64
	AuthorPinnedAt int64
}

func (p *Post) BeforeCreate(db *gorm.DB) error {
	if p.Id == "" {
		p.Id = uuid.New().String()
	}
	return nil
}
