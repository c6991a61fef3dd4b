package model

import "time"

// FollowStatus of a follow edge. Edges are kept after an unfollow with a
// non-active status so the write path can detect re-follows.
type FollowStatus int

const (
	FollowStatusInactive FollowStatus = 0
	FollowStatusActive   FollowStatus = 1
)

/*

UserFollow is a directed follow edge

FollowerID: the user who follows
FolloweeID: the user being followed
Status: active or inactive, see FollowStatus
Mutual: derived flag maintained by the write path when both directions are
	active; read-only here

*/
type UserFollow struct {
	FollowerID string `gorm:"primaryKey"`
	FolloweeID string `gorm:"primaryKey"`
	CreatedAt  time.Time

	Status FollowStatus
	Mutual bool
}
