package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JoinStatus tracks an account's standing on the platform. Only the
// suspended value matters to the read path: suspended authors are hidden
// from every feed for every non-moderator viewer.
type JoinStatus int

const (
	JoinStatusSuspended JoinStatus = -2
	JoinStatusPending   JoinStatus = 0
	JoinStatusMember    JoinStatus = 1
)

/*

User is an account record

Id: primary key
Name: display name
AvatarRef: opaque asset reference for the avatar, resolved at assembly time
JoinStatus: account standing, see JoinStatus
Admin/Censor: moderator capabilities; either skips visibility filtering
Labels: free-form profile labels shown on the post card

*/
type User struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt

	Name       string
	AvatarRef  string
	JoinStatus JoinStatus `gorm:"index"`
	Admin      bool
	Censor     bool
	Labels     datatypes.JSON
}

// IsModerator reports whether the account holds a capability that bypasses
// viewer-side visibility filtering.
func (u *User) IsModerator() bool {
	return u.Admin || u.Censor
}
