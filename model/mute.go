package model

import "time"

// MuteDirection distinguishes the two independent mute preferences a user
// can set against another account.
type MuteDirection int

const (
	// MuteDirectionHideThem hides the muted account's posts from the owner.
	MuteDirectionHideThem MuteDirection = 1
	// MuteDirectionHideMe hides the owner's posts from the muted account.
	MuteDirectionHideMe MuteDirection = 2
)

/*

UserMute is a directed, per-direction mute edge

OwnerID: the user who created the mute
MutedID: the account the preference applies to
Direction: which way content is hidden, see MuteDirection. Both directions
	for the same pair are stored as two independent rows.

*/
type UserMute struct {
	OwnerID   string        `gorm:"primaryKey"`
	MutedID   string        `gorm:"primaryKey"`
	Direction MuteDirection `gorm:"primaryKey"`
	CreatedAt time.Time
}
