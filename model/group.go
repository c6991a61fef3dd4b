package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*

Group is a themed community ("circle") that posts can be published into

Id: primary key
Name: display name
OwnerID: the user who runs the group; their posts back the curated feed
Secret: secret groups keep their posts out of the home feed entirely
PostStatus: the status posts take when published into this group. Secret
	groups use circle-only; the group feed query derives its status allow-list
	from this field.

*/
type Group struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt

	Name       string
	OwnerID    string
	Secret     bool
	PostStatus PostStatus
}

func (g *Group) BeforeCreate(db *gorm.DB) error {
	if g.Id == "" {
		g.Id = uuid.New().String()
	}
	return nil
}
