package model

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/*

PostLike is a "many-to-many" relation of a user charging (liking) a post

UserID: user id
PostID: post id
CreatedAt: time when relation is created

*/
type PostLike struct {
	UserID    string `gorm:"primaryKey"`
	PostID    string `gorm:"primaryKey"`
	CreatedAt time.Time
}

/*

PostFavorite is a "many-to-many" relation of a user collecting a post

UserID: user id
PostID: post id
CreatedAt: time when relation is created; the favorites feed sorts and
	paginates on this field, not on the post's publish time

*/
type PostFavorite struct {
	UserID    string `gorm:"primaryKey"`
	PostID    string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// LikePost records a like edge and bumps the post counter. The counter
// update is a single atomic column expression; the edge insert and the
// counter bump are not transactional across collections, matching what the
// store guarantees.
func LikePost(db *gorm.DB, userID, postID string) error {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&PostLike{UserID: userID, PostID: postID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// already liked
		return nil
	}
	return db.Model(&Post{}).Where("id = ?", postID).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
}

// UnlikePost removes a like edge and decrements the post counter.
func UnlikePost(db *gorm.DB, userID, postID string) error {
	res := db.Delete(&PostLike{UserID: userID, PostID: postID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	return db.Model(&Post{}).Where("id = ? AND like_count > 0", postID).
		UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
}

// FavoritePost records a collect edge.
func FavoritePost(db *gorm.DB, userID, postID string) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&PostFavorite{UserID: userID, PostID: postID, CreatedAt: time.Now()}).Error
}
