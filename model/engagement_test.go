package model_test

import (
	"os"
	"testing"

	"github.com/juqihq/feedcore/model"
	"github.com/juqihq/feedcore/utils"
	"github.com/juqihq/feedcore/utils/dotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func likeCount(t *testing.T, db *gorm.DB, postID string) int64 {
	t.Helper()
	var post model.Post
	require.NoError(t, db.First(&post, "id = ?", postID).Error)
	return post.LikeCount
}

func TestLikePostIsIdempotent(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	require.NoError(t, db.Create(&model.User{Id: "fan", JoinStatus: model.JoinStatusMember}).Error)
	require.NoError(t, db.Create(&model.User{Id: "author", JoinStatus: model.JoinStatusMember}).Error)
	post := &model.Post{AuthorID: "author", Content: "hello", Status: model.PostStatusVisible}
	require.NoError(t, db.Create(post).Error)

	require.NoError(t, model.LikePost(db, "fan", post.Id))
	require.NoError(t, model.LikePost(db, "fan", post.Id))
	assert.EqualValues(t, 1, likeCount(t, db, post.Id))
}

func TestUnlikePost(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	require.NoError(t, db.Create(&model.User{Id: "fan", JoinStatus: model.JoinStatusMember}).Error)
	require.NoError(t, db.Create(&model.User{Id: "author", JoinStatus: model.JoinStatusMember}).Error)
	post := &model.Post{AuthorID: "author", Content: "hello", Status: model.PostStatusVisible}
	require.NoError(t, db.Create(post).Error)

	require.NoError(t, model.LikePost(db, "fan", post.Id))
	require.NoError(t, model.UnlikePost(db, "fan", post.Id))
	assert.EqualValues(t, 0, likeCount(t, db, post.Id))

	// unliking without an edge never drives the counter negative
	require.NoError(t, model.UnlikePost(db, "fan", post.Id))
	assert.EqualValues(t, 0, likeCount(t, db, post.Id))
}

func TestFavoritePostIsIdempotent(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	require.NoError(t, db.Create(&model.User{Id: "fan", JoinStatus: model.JoinStatusMember}).Error)
	require.NoError(t, db.Create(&model.User{Id: "author", JoinStatus: model.JoinStatusMember}).Error)
	post := &model.Post{AuthorID: "author", Content: "hello", Status: model.PostStatusVisible}
	require.NoError(t, db.Create(post).Error)

	require.NoError(t, model.FavoritePost(db, "fan", post.Id))
	require.NoError(t, model.FavoritePost(db, "fan", post.Id))

	var n int64
	require.NoError(t, db.Model(&model.PostFavorite{}).Where("user_id = ?", "fan").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}
