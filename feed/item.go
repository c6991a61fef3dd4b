package feed

import (
	"encoding/json"

	"github.com/juqihq/feedcore/model"
)

// Author is the projection of a user record shipped with each feed item.
type Author struct {
	Id        string          `json:"id"`
	Name      string          `json:"name"`
	AvatarURL string          `json:"avatarUrl"`
	Labels    json.RawMessage `json:"labels,omitempty"`
	Admin     bool            `json:"admin,omitempty"`
}

// Item is the client-facing shape of one post: the raw row merged with its
// author, the viewer's engagement flags and resolved asset URLs.
type Item struct {
	Id       string           `json:"id"`
	AuthorID string           `json:"authorId"`
	Content  string           `json:"content"`
	Status   model.PostStatus `json:"status"`

	LikeCount    int64 `json:"likeCount"`
	CommentCount int64 `json:"commentCount"`
	ShareCount   int64 `json:"shareCount"`
	BoostCount   int64 `json:"boostCount"`

	// PublishedAt is always epoch milliseconds regardless of how the row
	// stored it.
	PublishedAt int64 `json:"publishedAt"`

	Images      []string `json:"images,omitempty"`
	ImageThumbs []string `json:"imageThumbs,omitempty"`
	Video       string   `json:"video,omitempty"`
	Voice       string   `json:"voice,omitempty"`

	ForwardedFromID *string         `json:"forwardedFromId,omitempty"`
	ForwardSnapshot json.RawMessage `json:"forwardSnapshot,omitempty"`
	Mentions        json.RawMessage `json:"mentions,omitempty"`
	Topic           string          `json:"topic,omitempty"`
	GroupID         string          `json:"groupId,omitempty"`

	Author *Author    `json:"author,omitempty"`
	Viewer Engagement `json:"viewer"`
}
