package feed

// Scope narrows a feed variant to one group, topic or author. Which field
// applies depends on the feed type; the rest are ignored.
type Scope struct {
	GroupID  string `json:"groupId,omitempty"`
	Topic    string `json:"topic,omitempty"`
	AuthorID string `json:"authorId,omitempty"`
}

// FeedRequest is the single read operation of the pipeline.
//
// Cursor is the opaque pagination token returned by the previous page: the
// normalized sort-field value of that page's last item, 0 for the first
// page. A malformed or unknown cursor degrades to "first page" at the
// store level, it is never an error.
//
// Refresh marks an interactive pull-to-refresh; volatile feeds bypass the
// page cache for it so the newest content shows up immediately.
type FeedRequest struct {
	FeedType FeedType `json:"feedType"`
	ViewerID string   `json:"viewerId,omitempty"`
	Scope    Scope    `json:"scope,omitempty"`
	Cursor   int64    `json:"cursor,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"`
}

// FeedPage is the assembled response. Cursor is nil when the underlying
// page was empty; HasMore is computed from the pre-filter page, so List
// can be shorter than the requested limit while HasMore is still true.
type FeedPage struct {
	List    []*Item `json:"list"`
	HasMore bool    `json:"hasMore"`
	Cursor  *int64  `json:"cursor,omitempty"`
}
