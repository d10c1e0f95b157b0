package models

// PostColumns is the on-disk column order of the posts table.
var PostColumns = []string{"post_id", "user_id", "content", "timestamp"}

// Post represents a single published post.
type Post struct {
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Row returns the post as a table row in PostColumns order.
func (p Post) Row() []string {
	return []string{p.PostID, p.UserID, p.Content, p.Timestamp}
}

// PostFromRow builds a Post from a row in PostColumns order.
func PostFromRow(row []string) Post {
	return Post{
		PostID:    row[0],
		UserID:    row[1],
		Content:   row[2],
		Timestamp: row[3],
	}
}

// FeedItem is a post enriched for presentation: the author's username (with an
// "unknown" fallback when the account record is missing), the current like
// count, and whether the requesting user has an active like on it. None of the
// extra fields are persisted; they are computed at read time.
type FeedItem struct {
	Post
	Username  string `json:"username"`
	LikeCount int    `json:"like_count"`
	Liked     bool   `json:"liked"`
}

// UnknownUsername is shown when a post's author record cannot be resolved.
const UnknownUsername = "unknown"
