package models

// LikeColumns is the on-disk column order of the likes table.
var LikeColumns = []string{"like_id", "user_id", "post_id", "timestamp"}

// Like records that a user currently likes a post. At most one row exists per
// (user_id, post_id) pair; toggling removes the row instead of duplicating it.
type Like struct {
	LikeID    string `json:"like_id"`
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id"`
	Timestamp string `json:"timestamp"`
}

// Row returns the like as a table row in LikeColumns order.
func (l Like) Row() []string {
	return []string{l.LikeID, l.UserID, l.PostID, l.Timestamp}
}

// LikeFromRow builds a Like from a row in LikeColumns order.
func LikeFromRow(row []string) Like {
	return Like{
		LikeID:    row[0],
		UserID:    row[1],
		PostID:    row[2],
		Timestamp: row[3],
	}
}
