package model

import "time"

// Like marks a user's reaction to exactly one of a blog or a comment.
type Like struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BlogID    *string   `json:"blog_id,omitempty"`
	CommentID *string   `json:"comment_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
