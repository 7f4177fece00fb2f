package model

import "time"

type Comment struct {
	ID         string    `json:"id"`
	BlogID     string    `json:"blog_id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	ParentID   *string   `json:"parent_id,omitempty"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
