package model

import (
	"errors"
	"time"
)

// RecipeComment represents a comment on a recipe. Append-only; comments are
// never edited or deleted in this service.
type RecipeComment struct {
	ID        int64        `db:"id" json:"id"`
	RecipeID  int64        `db:"recipe_id" json:"recipe_id"`
	UserID    int64        `db:"user_id" json:"-"`
	Content   string       `db:"content" json:"content"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"` // Joined field
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CommentListResponse is the paginated comment list response, newest-first.
type CommentListResponse struct {
	Comments   []RecipeComment `json:"comments"`
	NextCursor *string         `json:"next_cursor,omitempty"`
	HasMore    bool            `json:"has_more"`
}

// Comment constraints
const (
	MaxCommentLength = 2200
)

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrContentRequired = errors.New("comment content is required")
	ErrContentTooLong  = errors.New("comment content too long")
)
