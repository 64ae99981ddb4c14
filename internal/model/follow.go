package model

import (
	"errors"
	"time"
)

// Follow is a single edge in the follow graph. Existence of the row is the
// only state: there is no pending status.
type Follow struct {
	FollowerID  int64     `db:"follower_id" json:"follower_id"`
	FollowingID int64     `db:"following_id" json:"following_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type UserSummary struct {
	ID          int64   `db:"id" json:"id"`
	Username    string  `db:"username" json:"username"`
	FullName    *string `db:"full_name" json:"full_name"`
	AvatarURL   *string `db:"avatar_url" json:"avatar_url"`
	IsFollowing bool    `json:"is_following"`
}

type FollowListResponse struct {
	Users      []UserSummary `json:"users"`
	NextCursor *string       `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

// ToggleResponse reports the resulting presence state of a toggle mutation:
// true means the edge now exists, false means it was removed.
type ToggleResponse struct {
	Active bool `json:"active"`
}

var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
