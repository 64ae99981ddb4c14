package model

import (
	"errors"
	"time"
)

// User represents a profile in the system. The profile shares its identity
// with the auth principal: one row per registered account.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	FullName       *string   `db:"full_name" json:"full_name"`
	AvatarURL      *string   `db:"avatar_url" json:"avatar_url"`
	AvatarKey      *string   `db:"avatar_key" json:"-"`
	Bio            *string   `db:"bio" json:"bio"`
	Website        *string   `db:"website" json:"website"`
	Location       *string   `db:"location" json:"location"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ProfileResponse is a user profile augmented with follow-graph aggregates.
// Followers/Following/RecipeCount are derived row counts computed at read
// time, never denormalized columns, so they stay consistent with the edge
// tables.
type ProfileResponse struct {
	*User
	Followers   int  `json:"followers"`
	Following   int  `json:"following"`
	RecipeCount int  `json:"recipe_count"`
	IsFollowing bool `json:"is_following"`
}

// RegisterRequest represents the data needed to register a new account
type RegisterRequest struct {
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	FullName  string  `json:"full_name"`
	AvatarURL *string `json:"-"`
	AvatarKey *string `json:"-"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries the owner-editable profile fields.
// Nil means "leave unchanged".
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Bio      *string `json:"bio"`
	Website  *string `json:"website"`
	Location *string `json:"location"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to register a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
