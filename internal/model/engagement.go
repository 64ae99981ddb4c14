package model

import "time"

// RecipeLike is one row in the like edge table. Presence of the row is the
// only state; at most one row exists per (recipe, user) pair.
type RecipeLike struct {
	RecipeID  int64     `db:"recipe_id" json:"recipe_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RecipeSave is one row in the save edge table. Saves additionally carry
// optional meal-planning metadata.
type RecipeSave struct {
	RecipeID      int64      `db:"recipe_id" json:"recipe_id"`
	UserID        int64      `db:"user_id" json:"user_id"`
	ScheduledDate *time.Time `db:"scheduled_date" json:"scheduled_date,omitempty"`
	CustomName    *string    `db:"custom_name" json:"custom_name,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// SaveOptions are the optional extras carried on a save edge insert.
type SaveOptions struct {
	ScheduledDate *time.Time `json:"scheduled_date"`
	CustomName    *string    `json:"custom_name"`
}
