package model

import "errors"

// Category is a browsing bucket for recipes. Read-only from this service's
// perspective: rows are seeded operationally, never mutated by clients.
type Category struct {
	ID          int64   `db:"id" json:"id"`
	Slug        string  `db:"slug" json:"slug"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description"`
	ImageURL    *string `db:"image_url" json:"image_url"`

	// Derived count of recipes in this category, computed at read time.
	RecipeCount int `db:"recipe_count" json:"recipe_count"`
}

var (
	ErrCategoryNotFound = errors.New("category not found")
)
