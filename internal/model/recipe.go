package model

import (
	"errors"
	"time"
)

// Difficulty levels a recipe can declare.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// IsValidDifficulty reports whether d is one of the supported levels.
func IsValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Recipe represents a published recipe with its metadata. Recipes are
// created once by their author and never mutated or deleted afterwards.
type Recipe struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	PrepTime    int       `db:"prep_time" json:"prep_time"` // minutes
	CookTime    int       `db:"cook_time" json:"cook_time"` // minutes
	Servings    int       `db:"servings" json:"servings"`
	Difficulty  string    `db:"difficulty" json:"difficulty"`
	AuthorID    int64     `db:"author_id" json:"author_id"`
	CategoryID  int64     `db:"category_id" json:"category_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// Derived aggregates, always computed as row counts over the edge
	// tables at read time. Zero when no rows exist, never null.
	Likes    int `db:"likes" json:"likes"`
	Saves    int `db:"saves" json:"saves"`
	Comments int `db:"comments" json:"comments"`

	// Joined fields (not in the recipes table)
	Steps   []InstructionStep `json:"instructions,omitempty"`
	Author  *UserSummary      `json:"author,omitempty"`
	IsLiked bool              `json:"is_liked"`
	IsSaved bool              `json:"is_saved"`
}

// InstructionStep is one ordered step of a recipe. Number is 1-based and
// contiguous with array position.
type InstructionStep struct {
	Number      int     `db:"step_number" json:"number"`
	Instruction string  `db:"instruction" json:"instruction"`
	Tip         *string `db:"tip" json:"tip,omitempty"`
}

// RecipeDetail is a recipe enriched for the detail view: full comment list
// (newest-first) plus the author profile.
type RecipeDetail struct {
	Recipe
	CommentList []RecipeComment `json:"comment_list"`
}

// RecipeListResponse is the paginated recipe list response.
type RecipeListResponse struct {
	Recipes    []Recipe `json:"recipes"`
	NextCursor *string  `json:"next_cursor,omitempty"`
	HasMore    bool     `json:"has_more"`
}

// CreateRecipeRequest is the request body for creating a recipe. Numeric
// fields arrive as text and must parse before any store call: a parse
// failure is a validation error, not a store error.
type CreateRecipeRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	ImageURL    string            `json:"image_url"`
	CategoryID  string            `json:"category_id"`
	PrepTime    string            `json:"prep_time"`
	CookTime    string            `json:"cook_time"`
	Servings    string            `json:"servings"`
	Difficulty  string            `json:"difficulty"`
	Steps       []CreateStepInput `json:"instructions"`
}

// CreateStepInput is a single instruction step in a recipe draft.
type CreateStepInput struct {
	Instruction string `json:"instruction"`
	Tip         string `json:"tip"`
}

// Recipe constraints
const (
	MaxRecipeTitleLength = 200
	MaxRecipeSteps       = 50
)

// Recipe errors
var (
	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooLong        = errors.New("title is too long")
	ErrDescriptionRequired = errors.New("description is required")
	ErrImageURLRequired    = errors.New("image_url is required")
	ErrCategoryRequired    = errors.New("category_id is required")
	ErrInvalidCategory     = errors.New("category_id must be a positive integer")
	ErrInvalidDifficulty   = errors.New("difficulty must be Easy, Medium or Hard")
	ErrInvalidPrepTime     = errors.New("prep_time must be a non-negative integer")
	ErrInvalidCookTime     = errors.New("cook_time must be a non-negative integer")
	ErrInvalidServings     = errors.New("servings must be a positive integer")
	ErrStepsRequired       = errors.New("at least one instruction step is required")
	ErrBlankStep           = errors.New("instruction step text is required")
	ErrTooManySteps        = errors.New("too many instruction steps")
)
