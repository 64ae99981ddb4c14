package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the recipe stream
const (
	EventRecipeCreated = "recipe_created"
	EventCommentAdded  = "comment_added"
)

// Stream names
const (
	StreamRecipes = "stream:recipes"
)

// Consumer group name for recipe workers
const (
	ConsumerGroupRecipes = "recipe_workers"
)

// RecipeEvent represents an event published to the recipe stream.
// All recipe-related events share this structure.
type RecipeEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	// Recipe event (RecipeCreated)
	RecipeID int64 `json:"recipe_id,omitempty"`
	AuthorID int64 `json:"author_id,omitempty"`

	// Comment event (CommentAdded)
	CommentID int64 `json:"comment_id,omitempty"`
	UserID    int64 `json:"user_id,omitempty"`
}

// NewRecipeCreatedEvent creates an event for when an author publishes a recipe.
// Worker will add the recipe to the latest feed cache.
func NewRecipeCreatedEvent(recipeID, authorID int64) RecipeEvent {
	return RecipeEvent{
		Type:      EventRecipeCreated,
		Timestamp: time.Now().Unix(),
		RecipeID:  recipeID,
		AuthorID:  authorID,
	}
}

// NewCommentAddedEvent creates an event for when a comment lands on a recipe.
// Worker will relay the comment to live subscribers of that recipe.
func NewCommentAddedEvent(commentID, recipeID, userID int64) RecipeEvent {
	return RecipeEvent{
		Type:      EventCommentAdded,
		Timestamp: time.Now().Unix(),
		CommentID: commentID,
		RecipeID:  recipeID,
		UserID:    userID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e RecipeEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseRecipeEvent parses a RecipeEvent from Redis stream message values.
func ParseRecipeEvent(values map[string]interface{}) (RecipeEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return RecipeEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event RecipeEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return RecipeEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
