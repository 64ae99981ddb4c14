package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"tastebook/internal/cache"
	"tastebook/internal/model"
	"tastebook/internal/queue"
)

// CommentProvider fetches persisted comments for relay to live subscribers.
// Abstracts the repository layer so the worker doesn't depend on the DB
// package directly.
type CommentProvider interface {
	GetByID(ctx context.Context, commentID int64) (*model.RecipeComment, error)
}

// CommentRelay broadcasts a comment to live subscribers of its recipe.
type CommentRelay interface {
	Publish(ctx context.Context, comment *model.RecipeComment) error
}

// Handler processes recipe events from the queue.
type Handler struct {
	feedCache cache.FeedCache
	comments  CommentProvider
	relay     CommentRelay // can be nil if live comments not wired
}

// NewHandler creates a new event handler.
func NewHandler(feedCache cache.FeedCache, comments CommentProvider) *Handler {
	return &Handler{
		feedCache: feedCache,
		comments:  comments,
	}
}

// SetCommentRelay sets the live comment relay (optional).
func (h *Handler) SetCommentRelay(relay CommentRelay) {
	h.relay = relay
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.RecipeEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventRecipeCreated:
		err = h.handleRecipeCreated(ctx, event)
	case queue.EventCommentAdded:
		err = h.handleCommentAdded(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handleRecipeCreated adds a new recipe to the latest feed cache.
func (h *Handler) handleRecipeCreated(ctx context.Context, event queue.RecipeEvent) error {
	log.Printf("[Worker] RecipeCreated: recipe=%d author=%d", event.RecipeID, event.AuthorID)

	if err := h.feedCache.AddRecipe(ctx, event.RecipeID, event.Timestamp); err != nil {
		return fmt.Errorf("add recipe to feed cache: %w", err)
	}
	return nil
}

// handleCommentAdded relays a freshly persisted comment to live subscribers
// watching its recipe.
func (h *Handler) handleCommentAdded(ctx context.Context, event queue.RecipeEvent) error {
	log.Printf("[Worker] CommentAdded: comment=%d recipe=%d user=%d",
		event.CommentID, event.RecipeID, event.UserID)

	if h.relay == nil {
		log.Printf("[Worker] CommentAdded: relay not set, skipping")
		return nil
	}

	comment, err := h.comments.GetByID(ctx, event.CommentID)
	if err != nil {
		return fmt.Errorf("load comment: %w", err)
	}

	if err := h.relay.Publish(ctx, comment); err != nil {
		return fmt.Errorf("relay comment: %w", err)
	}
	return nil
}
