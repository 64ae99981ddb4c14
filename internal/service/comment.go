package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"tastebook/internal/model"
	"tastebook/internal/queue"
	"tastebook/internal/realtime"
	"tastebook/internal/repository"
)

const (
	// CommentDefaultLimit is the default number of comments per page
	CommentDefaultLimit = 20

	// CommentMaxLimit is the maximum number of comments per page
	CommentMaxLimit = 100
)

// CommentService handles comment creation, listing and live subscriptions.
type CommentService struct {
	commentRepo repository.CommentRepository
	recipeRepo  repository.RecipeRepository
	publisher   queue.Publisher        // can be nil
	broker      realtime.CommentBroker // can be nil
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	recipeRepo repository.RecipeRepository,
	publisher queue.Publisher,
	broker realtime.CommentBroker,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		recipeRepo:  recipeRepo,
		publisher:   publisher,
		broker:      broker,
	}
}

// AddComment validates and persists a comment, then publishes a
// comment_added event so the worker relays it to live subscribers.
// Content is trimmed; whitespace-only content is rejected before any store
// call.
func (s *CommentService) AddComment(ctx context.Context, recipeID, userID int64, content string) (*model.RecipeComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	exists, err := s.recipeRepo.Exists(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("check recipe: %w", err)
	}
	if !exists {
		return nil, model.ErrRecipeNotFound
	}

	comment, err := s.commentRepo.Create(ctx, recipeID, userID, content)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if s.publisher != nil {
		event := queue.NewCommentAddedEvent(comment.ID, recipeID, userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamRecipes, event); err != nil {
			log.Printf("[CommentService] Failed to publish CommentAdded: comment=%d err=%v", comment.ID, err)
		}
	}

	return comment, nil
}

// ListComments returns paginated comments for a recipe, newest first.
func (s *CommentService) ListComments(ctx context.Context, recipeID int64, cursor *string, limit int) (*model.CommentListResponse, error) {
	if limit <= 0 {
		limit = CommentDefaultLimit
	}
	if limit > CommentMaxLimit {
		limit = CommentMaxLimit
	}

	exists, err := s.recipeRepo.Exists(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("check recipe: %w", err)
	}
	if !exists {
		return nil, model.ErrRecipeNotFound
	}

	comments, nextCursor, err := s.commentRepo.ListByRecipe(ctx, recipeID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &model.CommentListResponse{
		Comments:   comments,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}, nil
}

// Subscribe opens a live comment stream for a recipe. The recipe must exist;
// the caller owns the returned subscription and must Close it.
func (s *CommentService) Subscribe(ctx context.Context, recipeID int64) (*realtime.CommentSubscription, error) {
	if s.broker == nil {
		return nil, fmt.Errorf("live comments not available")
	}

	exists, err := s.recipeRepo.Exists(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("check recipe: %w", err)
	}
	if !exists {
		return nil, model.ErrRecipeNotFound
	}

	return s.broker.Subscribe(ctx, recipeID)
}
