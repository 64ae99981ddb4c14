package service

import (
	"context"
	"fmt"
	"log"

	"tastebook/internal/model"
	"tastebook/internal/repository"
)

// EngagementService implements the toggle mutations: like, save and follow.
// Each toggle reads the current presence of the edge and flips it, returning
// the resulting state. The insert side uses ON CONFLICT DO NOTHING, so a
// concurrent duplicate collapses to "already in the target state" instead of
// surfacing a constraint error.
type EngagementService struct {
	engagementRepo repository.EngagementRepository
	followRepo     repository.FollowRepository
	recipeRepo     repository.RecipeRepository
	userRepo       repository.UserRepository
}

func NewEngagementService(
	engagementRepo repository.EngagementRepository,
	followRepo repository.FollowRepository,
	recipeRepo repository.RecipeRepository,
	userRepo repository.UserRepository,
) *EngagementService {
	return &EngagementService{
		engagementRepo: engagementRepo,
		followRepo:     followRepo,
		recipeRepo:     recipeRepo,
		userRepo:       userRepo,
	}
}

// ToggleLike flips the viewer's like on a recipe and returns the new state:
// Active=true means the recipe is now liked.
func (s *EngagementService) ToggleLike(ctx context.Context, recipeID, userID int64) (*model.ToggleResponse, error) {
	exists, err := s.recipeRepo.Exists(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("check recipe: %w", err)
	}
	if !exists {
		return nil, model.ErrRecipeNotFound
	}

	liked, err := s.engagementRepo.LikeExists(ctx, recipeID, userID)
	if err != nil {
		return nil, fmt.Errorf("check like: %w", err)
	}

	if liked {
		if _, err := s.engagementRepo.DeleteLike(ctx, recipeID, userID); err != nil {
			return nil, fmt.Errorf("remove like: %w", err)
		}
		return &model.ToggleResponse{Active: false}, nil
	}

	if _, err := s.engagementRepo.InsertLike(ctx, recipeID, userID); err != nil {
		return nil, fmt.Errorf("add like: %w", err)
	}
	return &model.ToggleResponse{Active: true}, nil
}

// ToggleSave flips the viewer's save on a recipe. When creating the save,
// opts may carry a scheduled date and a custom name; both are ignored when
// the toggle removes an existing save.
func (s *EngagementService) ToggleSave(ctx context.Context, recipeID, userID int64, opts *model.SaveOptions) (*model.ToggleResponse, error) {
	exists, err := s.recipeRepo.Exists(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("check recipe: %w", err)
	}
	if !exists {
		return nil, model.ErrRecipeNotFound
	}

	saved, err := s.engagementRepo.SaveExists(ctx, recipeID, userID)
	if err != nil {
		return nil, fmt.Errorf("check save: %w", err)
	}

	if saved {
		if _, err := s.engagementRepo.DeleteSave(ctx, recipeID, userID); err != nil {
			return nil, fmt.Errorf("remove save: %w", err)
		}
		return &model.ToggleResponse{Active: false}, nil
	}

	if _, err := s.engagementRepo.InsertSave(ctx, recipeID, userID, opts); err != nil {
		return nil, fmt.Errorf("add save: %w", err)
	}
	return &model.ToggleResponse{Active: true}, nil
}

// ToggleFollow flips the viewer's follow edge toward another user.
// Self-follow is rejected before any store call.
func (s *EngagementService) ToggleFollow(ctx context.Context, followerID, followingID int64) (*model.ToggleResponse, error) {
	if followerID == followingID {
		return nil, model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, followingID); err != nil {
		return nil, err
	}

	following, err := s.followRepo.Exists(ctx, followerID, followingID)
	if err != nil {
		return nil, fmt.Errorf("check follow: %w", err)
	}

	if following {
		if _, err := s.followRepo.Delete(ctx, followerID, followingID); err != nil {
			return nil, fmt.Errorf("remove follow: %w", err)
		}
		log.Printf("[Engagement] Unfollow: follower=%d following=%d", followerID, followingID)
		return &model.ToggleResponse{Active: false}, nil
	}

	if _, err := s.followRepo.Insert(ctx, followerID, followingID); err != nil {
		return nil, fmt.Errorf("add follow: %w", err)
	}
	log.Printf("[Engagement] Follow: follower=%d following=%d", followerID, followingID)
	return &model.ToggleResponse{Active: true}, nil
}
