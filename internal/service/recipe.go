package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"tastebook/internal/cache"
	"tastebook/internal/model"
	"tastebook/internal/queue"
	"tastebook/internal/repository"
)

// RecipeService handles recipe detail reads and recipe creation.
type RecipeService struct {
	recipeRepo   repository.RecipeRepository
	commentRepo  repository.CommentRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	engagement   repository.EngagementRepository
	publisher    queue.Publisher // can be nil
	feedCache    cache.FeedCache // can be nil
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	engagement repository.EngagementRepository,
	publisher queue.Publisher,
	feedCache cache.FeedCache,
) *RecipeService {
	return &RecipeService{
		recipeRepo:   recipeRepo,
		commentRepo:  commentRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		engagement:   engagement,
		publisher:    publisher,
		feedCache:    feedCache,
	}
}

// GetRecipe assembles the detail view: the recipe with its steps, derived
// counts, author summary, the viewer's like/save flags and the full comment
// list newest first.
func (s *RecipeService) GetRecipe(ctx context.Context, recipeID int64, viewerID *int64) (*model.RecipeDetail, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	recipes := []model.Recipe{*recipe}
	attachAuthors(ctx, s.userRepo, recipes)
	if viewerID != nil {
		enrichViewerFlags(ctx, s.engagement, *viewerID, recipes)
	}

	comments, err := s.commentRepo.ListAllByRecipe(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	return &model.RecipeDetail{
		Recipe:      recipes[0],
		CommentList: comments,
	}, nil
}

// ListByAuthor returns a user's published recipes, newest first.
func (s *RecipeService) ListByAuthor(ctx context.Context, authorID int64, viewerID *int64) ([]model.Recipe, error) {
	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		return nil, err
	}

	recipes, err := s.recipeRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	attachAuthors(ctx, s.userRepo, recipes)
	if viewerID != nil {
		enrichViewerFlags(ctx, s.engagement, *viewerID, recipes)
	}
	return recipes, nil
}

// ListSaved returns the viewer's saved recipes, most recently saved first.
func (s *RecipeService) ListSaved(ctx context.Context, userID int64) ([]model.Recipe, error) {
	recipes, err := s.recipeRepo.ListSavedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	attachAuthors(ctx, s.userRepo, recipes)
	enrichViewerFlags(ctx, s.engagement, userID, recipes)
	return recipes, nil
}

// ListLiked returns the viewer's liked recipes, most recently liked first.
func (s *RecipeService) ListLiked(ctx context.Context, userID int64) ([]model.Recipe, error) {
	recipes, err := s.recipeRepo.ListLikedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	attachAuthors(ctx, s.userRepo, recipes)
	enrichViewerFlags(ctx, s.engagement, userID, recipes)
	return recipes, nil
}

// CreateRecipe validates a recipe draft and stores it. Numeric fields arrive
// as text and must parse before any store call; a parse failure is a
// validation error. Steps are renumbered densely 1..N in array order,
// whatever numbering the client sent.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID int64, req *model.CreateRecipeRequest) (*model.Recipe, error) {
	recipe, steps, err := s.validateDraft(ctx, req)
	if err != nil {
		return nil, err
	}
	recipe.AuthorID = authorID

	if err := s.recipeRepo.Create(ctx, recipe, steps); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	// Publish after the DB commit so the worker never sees a recipe that
	// doesn't exist yet.
	if s.publisher != nil {
		event := queue.NewRecipeCreatedEvent(recipe.ID, authorID)
		if _, err := s.publisher.Publish(ctx, queue.StreamRecipes, event); err != nil {
			log.Printf("[RecipeService] Failed to publish RecipeCreated: recipe=%d err=%v", recipe.ID, err)
			// Without the worker the recipe would stay out of the cached
			// feed until the TTL expires, so add it directly.
			if s.feedCache != nil {
				if cacheErr := s.feedCache.AddRecipe(ctx, recipe.ID, event.Timestamp); cacheErr != nil {
					log.Printf("[RecipeService] Failed to add recipe %d to feed cache: %v", recipe.ID, cacheErr)
				}
			}
		}
	}

	return recipe, nil
}

// validateDraft checks every field of the draft and converts it into a
// storable recipe plus its renumbered steps.
func (s *RecipeService) validateDraft(ctx context.Context, req *model.CreateRecipeRequest) (*model.Recipe, []model.InstructionStep, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, nil, model.ErrTitleRequired
	}
	if len(title) > model.MaxRecipeTitleLength {
		return nil, nil, model.ErrTitleTooLong
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, nil, model.ErrDescriptionRequired
	}

	if strings.TrimSpace(req.ImageURL) == "" {
		return nil, nil, model.ErrImageURLRequired
	}

	if !model.IsValidDifficulty(req.Difficulty) {
		return nil, nil, model.ErrInvalidDifficulty
	}

	if strings.TrimSpace(req.CategoryID) == "" {
		return nil, nil, model.ErrCategoryRequired
	}
	categoryID, err := strconv.ParseInt(strings.TrimSpace(req.CategoryID), 10, 64)
	if err != nil || categoryID <= 0 {
		return nil, nil, model.ErrInvalidCategory
	}

	prepTime, err := parseNonNegative(req.PrepTime)
	if err != nil {
		return nil, nil, model.ErrInvalidPrepTime
	}

	cookTime, err := parseNonNegative(req.CookTime)
	if err != nil {
		return nil, nil, model.ErrInvalidCookTime
	}

	servings, err := parseNonNegative(req.Servings)
	if err != nil || servings == 0 {
		return nil, nil, model.ErrInvalidServings
	}

	if len(req.Steps) == 0 {
		return nil, nil, model.ErrStepsRequired
	}
	if len(req.Steps) > model.MaxRecipeSteps {
		return nil, nil, model.ErrTooManySteps
	}

	steps := make([]model.InstructionStep, len(req.Steps))
	for i, in := range req.Steps {
		instruction := strings.TrimSpace(in.Instruction)
		if instruction == "" {
			return nil, nil, model.ErrBlankStep
		}
		step := model.InstructionStep{
			Number:      i + 1,
			Instruction: instruction,
		}
		if tip := strings.TrimSpace(in.Tip); tip != "" {
			step.Tip = &tip
		}
		steps[i] = step
	}

	// Validation passed; confirm the category exists before storing.
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		return nil, nil, err
	}

	recipe := &model.Recipe{
		Title:       title,
		Description: description,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		PrepTime:    prepTime,
		CookTime:    cookTime,
		Servings:    servings,
		Difficulty:  req.Difficulty,
		CategoryID:  categoryID,
	}
	return recipe, steps, nil
}

// parseNonNegative parses a text numeric field into a non-negative int.
func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value")
	}
	return n, nil
}
