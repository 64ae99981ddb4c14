package service

import (
	"context"

	"tastebook/internal/model"
	"tastebook/internal/repository"
)

// CatalogService serves the category list and per-category recipe listings.
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	recipeRepo   repository.RecipeRepository
	userRepo     repository.UserRepository
	engagement   repository.EngagementRepository
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	recipeRepo repository.RecipeRepository,
	userRepo repository.UserRepository,
	engagement repository.EngagementRepository,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		recipeRepo:   recipeRepo,
		userRepo:     userRepo,
		engagement:   engagement,
	}
}

// ListCategories returns all categories ordered by title, each carrying its
// derived recipe count.
func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.List(ctx)
}

// GetCategory resolves a category by slug.
func (s *CatalogService) GetCategory(ctx context.Context, slug string) (*model.Category, error) {
	return s.categoryRepo.GetBySlug(ctx, slug)
}

// ListRecipesByCategory returns the recipes in a category, enriched with
// authors and the viewer's like/save flags. The category is resolved first so
// an unknown slug fails with not-found instead of an empty list.
func (s *CatalogService) ListRecipesByCategory(ctx context.Context, slug string, viewerID *int64) ([]model.Recipe, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	recipes, err := s.recipeRepo.ListByCategory(ctx, category.ID)
	if err != nil {
		return nil, err
	}

	attachAuthors(ctx, s.userRepo, recipes)
	if viewerID != nil {
		enrichViewerFlags(ctx, s.engagement, *viewerID, recipes)
	}

	return recipes, nil
}
