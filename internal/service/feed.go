package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"tastebook/internal/cache"
	"tastebook/internal/model"
	"tastebook/internal/repository"
)

const (
	// FeedDefaultLimit is the default number of recipes per page
	FeedDefaultLimit = 10

	// FeedMaxLimit is the maximum number of recipes per page
	FeedMaxLimit = 50

	// CacheWarmLimit is max recipes to fetch when warming the cache
	CacheWarmLimit = 500
)

// FeedService serves the latest-recipes feed backed by the Redis cache.
type FeedService struct {
	feedCache  cache.FeedCache
	recipeRepo repository.RecipeRepository
	userRepo   repository.UserRepository
	engagement repository.EngagementRepository
}

func NewFeedService(
	feedCache cache.FeedCache,
	recipeRepo repository.RecipeRepository,
	userRepo repository.UserRepository,
	engagement repository.EngagementRepository,
) *FeedService {
	return &FeedService{
		feedCache:  feedCache,
		recipeRepo: recipeRepo,
		userRepo:   userRepo,
		engagement: engagement,
	}
}

// ListRecipes retrieves the latest recipes with cursor-based pagination.
//
// Flow:
// 1. Check if the feed cache exists
// 2. If not, warm it from the DB (newest recipes up to the cap)
// 3. Page recipe IDs out of the cache (using cursor if provided)
// 4. Hydrate: fetch full recipes from DB, enrich with author and viewer flags
// 5. Build next cursor from the last entry
func (s *FeedService) ListRecipes(ctx context.Context, viewerID *int64, cursor *string, limit int) (*model.RecipeListResponse, error) {
	startTime := time.Now()

	if limit <= 0 {
		limit = FeedDefaultLimit
	}
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}

	exists, err := s.feedCache.Exists(ctx)
	if err != nil {
		log.Printf("[FeedService] Cache check failed: %v", err)
	}

	if !exists {
		log.Printf("[FeedService] Cache miss, warming...")
		if err := s.warmCache(ctx); err != nil {
			log.Printf("[FeedService] Cache warm failed: %v", err)
		}
	}

	var cursorScore *float64
	if cursor != nil {
		score, _, err := parseFeedCursor(*cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		cursorScore = &score
	}

	recipeIDs, scores, err := s.feedCache.GetPage(ctx, cursorScore, limit)
	if err != nil {
		return nil, fmt.Errorf("get feed from cache: %w", err)
	}

	if len(recipeIDs) == 0 {
		return &model.RecipeListResponse{Recipes: []model.Recipe{}}, nil
	}

	recipes, err := s.hydrateRecipes(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("hydrate recipes: %w", err)
	}

	// hasMore and the cursor come from the cache page, not the hydrated
	// rows: a stale cache entry missing from the DB shortens the page but
	// must not hide the older entries behind it.
	var nextCursor *string
	hasMore := len(recipeIDs) == limit
	if hasMore {
		c := formatFeedCursor(scores[len(scores)-1], recipeIDs[len(recipeIDs)-1])
		nextCursor = &c
	}

	log.Printf("[FeedService] ListRecipes OK: recipes=%d hasMore=%v duration=%v",
		len(recipes), hasMore, time.Since(startTime))

	return &model.RecipeListResponse{
		Recipes:    recipes,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// warmCache populates the feed cache with the newest recipes.
func (s *FeedService) warmCache(ctx context.Context) error {
	scores, err := s.recipeRepo.LatestScores(ctx, CacheWarmLimit)
	if err != nil {
		return fmt.Errorf("get latest recipes: %w", err)
	}

	if len(scores) == 0 {
		log.Printf("[FeedService] No recipes to warm")
		return nil
	}

	if err := s.feedCache.WarmCache(ctx, scores); err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedService] Cache warmed: recipes=%d", len(scores))
	return nil
}

// hydrateRecipes fetches full recipes and enriches them with author info and
// the viewer's like/save flags.
func (s *FeedService) hydrateRecipes(ctx context.Context, viewerID *int64, recipeIDs []int64) ([]model.Recipe, error) {
	recipes, err := s.recipeRepo.GetByIDs(ctx, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("get recipes by ids: %w", err)
	}

	attachAuthors(ctx, s.userRepo, recipes)

	if viewerID != nil {
		enrichViewerFlags(ctx, s.engagement, *viewerID, recipes)
	}

	return recipes, nil
}

// attachAuthors fetches author summaries for each distinct author and sets
// them on the recipes. A failed author lookup leaves that recipe's author
// nil rather than failing the list.
func attachAuthors(ctx context.Context, userRepo repository.UserRepository, recipes []model.Recipe) {
	authorIDSet := make(map[int64]struct{})
	for _, rec := range recipes {
		authorIDSet[rec.AuthorID] = struct{}{}
	}

	authors := make(map[int64]*model.UserSummary, len(authorIDSet))
	for authorID := range authorIDSet {
		user, err := userRepo.GetByID(ctx, authorID)
		if err != nil {
			log.Printf("[FeedService] Failed to get author %d: %v", authorID, err)
			continue
		}
		authors[authorID] = &model.UserSummary{
			ID:        user.ID,
			Username:  user.Username,
			FullName:  user.FullName,
			AvatarURL: user.AvatarURL,
		}
	}

	for i := range recipes {
		recipes[i].Author = authors[recipes[i].AuthorID]
	}
}

// enrichViewerFlags batch-checks the viewer's likes and saves over the listed
// recipes. Two queries total via ANY($1), not N+1. A failed check leaves the
// flags false rather than failing the list.
func enrichViewerFlags(ctx context.Context, engagement repository.EngagementRepository, viewerID int64, recipes []model.Recipe) {
	if len(recipes) == 0 {
		return
	}

	recipeIDs := make([]int64, len(recipes))
	for i, rec := range recipes {
		recipeIDs[i] = rec.ID
	}

	likeStatus, err := engagement.CheckLikes(ctx, viewerID, recipeIDs)
	if err != nil {
		log.Printf("[FeedService] Failed to check likes: %v", err)
	}
	saveStatus, err := engagement.CheckSaves(ctx, viewerID, recipeIDs)
	if err != nil {
		log.Printf("[FeedService] Failed to check saves: %v", err)
	}

	for i := range recipes {
		if likeStatus != nil {
			recipes[i].IsLiked = likeStatus[recipes[i].ID]
		}
		if saveStatus != nil {
			recipes[i].IsSaved = saveStatus[recipes[i].ID]
		}
	}
}

// parseFeedCursor parses "id:timestamp" format cursor.
// Returns the timestamp (as score) and recipe ID.
func parseFeedCursor(cursor string) (float64, int64, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid cursor format, expected id:timestamp")
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid recipe id in cursor: %w", err)
	}

	score, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid timestamp in cursor: %w", err)
	}

	return score, id, nil
}

// formatFeedCursor creates "id:timestamp" format cursor.
func formatFeedCursor(score float64, id int64) string {
	return fmt.Sprintf("%d:%.0f", id, score)
}
