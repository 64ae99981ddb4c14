package service

import (
	"context"
	"errors"
	"time"

	"tastebook/internal/cache"
	"tastebook/internal/model"
	"tastebook/internal/queue"
	"tastebook/internal/realtime"
)

// Function-field mocks for the repository interfaces. Each test sets only the
// functions it needs; unset functions return a safe default.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	existsFn           func(ctx context.Context, id int64) (bool, error)
	searchFn           func(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
	updateProfileFn    func(ctx context.Context, id int64, req model.UpdateProfileRequest) (*model.User, error)

	createCalls int
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, nil
}

func (m *mockUserRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id int64, req model.UpdateProfileRequest) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, req)
	}
	return nil, model.ErrUserNotFound
}

type mockFollowRepository struct {
	insertFn         func(ctx context.Context, followerID, followingID int64) (bool, error)
	deleteFn         func(ctx context.Context, followerID, followingID int64) (bool, error)
	existsFn         func(ctx context.Context, followerID, followingID int64) (bool, error)
	countFollowersFn func(ctx context.Context, userID int64) (int, error)
	countFollowingFn func(ctx context.Context, userID int64) (int, error)
	getFollowersFn   func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	getFollowingFn   func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	checkFollowsFn   func(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error)

	insertCalls int
	deleteCalls int
}

func (m *mockFollowRepository) Insert(ctx context.Context, followerID, followingID int64) (bool, error) {
	m.insertCalls++
	if m.insertFn != nil {
		return m.insertFn(ctx, followerID, followingID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followingID int64) (bool, error) {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followingID)
	}
	return true, nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followingID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followingID)
	}
	return false, nil
}

func (m *mockFollowRepository) CountFollowers(ctx context.Context, userID int64) (int, error) {
	if m.countFollowersFn != nil {
		return m.countFollowersFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepository) CountFollowing(ctx context.Context, userID int64) (int, error) {
	if m.countFollowingFn != nil {
		return m.countFollowingFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, followingIDs)
	}
	return map[int64]bool{}, nil
}

type mockRecipeRepository struct {
	createFn        func(ctx context.Context, recipe *model.Recipe, steps []model.InstructionStep) error
	getByIDFn       func(ctx context.Context, recipeID int64) (*model.Recipe, error)
	getByIDsFn      func(ctx context.Context, recipeIDs []int64) ([]model.Recipe, error)
	listByCategory  func(ctx context.Context, categoryID int64) ([]model.Recipe, error)
	listByAuthorFn  func(ctx context.Context, authorID int64) ([]model.Recipe, error)
	listSavedByFn   func(ctx context.Context, userID int64) ([]model.Recipe, error)
	listLikedByFn   func(ctx context.Context, userID int64) ([]model.Recipe, error)
	latestScoresFn  func(ctx context.Context, limit int) ([]cache.RecipeScore, error)
	countByAuthorFn func(ctx context.Context, authorID int64) (int, error)
	existsFn        func(ctx context.Context, recipeID int64) (bool, error)

	createCalls int
}

func (m *mockRecipeRepository) Create(ctx context.Context, recipe *model.Recipe, steps []model.InstructionStep) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, recipe, steps)
	}
	return nil
}

func (m *mockRecipeRepository) GetByID(ctx context.Context, recipeID int64) (*model.Recipe, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, recipeID)
	}
	return nil, model.ErrRecipeNotFound
}

func (m *mockRecipeRepository) GetByIDs(ctx context.Context, recipeIDs []int64) ([]model.Recipe, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, recipeIDs)
	}
	return nil, nil
}

func (m *mockRecipeRepository) ListByCategory(ctx context.Context, categoryID int64) ([]model.Recipe, error) {
	if m.listByCategory != nil {
		return m.listByCategory(ctx, categoryID)
	}
	return nil, nil
}

func (m *mockRecipeRepository) ListByAuthor(ctx context.Context, authorID int64) ([]model.Recipe, error) {
	if m.listByAuthorFn != nil {
		return m.listByAuthorFn(ctx, authorID)
	}
	return nil, nil
}

func (m *mockRecipeRepository) ListSavedBy(ctx context.Context, userID int64) ([]model.Recipe, error) {
	if m.listSavedByFn != nil {
		return m.listSavedByFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockRecipeRepository) ListLikedBy(ctx context.Context, userID int64) ([]model.Recipe, error) {
	if m.listLikedByFn != nil {
		return m.listLikedByFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockRecipeRepository) LatestScores(ctx context.Context, limit int) ([]cache.RecipeScore, error) {
	if m.latestScoresFn != nil {
		return m.latestScoresFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockRecipeRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	if m.countByAuthorFn != nil {
		return m.countByAuthorFn(ctx, authorID)
	}
	return 0, nil
}

func (m *mockRecipeRepository) Exists(ctx context.Context, recipeID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, recipeID)
	}
	return false, nil
}

type mockEngagementRepository struct {
	likeExistsFn func(ctx context.Context, recipeID, userID int64) (bool, error)
	insertLikeFn func(ctx context.Context, recipeID, userID int64) (bool, error)
	deleteLikeFn func(ctx context.Context, recipeID, userID int64) (bool, error)
	saveExistsFn func(ctx context.Context, recipeID, userID int64) (bool, error)
	insertSaveFn func(ctx context.Context, recipeID, userID int64, opts *model.SaveOptions) (bool, error)
	deleteSaveFn func(ctx context.Context, recipeID, userID int64) (bool, error)
	checkLikesFn func(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error)
	checkSavesFn func(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error)

	insertLikeCalls int
	deleteLikeCalls int
	insertSaveCalls int
	deleteSaveCalls int
}

func (m *mockEngagementRepository) LikeExists(ctx context.Context, recipeID, userID int64) (bool, error) {
	if m.likeExistsFn != nil {
		return m.likeExistsFn(ctx, recipeID, userID)
	}
	return false, nil
}

func (m *mockEngagementRepository) InsertLike(ctx context.Context, recipeID, userID int64) (bool, error) {
	m.insertLikeCalls++
	if m.insertLikeFn != nil {
		return m.insertLikeFn(ctx, recipeID, userID)
	}
	return true, nil
}

func (m *mockEngagementRepository) DeleteLike(ctx context.Context, recipeID, userID int64) (bool, error) {
	m.deleteLikeCalls++
	if m.deleteLikeFn != nil {
		return m.deleteLikeFn(ctx, recipeID, userID)
	}
	return true, nil
}

func (m *mockEngagementRepository) SaveExists(ctx context.Context, recipeID, userID int64) (bool, error) {
	if m.saveExistsFn != nil {
		return m.saveExistsFn(ctx, recipeID, userID)
	}
	return false, nil
}

func (m *mockEngagementRepository) InsertSave(ctx context.Context, recipeID, userID int64, opts *model.SaveOptions) (bool, error) {
	m.insertSaveCalls++
	if m.insertSaveFn != nil {
		return m.insertSaveFn(ctx, recipeID, userID, opts)
	}
	return true, nil
}

func (m *mockEngagementRepository) DeleteSave(ctx context.Context, recipeID, userID int64) (bool, error) {
	m.deleteSaveCalls++
	if m.deleteSaveFn != nil {
		return m.deleteSaveFn(ctx, recipeID, userID)
	}
	return true, nil
}

func (m *mockEngagementRepository) CheckLikes(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, recipeIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockEngagementRepository) CheckSaves(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	if m.checkSavesFn != nil {
		return m.checkSavesFn(ctx, userID, recipeIDs)
	}
	return map[int64]bool{}, nil
}

type mockCategoryRepository struct {
	listFn      func(ctx context.Context) ([]model.Category, error)
	getByIDFn   func(ctx context.Context, id int64) (*model.Category, error)
	getBySlugFn func(ctx context.Context, slug string) (*model.Category, error)
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrCategoryNotFound
}

func (m *mockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, slug)
	}
	return nil, model.ErrCategoryNotFound
}

type mockCommentRepository struct {
	createFn          func(ctx context.Context, recipeID, userID int64, content string) (*model.RecipeComment, error)
	getByIDFn         func(ctx context.Context, commentID int64) (*model.RecipeComment, error)
	listByRecipeFn    func(ctx context.Context, recipeID int64, cursor *string, limit int) ([]model.RecipeComment, *string, error)
	listAllByRecipeFn func(ctx context.Context, recipeID int64) ([]model.RecipeComment, error)

	createCalls int
}

func (m *mockCommentRepository) Create(ctx context.Context, recipeID, userID int64, content string) (*model.RecipeComment, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, recipeID, userID, content)
	}
	return &model.RecipeComment{ID: 1, RecipeID: recipeID, UserID: userID, Content: content}, nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID int64) (*model.RecipeComment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) ListByRecipe(ctx context.Context, recipeID int64, cursor *string, limit int) ([]model.RecipeComment, *string, error) {
	if m.listByRecipeFn != nil {
		return m.listByRecipeFn(ctx, recipeID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockCommentRepository) ListAllByRecipe(ctx context.Context, recipeID int64) ([]model.RecipeComment, error) {
	if m.listAllByRecipeFn != nil {
		return m.listAllByRecipeFn(ctx, recipeID)
	}
	return nil, nil
}

// mockFeedCache is an in-memory FeedCache.
type mockFeedCache struct {
	entries []cache.RecipeScore
	warm    bool
}

func (m *mockFeedCache) AddRecipe(ctx context.Context, recipeID int64, timestamp int64) error {
	m.entries = append(m.entries, cache.RecipeScore{RecipeID: recipeID, Timestamp: timestamp})
	m.warm = true
	return nil
}

func (m *mockFeedCache) GetPage(ctx context.Context, cursorScore *float64, limit int) ([]int64, []float64, error) {
	// entries are kept newest-first by tests
	var ids []int64
	var scores []float64
	for _, e := range m.entries {
		if cursorScore != nil && float64(e.Timestamp) >= *cursorScore {
			continue
		}
		ids = append(ids, e.RecipeID)
		scores = append(scores, float64(e.Timestamp))
		if len(ids) == limit {
			break
		}
	}
	return ids, scores, nil
}

func (m *mockFeedCache) WarmCache(ctx context.Context, recipes []cache.RecipeScore) error {
	m.entries = append([]cache.RecipeScore{}, recipes...)
	m.warm = true
	return nil
}

func (m *mockFeedCache) Size(ctx context.Context) (int64, error) {
	return int64(len(m.entries)), nil
}

func (m *mockFeedCache) Exists(ctx context.Context) (bool, error) {
	return m.warm, nil
}

// stubBroker satisfies realtime.CommentBroker for tests that only need the
// recipe-existence path; Subscribe is never expected to be reached.
type stubBroker struct{}

func (stubBroker) Publish(ctx context.Context, comment *model.RecipeComment) error {
	return nil
}

func (stubBroker) Subscribe(ctx context.Context, recipeID int64) (*realtime.CommentSubscription, error) {
	return nil, errors.New("not implemented")
}

// mockPublisher records published events.
type mockPublisher struct {
	events []queue.RecipeEvent
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.RecipeEvent) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.events = append(m.events, event)
	return "1-0", nil
}
