package repository

import (
	"context"
	"time"

	"tastebook/internal/cache"
	"tastebook/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
	UpdateProfile(ctx context.Context, id int64, req model.UpdateProfileRequest) (*model.User, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type CategoryRepository interface {
	// List returns all categories ordered by title ascending, each with a
	// derived recipe count.
	List(ctx context.Context) ([]model.Category, error)
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
}

type RecipeRepository interface {
	// Create inserts the recipe and its instruction steps in one transaction.
	Create(ctx context.Context, recipe *model.Recipe, steps []model.InstructionStep) error
	GetByID(ctx context.Context, recipeID int64) (*model.Recipe, error)
	// GetByIDs returns recipes with derived counts, preserving input order.
	GetByIDs(ctx context.Context, recipeIDs []int64) ([]model.Recipe, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]model.Recipe, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]model.Recipe, error)
	ListSavedBy(ctx context.Context, userID int64) ([]model.Recipe, error)
	ListLikedBy(ctx context.Context, userID int64) ([]model.Recipe, error)
	// LatestScores returns the newest recipe IDs with creation timestamps,
	// used for warming the feed cache.
	LatestScores(ctx context.Context, limit int) ([]cache.RecipeScore, error)
	CountByAuthor(ctx context.Context, authorID int64) (int, error)
	Exists(ctx context.Context, recipeID int64) (bool, error)
}

// EngagementRepository manages the like and save edge tables. Inserts use
// ON CONFLICT DO NOTHING so a concurrent duplicate collapses to "already in
// target state" instead of surfacing a constraint failure.
type EngagementRepository interface {
	LikeExists(ctx context.Context, recipeID, userID int64) (bool, error)
	InsertLike(ctx context.Context, recipeID, userID int64) (inserted bool, err error)
	DeleteLike(ctx context.Context, recipeID, userID int64) (deleted bool, err error)

	SaveExists(ctx context.Context, recipeID, userID int64) (bool, error)
	InsertSave(ctx context.Context, recipeID, userID int64, opts *model.SaveOptions) (inserted bool, err error)
	DeleteSave(ctx context.Context, recipeID, userID int64) (deleted bool, err error)

	// CheckLikes / CheckSaves batch-check edges for a set of recipes,
	// returning recipe_id -> present. One query via ANY($1), not N+1.
	CheckLikes(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error)
	CheckSaves(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error)
}

type FollowRepository interface {
	Insert(ctx context.Context, followerID, followingID int64) (inserted bool, err error)
	Delete(ctx context.Context, followerID, followingID int64) (deleted bool, err error)
	Exists(ctx context.Context, followerID, followingID int64) (bool, error)
	CountFollowers(ctx context.Context, userID int64) (int, error)
	CountFollowing(ctx context.Context, userID int64) (int, error)
	GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error)
	CheckFollows(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, recipeID, userID int64, content string) (*model.RecipeComment, error)
	GetByID(ctx context.Context, commentID int64) (*model.RecipeComment, error)
	// ListByRecipe returns comments newest-first with cursor pagination.
	ListByRecipe(ctx context.Context, recipeID int64, cursor *string, limit int) ([]model.RecipeComment, *string, error)
	// ListAllByRecipe returns the full comment list newest-first (detail view).
	ListAllByRecipe(ctx context.Context, recipeID int64) ([]model.RecipeComment, error)
}
