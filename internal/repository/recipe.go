package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tastebook/internal/cache"
	"tastebook/internal/model"
)

type recipeRepository struct {
	db *sqlx.DB
}

func NewRecipeRepository(db *sqlx.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// recipeColumns is the shared projection for recipe reads. The three
// aggregates are derived row counts over the edge tables at read time;
// COUNT never returns NULL, so recipes with no engagement report 0.
const recipeColumns = `
	r.id, r.title, r.description, r.image_url, r.prep_time, r.cook_time,
	r.servings, r.difficulty, r.author_id, r.category_id, r.created_at,
	(SELECT COUNT(*) FROM recipe_likes rl WHERE rl.recipe_id = r.id)    AS likes,
	(SELECT COUNT(*) FROM recipe_saves rs WHERE rs.recipe_id = r.id)    AS saves,
	(SELECT COUNT(*) FROM recipe_comments rc WHERE rc.recipe_id = r.id) AS comments
`

// Create inserts a recipe and its instruction steps in one transaction.
// Steps are stored with their dense 1..N numbering; the service validates
// and renumbers before calling.
func (r *recipeRepository) Create(ctx context.Context, recipe *model.Recipe, steps []model.InstructionStep) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO recipes (title, description, image_url, prep_time, cook_time,
		                     servings, difficulty, author_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err = tx.QueryRowxContext(ctx, query,
		recipe.Title,
		recipe.Description,
		recipe.ImageURL,
		recipe.PrepTime,
		recipe.CookTime,
		recipe.Servings,
		recipe.Difficulty,
		recipe.AuthorID,
		recipe.CategoryID,
	).Scan(&recipe.ID, &recipe.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}

	stepQuery := `
		INSERT INTO recipe_steps (recipe_id, step_number, instruction, tip)
		VALUES ($1, $2, $3, $4)
	`
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, stepQuery, recipe.ID, step.Number, step.Instruction, step.Tip); err != nil {
			return fmt.Errorf("insert step %d: %w", step.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	recipe.Steps = steps
	return nil
}

// GetByID retrieves a single recipe with its instruction steps and counts.
func (r *recipeRepository) GetByID(ctx context.Context, recipeID int64) (*model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.id = $1`

	var recipe model.Recipe
	err := r.db.GetContext(ctx, &recipe, query, recipeID)
	if err == sql.ErrNoRows {
		return nil, model.ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	stepMap, err := r.getSteps(ctx, []int64{recipeID})
	if err != nil {
		return nil, err
	}
	recipe.Steps = stepMap[recipeID]

	return &recipe, nil
}

// GetByIDs retrieves multiple recipes with steps and counts.
// Used for hydrating the feed from the cache; preserves input order.
func (r *recipeRepository) GetByIDs(ctx context.Context, recipeIDs []int64) ([]model.Recipe, error) {
	if len(recipeIDs) == 0 {
		return []model.Recipe{}, nil
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.id = ANY($1)`

	var recipes []model.Recipe
	err := r.db.SelectContext(ctx, &recipes, query, pq.Array(recipeIDs))
	if err != nil {
		return nil, fmt.Errorf("get recipes by ids: %w", err)
	}

	stepMap, err := r.getSteps(ctx, recipeIDs)
	if err != nil {
		return nil, err
	}
	for i := range recipes {
		recipes[i].Steps = stepMap[recipes[i].ID]
	}

	// Re-order to match input order (important for feed ordering)
	byID := make(map[int64]model.Recipe, len(recipes))
	for _, rec := range recipes {
		byID[rec.ID] = rec
	}
	ordered := make([]model.Recipe, 0, len(recipeIDs))
	for _, id := range recipeIDs {
		if rec, ok := byID[id]; ok {
			ordered = append(ordered, rec)
		}
	}

	return ordered, nil
}

// ListByCategory returns the recipes in a category with derived counts.
func (r *recipeRepository) ListByCategory(ctx context.Context, categoryID int64) ([]model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.category_id = $1`

	var recipes []model.Recipe
	err := r.db.SelectContext(ctx, &recipes, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list recipes by category: %w", err)
	}

	return recipes, nil
}

func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID int64) ([]model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.author_id = $1 ORDER BY r.created_at DESC`

	var recipes []model.Recipe
	err := r.db.SelectContext(ctx, &recipes, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("list recipes by author: %w", err)
	}

	return recipes, nil
}

// ListSavedBy returns the recipes a user has saved, most recently saved first.
func (r *recipeRepository) ListSavedBy(ctx context.Context, userID int64) ([]model.Recipe, error) {
	query := `SELECT ` + recipeColumns + `
		FROM recipe_saves s
		JOIN recipes r ON r.id = s.recipe_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`

	var recipes []model.Recipe
	err := r.db.SelectContext(ctx, &recipes, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved recipes: %w", err)
	}

	return recipes, nil
}

// ListLikedBy returns the recipes a user has liked, most recently liked first.
func (r *recipeRepository) ListLikedBy(ctx context.Context, userID int64) ([]model.Recipe, error) {
	query := `SELECT ` + recipeColumns + `
		FROM recipe_likes l
		JOIN recipes r ON r.id = l.recipe_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC`

	var recipes []model.Recipe
	err := r.db.SelectContext(ctx, &recipes, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list liked recipes: %w", err)
	}

	return recipes, nil
}

// LatestScores returns the newest recipe IDs with their creation timestamps,
// newest first. Used for warming the feed cache.
func (r *recipeRepository) LatestScores(ctx context.Context, limit int) ([]cache.RecipeScore, error) {
	query := `
		SELECT id, EXTRACT(EPOCH FROM created_at)::bigint AS timestamp
		FROM recipes
		ORDER BY created_at DESC
		LIMIT $1
	`
	type row struct {
		ID        int64 `db:"id"`
		Timestamp int64 `db:"timestamp"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get latest recipe ids: %w", err)
	}

	scores := make([]cache.RecipeScore, len(rows))
	for i, rw := range rows {
		scores[i] = cache.RecipeScore{RecipeID: rw.ID, Timestamp: rw.Timestamp}
	}
	return scores, nil
}

func (r *recipeRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM recipes WHERE author_id = $1`, authorID)
	if err != nil {
		return 0, fmt.Errorf("count recipes by author: %w", err)
	}
	return count, nil
}

// Exists checks if a recipe exists.
func (r *recipeRepository) Exists(ctx context.Context, recipeID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM recipes WHERE id = $1)`, recipeID)
	if err != nil {
		return false, fmt.Errorf("check recipe exists: %w", err)
	}
	return exists, nil
}

// Helper: fetch instruction steps for multiple recipes in one query
func (r *recipeRepository) getSteps(ctx context.Context, recipeIDs []int64) (map[int64][]model.InstructionStep, error) {
	if len(recipeIDs) == 0 {
		return map[int64][]model.InstructionStep{}, nil
	}

	query := `
		SELECT recipe_id, step_number, instruction, tip
		FROM recipe_steps
		WHERE recipe_id = ANY($1)
		ORDER BY recipe_id, step_number
	`
	type stepRow struct {
		RecipeID int64 `db:"recipe_id"`
		model.InstructionStep
	}
	var rows []stepRow
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(recipeIDs))
	if err != nil {
		return nil, fmt.Errorf("get recipe steps: %w", err)
	}

	result := make(map[int64][]model.InstructionStep)
	for _, row := range rows {
		result[row.RecipeID] = append(result[row.RecipeID], row.InstructionStep)
	}
	return result, nil
}

// Helper: parse compound cursor "id:timestamp" (unified format)
func parseCursor(cursor string) (time.Time, int64, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid cursor format")
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, 0, err
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, 0, err
	}
	return time.Unix(ts, 0), id, nil
}

// Helper: format compound cursor "id:timestamp" (unified format)
func formatCursor(t time.Time, id int64) string {
	return fmt.Sprintf("%d:%d", id, t.Unix())
}
