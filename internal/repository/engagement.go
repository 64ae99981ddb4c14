package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tastebook/internal/model"
)

type engagementRepository struct {
	db *sqlx.DB
}

func NewEngagementRepository(db *sqlx.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) LikeExists(ctx context.Context, recipeID, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM recipe_likes WHERE recipe_id = $1 AND user_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, recipeID, userID)
	if err != nil {
		return false, fmt.Errorf("check like existence: %w", err)
	}
	return exists, nil
}

// InsertLike adds a like edge. ON CONFLICT DO NOTHING collapses a racing
// duplicate insert: inserted=false means the edge already existed, which the
// service treats as "already in target state", not a failure.
func (r *engagementRepository) InsertLike(ctx context.Context, recipeID, userID int64) (bool, error) {
	query := `
		INSERT INTO recipe_likes (recipe_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (recipe_id, user_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, recipeID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// DeleteLike removes a like edge. deleted=false means there was nothing to
// remove (already in target state).
func (r *engagementRepository) DeleteLike(ctx context.Context, recipeID, userID int64) (bool, error) {
	query := `DELETE FROM recipe_likes WHERE recipe_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, recipeID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *engagementRepository) SaveExists(ctx context.Context, recipeID, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM recipe_saves WHERE recipe_id = $1 AND user_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, recipeID, userID)
	if err != nil {
		return false, fmt.Errorf("check save existence: %w", err)
	}
	return exists, nil
}

// InsertSave adds a save edge carrying the optional scheduling extras.
func (r *engagementRepository) InsertSave(ctx context.Context, recipeID, userID int64, opts *model.SaveOptions) (bool, error) {
	query := `
		INSERT INTO recipe_saves (recipe_id, user_id, scheduled_date, custom_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (recipe_id, user_id) DO NOTHING
	`
	var scheduledDate interface{}
	var customName interface{}
	if opts != nil {
		if opts.ScheduledDate != nil {
			scheduledDate = *opts.ScheduledDate
		}
		if opts.CustomName != nil {
			customName = *opts.CustomName
		}
	}

	result, err := r.db.ExecContext(ctx, query, recipeID, userID, scheduledDate, customName)
	if err != nil {
		return false, fmt.Errorf("insert save: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *engagementRepository) DeleteSave(ctx context.Context, recipeID, userID int64) (bool, error) {
	query := `DELETE FROM recipe_saves WHERE recipe_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, recipeID, userID)
	if err != nil {
		return false, fmt.Errorf("delete save: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// CheckLikes checks which recipes the user has liked.
// Returns a map of recipe_id -> liked.
func (r *engagementRepository) CheckLikes(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	return r.checkEdges(ctx, "recipe_likes", userID, recipeIDs)
}

// CheckSaves checks which recipes the user has saved.
// Returns a map of recipe_id -> saved.
func (r *engagementRepository) CheckSaves(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	return r.checkEdges(ctx, "recipe_saves", userID, recipeIDs)
}

func (r *engagementRepository) checkEdges(ctx context.Context, table string, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	if len(recipeIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := fmt.Sprintf(`SELECT recipe_id FROM %s WHERE user_id = $1 AND recipe_id = ANY($2)`, table)
	var presentIDs []int64
	err := r.db.SelectContext(ctx, &presentIDs, query, userID, pq.Array(recipeIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check %s: %w", table, err)
	}

	result := make(map[int64]bool)
	for _, id := range recipeIDs {
		result[id] = false
	}
	for _, id := range presentIDs {
		result[id] = true
	}

	return result, nil
}
