package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tastebook/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Insert adds a follow edge. ON CONFLICT DO NOTHING collapses duplicate
// inserts from racing toggles; inserted=false means the edge already existed.
func (r *followRepository) Insert(ctx context.Context, followerID, followingID int64) (bool, error) {
	query := `
		INSERT INTO follows (follower_id, following_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, following_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("failed to create follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Delete removes a follow edge. deleted=false means there was no edge.
func (r *followRepository) Delete(ctx context.Context, followerID, followingID int64) (bool, error) {
	query := `DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`
	result, err := r.db.ExecContext(ctx, query, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

// CountFollowers returns the number of follow edges pointing at the user.
// Always a row count over the edge table, never a stored counter.
func (r *followRepository) CountFollowers(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE following_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

// CountFollowing returns the number of users this user follows.
func (r *followRepository) CountFollowing(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return count, nil
}

// GetFollowers retrieves users who follow the specified user with cursor
// pagination: cursor == nil starts from the newest edge, otherwise edges
// created before the cursor timestamp. Fetches limit+1 to detect more.
func (r *followRepository) GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT u.id, u.username, u.full_name, u.avatar_url, f.created_at
			FROM follows f
			JOIN profiles u ON u.id = f.follower_id
			WHERE f.following_id = $1
			ORDER BY f.created_at DESC
			LIMIT $2
		`
		args = []interface{}{userID, limit + 1}
	} else {
		query = `
			SELECT u.id, u.username, u.full_name, u.avatar_url, f.created_at
			FROM follows f
			JOIN profiles u ON u.id = f.follower_id
			WHERE f.following_id = $1 AND f.created_at < $2
			ORDER BY f.created_at DESC
			LIMIT $3
		`
		args = []interface{}{userID, cursor, limit + 1}
	}

	return r.selectFollowPage(ctx, query, args, limit)
}

// GetFollowing retrieves users the specified user follows. See GetFollowers
// for the cursor pagination approach.
func (r *followRepository) GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.UserSummary, *time.Time, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT u.id, u.username, u.full_name, u.avatar_url, f.created_at
			FROM follows f
			JOIN profiles u ON u.id = f.following_id
			WHERE f.follower_id = $1
			ORDER BY f.created_at DESC
			LIMIT $2
		`
		args = []interface{}{userID, limit + 1}
	} else {
		query = `
			SELECT u.id, u.username, u.full_name, u.avatar_url, f.created_at
			FROM follows f
			JOIN profiles u ON u.id = f.following_id
			WHERE f.follower_id = $1 AND f.created_at < $2
			ORDER BY f.created_at DESC
			LIMIT $3
		`
		args = []interface{}{userID, cursor, limit + 1}
	}

	return r.selectFollowPage(ctx, query, args, limit)
}

func (r *followRepository) selectFollowPage(ctx context.Context, query string, args []interface{}, limit int) ([]model.UserSummary, *time.Time, error) {
	type userWithTime struct {
		model.UserSummary
		CreatedAt time.Time `db:"created_at"`
	}

	var results []userWithTime
	err := r.db.SelectContext(ctx, &results, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get follow page: %w", err)
	}

	var nextCursor *time.Time
	if len(results) > limit {
		results = results[:limit]
		nextCursor = &results[len(results)-1].CreatedAt
	}

	users := make([]model.UserSummary, 0, len(results))
	for _, result := range results {
		users = append(users, result.UserSummary)
	}

	return users, nextCursor, nil
}

// CheckFollows batch-checks which of the given users the follower follows.
// One query via ANY($1), not N+1.
func (r *followRepository) CheckFollows(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error) {
	if len(followingIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT following_id FROM follows WHERE follower_id = $1 AND following_id = ANY($2)`
	var followedIDs []int64
	err := r.db.SelectContext(ctx, &followedIDs, query, followerID, pq.Array(followingIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check follows: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range followingIDs {
		result[id] = false
	}
	for _, id := range followedIDs {
		result[id] = true
	}

	return result, nil
}
