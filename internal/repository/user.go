package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tastebook/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new profile row into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO profiles (username, password_hashed, full_name, avatar_url, avatar_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.Username,
		u.PasswordHashed,
		u.FullName,
		u.AvatarURL,
		u.AvatarKey,
	)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by its ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, username, password_hashed, full_name, avatar_url, avatar_key,
		       bio, website, location, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile by id: %w", err)
	}

	return &u, nil
}

// GetByUsername retrieves a profile by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, username, password_hashed, full_name, avatar_url, avatar_key,
		       bio, website, location, created_at, updated_at
		FROM profiles
		WHERE username = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile by username: %w", err)
	}

	return &u, nil
}

// ExistsByUsername checks if a username is already taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE username = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// Exists checks if a profile exists
func (r *userRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to check profile existence: %w", err)
	}

	return exists, nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	searchQuery := `
		SELECT id, username, full_name, avatar_url
		FROM profiles
		WHERE username ILIKE $1
		ORDER BY username ASC
		LIMIT $2
	`

	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, searchQuery, query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}

	return users, nil
}

// UpdateProfile applies the owner-editable fields, leaving nil fields as-is.
func (r *userRepository) UpdateProfile(ctx context.Context, id int64, req model.UpdateProfileRequest) (*model.User, error) {
	query := `
		UPDATE profiles
		SET full_name = COALESCE($2, full_name),
		    bio       = COALESCE($3, bio),
		    website   = COALESCE($4, website),
		    location  = COALESCE($5, location),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, username, password_hashed, full_name, avatar_url, avatar_key,
		          bio, website, location, created_at, updated_at
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id, req.FullName, req.Bio, req.Website, req.Location)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &u, nil
}
