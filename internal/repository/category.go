package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tastebook/internal/model"
)

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// List returns all categories ordered by title ascending. The recipe count
// is derived per row; COUNT never yields NULL, so empty categories report 0.
func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	query := `
		SELECT c.id, c.slug, c.title, c.description, c.image_url,
		       (SELECT COUNT(*) FROM recipes rc WHERE rc.category_id = c.id) AS recipe_count
		FROM categories c
		ORDER BY c.title ASC
	`

	var categories []model.Category
	err := r.db.SelectContext(ctx, &categories, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	query := `
		SELECT c.id, c.slug, c.title, c.description, c.image_url,
		       (SELECT COUNT(*) FROM recipes rc WHERE rc.category_id = c.id) AS recipe_count
		FROM categories c
		WHERE c.id = $1
	`

	var category model.Category
	err := r.db.GetContext(ctx, &category, query, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	query := `
		SELECT c.id, c.slug, c.title, c.description, c.image_url,
		       (SELECT COUNT(*) FROM recipes rc WHERE rc.category_id = c.id) AS recipe_count
		FROM categories c
		WHERE c.slug = $1
	`

	var category model.Category
	err := r.db.GetContext(ctx, &category, query, slug)
	if err == sql.ErrNoRows {
		return nil, model.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by slug: %w", err)
	}

	return &category, nil
}
