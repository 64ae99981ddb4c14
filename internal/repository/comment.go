package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"tastebook/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create appends a comment row and returns it with the author summary joined.
func (r *commentRepository) Create(ctx context.Context, recipeID, userID int64, content string) (*model.RecipeComment, error) {
	query := `
		INSERT INTO recipe_comments (recipe_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, recipe_id, user_id, content, created_at
	`
	var comment model.RecipeComment
	err := r.db.GetContext(ctx, &comment, query, recipeID, userID, content)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	var author model.UserSummary
	err = r.db.GetContext(ctx, &author, `
		SELECT id, username, full_name, avatar_url FROM profiles WHERE id = $1
	`, userID)
	if err == nil {
		comment.Author = &author
	}

	return &comment, nil
}

// commentRow scans a comment joined with its author columns.
type commentRow struct {
	ID             int64     `db:"id"`
	RecipeID       int64     `db:"recipe_id"`
	UserID         int64     `db:"user_id"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
	AuthorID       int64     `db:"author.id"`
	AuthorUsername string    `db:"author.username"`
	AuthorFullName *string   `db:"author.full_name"`
	AuthorAvatar   *string   `db:"author.avatar_url"`
}

func (row commentRow) toComment() model.RecipeComment {
	return model.RecipeComment{
		ID:        row.ID,
		RecipeID:  row.RecipeID,
		UserID:    row.UserID,
		Content:   row.Content,
		CreatedAt: row.CreatedAt,
		Author: &model.UserSummary{
			ID:        row.AuthorID,
			Username:  row.AuthorUsername,
			FullName:  row.AuthorFullName,
			AvatarURL: row.AuthorAvatar,
		},
	}
}

const commentSelect = `
	SELECT c.id, c.recipe_id, c.user_id, c.content, c.created_at,
	       u.id AS "author.id", u.username AS "author.username",
	       u.full_name AS "author.full_name", u.avatar_url AS "author.avatar_url"
	FROM recipe_comments c
	JOIN profiles u ON u.id = c.user_id
`

// GetByID returns a single comment with its author summary joined.
func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.RecipeComment, error) {
	query := commentSelect + ` WHERE c.id = $1`

	var row commentRow
	err := r.db.GetContext(ctx, &row, query, commentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}

	comment := row.toComment()
	return &comment, nil
}

// ListByRecipe returns paginated comments for a recipe, newest first.
func (r *commentRepository) ListByRecipe(ctx context.Context, recipeID int64, cursor *string, limit int) ([]model.RecipeComment, *string, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = commentSelect + `
			WHERE c.recipe_id = $1
			ORDER BY c.created_at DESC, c.id DESC
			LIMIT $2
		`
		args = []interface{}{recipeID, limit + 1}
	} else {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		query = commentSelect + `
			WHERE c.recipe_id = $1 AND (c.created_at, c.id) < ($2, $3)
			ORDER BY c.created_at DESC, c.id DESC
			LIMIT $4
		`
		args = []interface{}{recipeID, ts, id, limit + 1}
	}

	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("get comments: %w", err)
	}

	comments := make([]model.RecipeComment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}

	var nextCursor *string
	if len(comments) > limit {
		comments = comments[:limit]
		last := comments[len(comments)-1]
		c := formatCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}

	return comments, nextCursor, nil
}

// ListAllByRecipe returns every comment on a recipe, newest first.
// Used by the recipe detail view which embeds the full comment list.
func (r *commentRepository) ListAllByRecipe(ctx context.Context, recipeID int64) ([]model.RecipeComment, error) {
	query := commentSelect + `
		WHERE c.recipe_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`

	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("get all comments: %w", err)
	}

	comments := make([]model.RecipeComment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}

	return comments, nil
}
