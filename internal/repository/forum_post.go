package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"marketforum/internal/model"
)

type forumPostRepository struct {
	db *sqlx.DB
}

func NewForumPostRepository(db *sqlx.DB) ForumPostRepository {
	return &forumPostRepository{db: db}
}

// Create inserts a new top-level post.
func (r *forumPostRepository) Create(ctx context.Context, userID int64, content string) (*model.Post, error) {
	query := `
		INSERT INTO forum_posts (user_id, content)
		VALUES ($1, $2)
		RETURNING id, user_id, content, like_count, dislike_count, created_at
	`
	var post model.Post
	if err := r.db.GetContext(ctx, &post, query, userID, content); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return &post, nil
}

// GetByID retrieves a single post.
func (r *forumPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT id, user_id, content, like_count, dislike_count, created_at
		FROM forum_posts
		WHERE id = $1
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

// ListTopLevel reads straight from the table on every call, so inserts
// committed before the query are always visible.
func (r *forumPostRepository) ListTopLevel(ctx context.Context) ([]model.Post, error) {
	query := `
		SELECT id, user_id, content, like_count, dislike_count, created_at
		FROM forum_posts
		ORDER BY created_at DESC, id DESC
	`
	posts := []model.Post{}
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *forumPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM forum_posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}
