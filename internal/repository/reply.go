package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"marketforum/internal/model"
)

type replyRepository struct {
	db *sqlx.DB
}

func NewReplyRepository(db *sqlx.DB) ReplyRepository {
	return &replyRepository{db: db}
}

// Create inserts the reply in the same statement that checks the parent,
// so a missing parent leaves no row behind. A parent deleted between the
// check and the insert trips the foreign key instead.
func (r *replyRepository) Create(ctx context.Context, postID, userID int64, content string) (*model.Reply, error) {
	query := `
		INSERT INTO forum_replies (post_id, user_id, content)
		SELECT p.id, $2, $3 FROM forum_posts p WHERE p.id = $1
		RETURNING id, post_id, user_id, content, created_at
	`
	var reply model.Reply
	err := r.db.GetContext(ctx, &reply, query, postID, userID, content)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == foreignKeyViolation {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("insert reply: %w", err)
	}
	return &reply, nil
}

// ListByPost returns a post's replies, newest first. The id tiebreak orders
// replies that share a timestamp.
func (r *replyRepository) ListByPost(ctx context.Context, postID int64) ([]model.Reply, error) {
	query := `
		SELECT id, post_id, user_id, content, created_at
		FROM forum_replies
		WHERE post_id = $1
		ORDER BY created_at DESC, id DESC
	`
	replies := []model.Reply{}
	if err := r.db.SelectContext(ctx, &replies, query, postID); err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return replies, nil
}

// ListByPosts fetches replies for many posts in one query.
func (r *replyRepository) ListByPosts(ctx context.Context, postIDs []int64) (map[int64][]model.Reply, error) {
	result := make(map[int64][]model.Reply)
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, post_id, user_id, content, created_at
		FROM forum_replies
		WHERE post_id = ANY($1)
		ORDER BY post_id, created_at DESC, id DESC
	`
	var replies []model.Reply
	if err := r.db.SelectContext(ctx, &replies, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("list replies by posts: %w", err)
	}

	for _, reply := range replies {
		result[reply.PostID] = append(result[reply.PostID], reply)
	}
	return result, nil
}
