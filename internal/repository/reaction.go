package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"marketforum/internal/model"
)

type reactionRepository struct {
	db *sqlx.DB
}

func NewReactionRepository(db *sqlx.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Toggle runs one reaction transition in a transaction:
//  1. lock the post row (serializes all toggles on the post)
//  2. read the user's current state
//  3. write the next state to post_reactions
//  4. move the denormalized counters and return them
func (r *reactionRepository) Toggle(ctx context.Context, postID, userID int64, target model.ReactionState) (*model.ReactionResult, error) {
	if target != model.ReactionLiked && target != model.ReactionDisliked {
		return nil, model.ErrInvalidReaction
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var locked int64
	err = tx.GetContext(ctx, &locked, `SELECT id FROM forum_posts WHERE id = $1 FOR UPDATE`, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock post: %w", err)
	}

	current, err := r.currentState(ctx, tx, postID, userID)
	if err != nil {
		return nil, err
	}
	next := current.Toggle(target)

	if err := r.writeState(ctx, tx, postID, userID, current, next); err != nil {
		return nil, err
	}

	likeDelta, dislikeDelta := current.CountDeltas(next)
	var counts model.ReactionCounts
	err = tx.GetContext(ctx, &counts, `
		UPDATE forum_posts
		SET like_count = like_count + $1, dislike_count = dislike_count + $2
		WHERE id = $3
		RETURNING like_count, dislike_count
	`, likeDelta, dislikeDelta, postID)
	if err != nil {
		return nil, fmt.Errorf("update reaction counts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &model.ReactionResult{ReactionCounts: counts, State: next}, nil
}

func (r *reactionRepository) currentState(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (model.ReactionState, error) {
	var kind int8
	err := tx.GetContext(ctx, &kind, `SELECT kind FROM post_reactions WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err == sql.ErrNoRows {
		return model.ReactionNeutral, nil
	}
	if err != nil {
		return model.ReactionNeutral, fmt.Errorf("get reaction: %w", err)
	}
	return model.ReactionState(kind), nil
}

// writeState stores next. Neutral is represented by the absence of a row.
func (r *reactionRepository) writeState(ctx context.Context, tx *sqlx.Tx, postID, userID int64, current, next model.ReactionState) error {
	var err error
	switch {
	case current == next:
		return nil
	case next == model.ReactionNeutral:
		_, err = tx.ExecContext(ctx, `DELETE FROM post_reactions WHERE post_id = $1 AND user_id = $2`, postID, userID)
	case current == model.ReactionNeutral:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO post_reactions (post_id, user_id, kind)
			VALUES ($1, $2, $3)
		`, postID, userID, int8(next))
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE post_reactions SET kind = $3, updated_at = NOW()
			WHERE post_id = $1 AND user_id = $2
		`, postID, userID, int8(next))
	}
	if err != nil {
		return fmt.Errorf("write reaction %s -> %s: %w", current, next, err)
	}
	return nil
}

// States reports the user's reactions among postIDs. Posts the user has not
// reacted to are left out of the map, which reads as neutral.
func (r *reactionRepository) States(ctx context.Context, userID int64, postIDs []int64) (map[int64]model.ReactionState, error) {
	result := make(map[int64]model.ReactionState)
	if len(postIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		PostID int64 `db:"post_id"`
		Kind   int8  `db:"kind"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT post_id, kind FROM post_reactions
		WHERE user_id = $1 AND post_id = ANY($2)
	`, userID, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get reaction states: %w", err)
	}

	for _, row := range rows {
		result[row.PostID] = model.ReactionState(row.Kind)
	}
	return result, nil
}
