package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"marketforum/internal/model"
)

type reviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, productID, userID int64, text string) (*model.Review, error) {
	query := `
		INSERT INTO reviews (product_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, product_id, user_id, text, created_at
	`
	var review model.Review
	if err := r.db.GetContext(ctx, &review, query, productID, userID, text); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == foreignKeyViolation {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return &review, nil
}

// ListByProduct returns reviews newest first with their authors joined in.
func (r *reviewRepository) ListByProduct(ctx context.Context, productID int64) ([]model.Review, error) {
	query := `
		SELECT rv.id, rv.product_id, rv.user_id, rv.text, rv.created_at, u.username
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.product_id = $1
		ORDER BY rv.created_at DESC, rv.id DESC
	`
	type reviewRow struct {
		model.Review
		Username string `db:"username"`
	}
	var rows []reviewRow
	if err := r.db.SelectContext(ctx, &rows, query, productID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	reviews := make([]model.Review, len(rows))
	for i, row := range rows {
		reviews[i] = row.Review
		reviews[i].Author = &model.UserSummary{ID: row.UserID, Username: row.Username}
	}
	return reviews, nil
}
