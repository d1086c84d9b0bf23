package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"marketforum/internal/model"
)

type favoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepository(db *sqlx.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Add is idempotent.
func (r *favoriteRepository) Add(ctx context.Context, userID, productID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, product_id) VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, userID, productID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == foreignKeyViolation {
			return model.ErrProductNotFound
		}
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// Remove is idempotent.
func (r *favoriteRepository) Remove(ctx context.Context, userID, productID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (r *favoriteRepository) List(ctx context.Context, userID int64) ([]model.Product, error) {
	query := `
		SELECT p.id, p.category_id, p.name, p.price_cents, p.description, p.photo_url, p.photo_key
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC, p.id DESC
	`
	products := []model.Product{}
	if err := r.db.SelectContext(ctx, &products, query, userID); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return products, nil
}
