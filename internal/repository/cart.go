package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"marketforum/internal/model"
)

type cartRepository struct {
	db *sqlx.DB
}

func NewCartRepository(db *sqlx.DB) CartRepository {
	return &cartRepository{db: db}
}

// AddItem upserts the cart line; repeated adds increase the quantity by one.
func (r *cartRepository) AddItem(ctx context.Context, userID, productID int64) (int, error) {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + 1, updated_at = NOW()
		RETURNING quantity
	`
	var quantity int
	if err := r.db.GetContext(ctx, &quantity, query, userID, productID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == foreignKeyViolation {
			return 0, model.ErrProductNotFound
		}
		return 0, fmt.Errorf("add cart item: %w", err)
	}
	return quantity, nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, userID, productID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotInCart
	}
	return nil
}

func (r *cartRepository) ListItems(ctx context.Context, userID int64) ([]model.CartItem, error) {
	query := `
		SELECT ci.product_id, p.name, p.price_cents, p.photo_url, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at, ci.product_id
	`
	items := []model.CartItem{}
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	return items, nil
}
