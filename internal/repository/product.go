package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"marketforum/internal/model"
)

const productColumns = `id, category_id, name, price_cents, description, photo_url, photo_key`

type productRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts p and fills in its id. An unknown category is reported as
// ErrCategoryNotFound via the foreign key.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (category_id, name, price_cents, description, photo_url, photo_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.GetContext(ctx, &p.ID, query, p.CategoryID, p.Name, p.PriceCents, p.Description, p.PhotoURL, p.PhotoKey)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == foreignKeyViolation {
			return model.ErrCategoryNotFound
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, categoryID *int64) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []interface{}
	if categoryID != nil {
		query += ` WHERE category_id = $1`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY id`

	products := []model.Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// SearchByName does a case-insensitive substring match on the product name.
func (r *productRepository) SearchByName(ctx context.Context, query string, limit int) ([]model.Product, error) {
	searchQuery := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE $1 ESCAPE '\'
		ORDER BY name, id
		LIMIT $2
	`
	products := []model.Product{}
	err := r.db.SelectContext(ctx, &products, searchQuery, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

func (r *productRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check product exists: %w", err)
	}
	return exists, nil
}

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
