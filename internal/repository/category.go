package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"marketforum/internal/model"
)

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, name string) (*model.Category, error) {
	var c model.Category
	err := r.db.GetContext(ctx, &c, `INSERT INTO categories (name) VALUES ($1) RETURNING id, name`, name)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return &c, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := r.db.GetContext(ctx, &c, `SELECT id, name FROM categories WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := r.db.SelectContext(ctx, &categories, `SELECT id, name FROM categories ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
