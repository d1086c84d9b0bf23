package model

import (
	"errors"
	"time"
	"unicode/utf8"
)

type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CategoryDetail is a category with the products filed under it.
type CategoryDetail struct {
	Category
	Products []Product `json:"products"`
}

type Product struct {
	ID          int64   `db:"id" json:"id"`
	CategoryID  int64   `db:"category_id" json:"category_id"`
	Name        string  `db:"name" json:"name"`
	PriceCents  int64   `db:"price_cents" json:"price_cents"`
	Description string  `db:"description" json:"description"`
	PhotoURL    *string `db:"photo_url" json:"photo_url"`
	PhotoKey    *string `db:"photo_key" json:"-"`
}

// ProductDetail is the product page: the product plus its reviews.
type ProductDetail struct {
	Product
	Reviews []Review `json:"reviews"`
}

type Review struct {
	ID        int64        `db:"id" json:"id"`
	ProductID int64        `db:"product_id" json:"product_id"`
	UserID    int64        `db:"user_id" json:"-"`
	Text      string       `db:"text" json:"text"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"`
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CreateProductRequest is assembled from the multipart form of POST /products.
type CreateProductRequest struct {
	CategoryID  int64
	Name        string
	PriceCents  int64
	Description string
}

type CreateReviewRequest struct {
	Text string `json:"text"`
}

type ProductListResponse struct {
	Products []Product `json:"products"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
}

// Catalog constraints
const (
	MaxCategoryNameLength       = 100
	MaxProductNameLength        = 100
	MaxProductDescriptionLength = 600
	MaxReviewLength             = 600
	MaxSearchResults            = 100
)

var (
	ErrCategoryNotFound   = errors.New("category not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name too long")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrInvalidPrice       = errors.New("price must be positive")
	ErrReviewRequired     = errors.New("review text is required")
	ErrReviewTooLong      = errors.New("review text too long")
	ErrMediaNotConfigured = errors.New("photo storage is not configured")
)

// Validate checks the product fields that do not need the store.
func (r CreateProductRequest) Validate() error {
	if r.Name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(r.Name) > MaxProductNameLength {
		return ErrNameTooLong
	}
	if utf8.RuneCountInString(r.Description) > MaxProductDescriptionLength {
		return ErrDescriptionTooLong
	}
	if r.PriceCents <= 0 {
		return ErrInvalidPrice
	}
	return nil
}
