package model

import "errors"

// CartItem is one product line in a user's cart.
type CartItem struct {
	ProductID      int64   `db:"product_id" json:"product_id"`
	Name           string  `db:"name" json:"name"`
	PriceCents     int64   `db:"price_cents" json:"price_cents"`
	PhotoURL       *string `db:"photo_url" json:"photo_url"`
	Quantity       int     `db:"quantity" json:"quantity"`
	LineTotalCents int64   `db:"-" json:"line_total_cents"`
}

type CartResponse struct {
	Items      []CartItem `json:"items"`
	TotalCents int64      `json:"total_cents"`
}

type FavoriteListResponse struct {
	Products []Product `json:"products"`
}

var ErrNotInCart = errors.New("product is not in the cart")
