package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"marketforum/internal/model"
	"marketforum/internal/repository"
)

// CartService manages per-user carts.
type CartService struct {
	repo repository.CartRepository
}

func NewCartService(repo repository.CartRepository) *CartService {
	return &CartService{repo: repo}
}

// AddItem puts one more unit of the product in the cart.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64) (*model.CartResponse, error) {
	quantity, err := s.repo.AddItem(ctx, userID, productID)
	if err != nil {
		if err == model.ErrProductNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	log.Debugf("[CartService] user=%d product=%d quantity=%d", userID, productID, quantity)
	return s.GetCart(ctx, userID)
}

// RemoveItem drops the whole line for the product.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) (*model.CartResponse, error) {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		if err == model.ErrNotInCart {
			return nil, err
		}
		return nil, fmt.Errorf("failed to remove from cart: %w", err)
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*model.CartResponse, error) {
	items, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return BuildCart(items), nil
}

// BuildCart fills line totals; the cart total is the sum of quantity times
// price over every line.
func BuildCart(items []model.CartItem) *model.CartResponse {
	if items == nil {
		items = []model.CartItem{}
	}
	for i := range items {
		items[i].LineTotalCents = int64(items[i].Quantity) * items[i].PriceCents
	}
	return &model.CartResponse{
		Items:      items,
		TotalCents: lo.SumBy(items, func(item model.CartItem) int64 { return item.LineTotalCents }),
	}
}
