package service

import (
	"context"
	"errors"
	"fmt"

	"marketforum/internal/model"
	"marketforum/internal/repository"
)

// FavoriteService manages a user's saved products. Add and Remove are
// idempotent.
type FavoriteService struct {
	repo repository.FavoriteRepository
}

func NewFavoriteService(repo repository.FavoriteRepository) *FavoriteService {
	return &FavoriteService{repo: repo}
}

func (s *FavoriteService) Add(ctx context.Context, userID, productID int64) error {
	if err := s.repo.Add(ctx, userID, productID); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, productID int64) error {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (s *FavoriteService) List(ctx context.Context, userID int64) ([]model.Product, error) {
	products, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return products, nil
}
