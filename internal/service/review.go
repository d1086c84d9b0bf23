package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"marketforum/internal/cache"
	"marketforum/internal/model"
	"marketforum/internal/repository"
)

// ReviewService records product reviews and drops the cached product page.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
	cache      cache.CatalogCache
}

func NewReviewService(reviewRepo repository.ReviewRepository, userRepo repository.UserRepository, catalogCache cache.CatalogCache) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
		cache:      catalogCache,
	}
}

func (s *ReviewService) AddReview(ctx context.Context, productID, userID int64, req *model.CreateReviewRequest) (*model.Review, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, model.ErrReviewRequired
	}
	if utf8.RuneCountInString(text) > model.MaxReviewLength {
		return nil, model.ErrReviewTooLong
	}

	review, err := s.reviewRepo.Create(ctx, productID, userID, text)
	if err != nil {
		if err == model.ErrProductNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	summaries, err := s.userRepo.GetSummaries(ctx, []int64{userID})
	if err != nil {
		log.Warnf("[ReviewService] Failed to attach author: review=%d err=%v", review.ID, err)
	} else if u, ok := summaries[userID]; ok {
		review.Author = &u
	}

	if s.cache != nil {
		if err := s.cache.InvalidateProduct(ctx, productID); err != nil {
			log.Warnf("[ReviewService] Product cache invalidation failed: product=%d err=%v", productID, err)
		}
	}
	log.Printf("[ReviewService] Added review=%d product=%d user=%d", review.ID, productID, userID)
	return review, nil
}
