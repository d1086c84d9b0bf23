package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"marketforum/internal/metrics"
	"marketforum/internal/model"
	"marketforum/internal/repository"
)

// ReactionService applies the like/dislike buttons. Each press moves the
// user's state on the post and returns the post's counters afterwards.
type ReactionService struct {
	repo repository.ReactionRepository
}

func NewReactionService(repo repository.ReactionRepository) *ReactionService {
	return &ReactionService{repo: repo}
}

func (s *ReactionService) ToggleLike(ctx context.Context, postID, userID int64) (*model.ReactionResult, error) {
	return s.toggle(ctx, postID, userID, model.ReactionLiked)
}

func (s *ReactionService) ToggleDislike(ctx context.Context, postID, userID int64) (*model.ReactionResult, error) {
	return s.toggle(ctx, postID, userID, model.ReactionDisliked)
}

func (s *ReactionService) toggle(ctx context.Context, postID, userID int64, button model.ReactionState) (*model.ReactionResult, error) {
	result, err := s.repo.Toggle(ctx, postID, userID, button)
	if err != nil {
		if err == model.ErrPostNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to toggle reaction: %w", err)
	}

	buttonName := "like"
	if button == model.ReactionDisliked {
		buttonName = "dislike"
	}
	metrics.ReactionToggles.WithLabelValues(buttonName, result.State.String()).Inc()
	log.Debugf("[ReactionService] %s post=%d user=%d state=%s likes=%d dislikes=%d",
		buttonName, postID, userID, result.State, result.LikeCount, result.DislikeCount)
	return result, nil
}
