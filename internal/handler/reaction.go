package handler

import (
	"context"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"marketforum/internal/httputil"
	"marketforum/internal/model"
	"marketforum/internal/service"
	"marketforum/internal/transport/http/middleware"
)

type ReactionHandler struct {
	reactionService *service.ReactionService
}

func NewReactionHandler(reactionService *service.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

// Like handles POST /like/{postId}/
func (h *ReactionHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.reactionService.ToggleLike)
}

// Dislike handles POST /dislike/{postId}/
func (h *ReactionHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.reactionService.ToggleDislike)
}

type toggleFunc func(ctx context.Context, postID, userID int64) (*model.ReactionResult, error)

func (h *ReactionHandler) toggle(w http.ResponseWriter, r *http.Request, fn toggleFunc) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := idParam(r, "postId")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	result, err := fn(r.Context(), postID, userID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Errorf("[ReactionHandler] Toggle: user=%d post=%d err=%v", userID, postID, err)
		httputil.WriteInternalError(w, "Failed to update reaction")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
