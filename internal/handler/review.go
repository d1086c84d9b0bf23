package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"marketforum/internal/httputil"
	"marketforum/internal/model"
	"marketforum/internal/service"
	"marketforum/internal/transport/http/middleware"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Create handles POST /products/{id}/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	productID, ok := idParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid product ID")
		return
	}

	var req model.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	review, err := h.reviewService.AddReview(r.Context(), productID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrReviewRequired):
			httputil.WriteValidationError(w, "Review text is required")
		case errors.Is(err, model.ErrReviewTooLong):
			httputil.WriteValidationError(w, "Review too long (max 600 characters)")
		case errors.Is(err, model.ErrProductNotFound):
			httputil.WriteNotFound(w, "Product not found")
		default:
			log.Errorf("[ReviewHandler] Create: user=%d product=%d err=%v", userID, productID, err)
			httputil.WriteInternalError(w, "Failed to add review")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, review)
}
