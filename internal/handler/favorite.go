package handler

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"marketforum/internal/httputil"
	"marketforum/internal/model"
	"marketforum/internal/service"
	"marketforum/internal/transport/http/middleware"
)

type FavoriteHandler struct {
	favoriteService *service.FavoriteService
}

func NewFavoriteHandler(favoriteService *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// List handles GET /favorites
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	products, err := h.favoriteService.List(r.Context(), userID)
	if err != nil {
		log.Errorf("[FavoriteHandler] List: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to list favorites")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.FavoriteListResponse{Products: products})
}

// Add handles POST /favorites/{productId}
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	productID, ok := idParam(r, "productId")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid product ID")
		return
	}

	if err := h.favoriteService.Add(r.Context(), userID, productID); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			httputil.WriteNotFound(w, "Product not found")
			return
		}
		log.Errorf("[FavoriteHandler] Add: user=%d product=%d err=%v", userID, productID, err)
		httputil.WriteInternalError(w, "Failed to add favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Remove handles DELETE /favorites/{productId}
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	productID, ok := idParam(r, "productId")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid product ID")
		return
	}

	if err := h.favoriteService.Remove(r.Context(), userID, productID); err != nil {
		log.Errorf("[FavoriteHandler] Remove: user=%d product=%d err=%v", userID, productID, err)
		httputil.WriteInternalError(w, "Failed to remove favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
