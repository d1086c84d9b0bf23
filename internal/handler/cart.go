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

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get handles GET /cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), userID)
	if err != nil {
		log.Errorf("[CartHandler] Get: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get cart")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cart)
}

// Add handles POST /cart/{productId}
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
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

	cart, err := h.cartService.AddItem(r.Context(), userID, productID)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			httputil.WriteNotFound(w, "Product not found")
			return
		}
		log.Errorf("[CartHandler] Add: user=%d product=%d err=%v", userID, productID, err)
		httputil.WriteInternalError(w, "Failed to add to cart")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cart)
}

// Remove handles DELETE /cart/{productId}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
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

	cart, err := h.cartService.RemoveItem(r.Context(), userID, productID)
	if err != nil {
		if errors.Is(err, model.ErrNotInCart) {
			httputil.WriteNotFound(w, "Product is not in the cart")
			return
		}
		log.Errorf("[CartHandler] Remove: user=%d product=%d err=%v", userID, productID, err)
		httputil.WriteInternalError(w, "Failed to remove from cart")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cart)
}
