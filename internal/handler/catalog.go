package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"marketforum/internal/httputil"
	"marketforum/internal/model"
	"marketforum/internal/service"
	"marketforum/internal/transport/http/middleware"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListCategories handles GET /categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		log.Errorf("[CatalogHandler] List categories: err=%v", err)
		httputil.WriteInternalError(w, "Failed to list categories")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.CategoryListResponse{Categories: categories})
}

// GetCategory handles GET /categories/{id}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := idParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid category ID")
		return
	}

	detail, err := h.catalogService.GetCategory(r.Context(), categoryID)
	if err != nil {
		if errors.Is(err, model.ErrCategoryNotFound) {
			httputil.WriteNotFound(w, "Category not found")
			return
		}
		log.Errorf("[CatalogHandler] Get category: category=%d err=%v", categoryID, err)
		httputil.WriteInternalError(w, "Failed to get category")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

// CreateCategory handles POST /categories (admin only)
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), userID, &req)
	if err != nil {
		if writeCatalogError(w, err) {
			return
		}
		log.Errorf("[CatalogHandler] Create category: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to create category")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, category)
}

// ListProducts handles GET /products?category={id}
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if c := r.URL.Query().Get("category"); c != "" {
		parsed, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid category parameter")
			return
		}
		categoryID = &parsed
	}

	products, err := h.catalogService.ListProducts(r.Context(), categoryID)
	if err != nil {
		log.Errorf("[CatalogHandler] List products: err=%v", err)
		httputil.WriteInternalError(w, "Failed to list products")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.ProductListResponse{Products: products})
}

// GetProduct handles GET /products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid product ID")
		return
	}

	detail, err := h.catalogService.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			httputil.WriteNotFound(w, "Product not found")
			return
		}
		log.Errorf("[CatalogHandler] Get product: product=%d err=%v", productID, err)
		httputil.WriteInternalError(w, "Failed to get product")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

// Search handles GET /search?q=
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		log.Errorf("[CatalogHandler] Search: err=%v", err)
		httputil.WriteInternalError(w, "Failed to search products")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.ProductListResponse{Products: products})
}

// CreateProduct handles multipart POST /products (admin only) with an
// optional "photo" file part.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	maxFormSize := int64(model.MaxPhotoSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Photo exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	categoryID, err := strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid category_id")
		return
	}
	priceCents, err := strconv.ParseInt(r.FormValue("price_cents"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid price_cents")
		return
	}
	req := model.CreateProductRequest{
		CategoryID:  categoryID,
		Name:        strings.TrimSpace(r.FormValue("name")),
		PriceCents:  priceCents,
		Description: r.FormValue("description"),
	}

	var photo *service.PhotoUpload
	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		photo = &service.PhotoUpload{File: file, Header: header}
	} else if !errors.Is(err, http.ErrMissingFile) {
		httputil.WriteBadRequest(w, "Invalid photo upload")
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), userID, &req, photo)
	if err != nil {
		if writeCatalogError(w, err) {
			return
		}
		log.Errorf("[CatalogHandler] Create product: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to create product")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, product)
}

// writeCatalogError answers the catalog management failures. It reports
// whether err was one.
func writeCatalogError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, model.ErrNotAdmin):
		httputil.WriteForbidden(w, "Admin access required")
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteUnauthorized(w, "Not authenticated")
	case errors.Is(err, model.ErrCategoryNotFound):
		httputil.WriteNotFound(w, "Category not found")
	case errors.Is(err, model.ErrNameRequired):
		httputil.WriteValidationError(w, "Name is required")
	case errors.Is(err, model.ErrNameTooLong):
		httputil.WriteValidationError(w, "Name too long (max 100 characters)")
	case errors.Is(err, model.ErrDescriptionTooLong):
		httputil.WriteValidationError(w, "Description too long (max 600 characters)")
	case errors.Is(err, model.ErrInvalidPrice):
		httputil.WriteValidationError(w, "Price must be positive")
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Photo exceeds 5MB limit")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
	case errors.Is(err, model.ErrMediaNotConfigured):
		httputil.WriteError(w, http.StatusServiceUnavailable, "MEDIA_UNAVAILABLE", "Photo uploads are not available")
	default:
		return false
	}
	return true
}
