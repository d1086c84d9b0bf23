package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"marketforum/internal/cache"
	"marketforum/internal/metrics"
	"marketforum/internal/model"
	"marketforum/internal/repository"
)

// PhotoUpload is an optional product photo taken from a multipart form.
type PhotoUpload struct {
	File   io.Reader
	Header *multipart.FileHeader
}

// CatalogService serves categories, products and search. The cache and the
// photo store are optional; nil disables them.
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	reviewRepo   repository.ReviewRepository
	userRepo     repository.UserRepository
	cache        cache.CatalogCache
	photos       PhotoStore
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	catalogCache cache.CatalogCache,
	photos PhotoStore,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		reviewRepo:   reviewRepo,
		userRepo:     userRepo,
		cache:        catalogCache,
		photos:       photos,
	}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCategories(ctx)
		if err != nil {
			log.Warnf("[CatalogService] Category cache read failed: %v", err)
		}
		if cached != nil {
			metrics.CatalogCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.CatalogCacheLookups.WithLabelValues("miss").Inc()
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories); err != nil {
			log.Warnf("[CatalogService] Category cache write failed: %v", err)
		}
	}
	return categories, nil
}

// GetCategory returns the category and its products.
func (s *CatalogService) GetCategory(ctx context.Context, categoryID int64) (*model.CategoryDetail, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.List(ctx, &categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &model.CategoryDetail{Category: *category, Products: products}, nil
}

// CreateCategory is restricted to admins.
func (s *CatalogService) CreateCategory(ctx context.Context, actorID int64, req *model.CreateCategoryRequest) (*model.Category, error) {
	if err := requireAdmin(ctx, s.userRepo, actorID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > model.MaxCategoryNameLength {
		return nil, model.ErrNameTooLong
	}

	category, err := s.categoryRepo.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateCategories(ctx); err != nil {
			log.Warnf("[CatalogService] Category cache invalidation failed: %v", err)
		}
	}
	log.Printf("[CatalogService] Created category=%d name=%q by user=%d", category.ID, category.Name, actorID)
	return category, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, categoryID *int64) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns the product page with its reviews.
func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (*model.ProductDetail, error) {
	if s.cache != nil {
		cached, err := s.cache.GetProduct(ctx, productID)
		if err != nil {
			log.Warnf("[CatalogService] Product cache read failed: product=%d err=%v", productID, err)
		}
		if cached != nil {
			metrics.CatalogCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.CatalogCacheLookups.WithLabelValues("miss").Inc()
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	detail := &model.ProductDetail{Product: *product, Reviews: reviews}

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, detail); err != nil {
			log.Warnf("[CatalogService] Product cache write failed: product=%d err=%v", productID, err)
		}
	}
	return detail, nil
}

// Search matches product names by case-insensitive substring. An empty
// query returns no products.
func (s *CatalogService) Search(ctx context.Context, query string) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Product{}, nil
	}
	products, err := s.productRepo.SearchByName(ctx, query, model.MaxSearchResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// CreateProduct is restricted to admins. The photo, when given, is uploaded
// first and removed again if the insert fails.
func (s *CatalogService) CreateProduct(ctx context.Context, actorID int64, req *model.CreateProductRequest, photo *PhotoUpload) (*model.Product, error) {
	if err := requireAdmin(ctx, s.userRepo, actorID); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product := &model.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		PriceCents:  req.PriceCents,
		Description: req.Description,
	}

	if photo != nil {
		if s.photos == nil {
			return nil, model.ErrMediaNotConfigured
		}
		upload, err := s.photos.UploadProductPhoto(ctx, photo.File, photo.Header)
		if err != nil {
			return nil, err
		}
		product.PhotoURL = &upload.URL
		product.PhotoKey = &upload.Key
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if product.PhotoKey != nil {
			if delErr := s.photos.DeleteObject(ctx, *product.PhotoKey); delErr != nil {
				log.Errorf("[CatalogService] Failed to clean up photo key=%s err=%v", *product.PhotoKey, delErr)
			}
		}
		if err == model.ErrCategoryNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	log.Printf("[CatalogService] Created product=%d category=%d by user=%d", product.ID, product.CategoryID, actorID)
	return product, nil
}
