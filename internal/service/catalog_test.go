package service

import (
	"context"
	"io"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketforum/internal/model"
)

type mockCategoryRepository struct {
	categories []model.Category
	listCalls  int
}

func (m *mockCategoryRepository) Create(ctx context.Context, name string) (*model.Category, error) {
	c := model.Category{ID: int64(len(m.categories) + 1), Name: name}
	m.categories = append(m.categories, c)
	return &c, nil
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, model.ErrCategoryNotFound
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	m.listCalls++
	return append([]model.Category{}, m.categories...), nil
}

type mockProductRepository struct {
	products    map[int64]model.Product
	createErr   error
	searchCalls int
	getCalls    int
}

func (m *mockProductRepository) Create(ctx context.Context, p *model.Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	p.ID = int64(len(m.products) + 1)
	m.products[p.ID] = *p
	return nil
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	m.getCalls++
	p, ok := m.products[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	return &p, nil
}

func (m *mockProductRepository) List(ctx context.Context, categoryID *int64) ([]model.Product, error) {
	var out []model.Product
	for _, p := range m.products {
		if categoryID == nil || p.CategoryID == *categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepository) SearchByName(ctx context.Context, query string, limit int) ([]model.Product, error) {
	m.searchCalls++
	var out []model.Product
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepository) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := m.products[id]
	return ok, nil
}

type mockReviewRepository struct {
	reviews []model.Review
}

func (m *mockReviewRepository) Create(ctx context.Context, productID, userID int64, text string) (*model.Review, error) {
	if productID == 404 {
		return nil, model.ErrProductNotFound
	}
	r := model.Review{ID: int64(len(m.reviews) + 1), ProductID: productID, UserID: userID, Text: text}
	m.reviews = append(m.reviews, r)
	return &r, nil
}

func (m *mockReviewRepository) ListByProduct(ctx context.Context, productID int64) ([]model.Review, error) {
	var out []model.Review
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

// memoryCatalogCache satisfies cache.CatalogCache with plain maps.
type memoryCatalogCache struct {
	products   map[int64]*model.ProductDetail
	categories []model.Category
}

func newMemoryCatalogCache() *memoryCatalogCache {
	return &memoryCatalogCache{products: make(map[int64]*model.ProductDetail)}
}

func (c *memoryCatalogCache) GetProduct(ctx context.Context, productID int64) (*model.ProductDetail, error) {
	return c.products[productID], nil
}

func (c *memoryCatalogCache) SetProduct(ctx context.Context, detail *model.ProductDetail) error {
	c.products[detail.ID] = detail
	return nil
}

func (c *memoryCatalogCache) InvalidateProduct(ctx context.Context, productID int64) error {
	delete(c.products, productID)
	return nil
}

func (c *memoryCatalogCache) GetCategories(ctx context.Context) ([]model.Category, error) {
	return c.categories, nil
}

func (c *memoryCatalogCache) SetCategories(ctx context.Context, categories []model.Category) error {
	c.categories = categories
	return nil
}

func (c *memoryCatalogCache) InvalidateCategories(ctx context.Context) error {
	c.categories = nil
	return nil
}

type fakePhotoStore struct {
	uploaded []string
	deleted  []string
	err      error
}

func (f *fakePhotoStore) UploadProductPhoto(ctx context.Context, file io.Reader, header *multipart.FileHeader) (*model.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	key := "products/photo.jpg"
	f.uploaded = append(f.uploaded, key)
	return &model.UploadResult{URL: "https://cdn.example/" + key, Key: key}, nil
}

func (f *fakePhotoStore) DeleteObject(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type catalogFixture struct {
	categories *mockCategoryRepository
	products   *mockProductRepository
	reviews    *mockReviewRepository
	cache      *memoryCatalogCache
	photos     *fakePhotoStore
	svc        *CatalogService
}

const (
	adminID   int64 = 1
	shopperID int64 = 2
)

func newCatalogFixture() *catalogFixture {
	users := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, IsAdmin: id == adminID}, nil
		},
		getSummariesFn: func(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error) {
			out := make(map[int64]model.UserSummary)
			for _, id := range ids {
				out[id] = model.UserSummary{ID: id, Username: "shopper"}
			}
			return out, nil
		},
	}
	f := &catalogFixture{
		categories: &mockCategoryRepository{},
		products:   &mockProductRepository{products: make(map[int64]model.Product)},
		reviews:    &mockReviewRepository{},
		cache:      newMemoryCatalogCache(),
		photos:     &fakePhotoStore{},
	}
	f.svc = NewCatalogService(f.categories, f.products, f.reviews, users, f.cache, f.photos)
	return f
}

func TestCatalogService_Search(t *testing.T) {
	f := newCatalogFixture()
	f.products.products[1] = model.Product{ID: 1, Name: "Blue Mug"}
	f.products.products[2] = model.Product{ID: 2, Name: "Red Plate"}

	got, err := f.svc.Search(context.Background(), "mug")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Blue Mug", got[0].Name)

	empty, err := f.svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.Equal(t, 1, f.products.searchCalls, "empty query should not reach the store")
}

func TestCatalogService_CreateCategory_RequiresAdmin(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.svc.CreateCategory(context.Background(), shopperID, &model.CreateCategoryRequest{Name: "Kitchen"})
	assert.ErrorIs(t, err, model.ErrNotAdmin)
	assert.Empty(t, f.categories.categories)
}

func TestCatalogService_CreateCategory_InvalidatesCache(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	_, err := f.svc.ListCategories(ctx)
	require.NoError(t, err)
	_, err = f.svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.categories.listCalls, "second list should be served from cache")

	_, err = f.svc.CreateCategory(ctx, adminID, &model.CreateCategoryRequest{Name: "Kitchen"})
	require.NoError(t, err)

	categories, err := f.svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.categories.listCalls)
	require.Len(t, categories, 1)
	assert.Equal(t, "Kitchen", categories[0].Name)
}

func TestCatalogService_CreateCategory_Validation(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.svc.CreateCategory(context.Background(), adminID, &model.CreateCategoryRequest{Name: " "})
	assert.ErrorIs(t, err, model.ErrNameRequired)

	_, err = f.svc.CreateCategory(context.Background(), adminID, &model.CreateCategoryRequest{Name: strings.Repeat("n", 101)})
	assert.ErrorIs(t, err, model.ErrNameTooLong)
}

func TestCatalogService_GetProduct_CachedUntilReview(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	f.products.products[1] = model.Product{ID: 1, Name: "Blue Mug", PriceCents: 500}
	reviewSvc := NewReviewService(f.reviews, &mockUserRepository{}, f.cache)

	detail, err := f.svc.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, detail.Reviews)

	_, err = f.svc.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.products.getCalls)

	_, err = reviewSvc.AddReview(ctx, 1, shopperID, &model.CreateReviewRequest{Text: "Great mug"})
	require.NoError(t, err)

	detail, err = f.svc.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, f.products.getCalls)
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, "Great mug", detail.Reviews[0].Text)
}

func TestCatalogService_GetProduct_NotFound(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.svc.GetProduct(context.Background(), 9)
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestCatalogService_CreateProduct(t *testing.T) {
	f := newCatalogFixture()
	req := &model.CreateProductRequest{CategoryID: 1, Name: " Blue Mug ", PriceCents: 500}

	product, err := f.svc.CreateProduct(context.Background(), adminID, req, &PhotoUpload{
		File:   strings.NewReader("img"),
		Header: &multipart.FileHeader{Filename: "mug.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Blue Mug", product.Name)
	require.NotNil(t, product.PhotoURL)
	assert.Equal(t, "https://cdn.example/products/photo.jpg", *product.PhotoURL)
}

func TestCatalogService_CreateProduct_CleansUpPhotoOnFailure(t *testing.T) {
	f := newCatalogFixture()
	f.products.createErr = model.ErrCategoryNotFound

	_, err := f.svc.CreateProduct(context.Background(), adminID,
		&model.CreateProductRequest{CategoryID: 99, Name: "Mug", PriceCents: 500},
		&PhotoUpload{File: strings.NewReader("img"), Header: &multipart.FileHeader{}},
	)

	assert.ErrorIs(t, err, model.ErrCategoryNotFound)
	assert.Equal(t, f.photos.uploaded, f.photos.deleted)
}

func TestCatalogService_CreateProduct_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		actorID int64
		req     model.CreateProductRequest
		photoFn func(f *catalogFixture) *PhotoUpload
		wantErr error
	}{
		{
			name:    "not admin",
			actorID: shopperID,
			req:     model.CreateProductRequest{Name: "Mug", PriceCents: 1},
			wantErr: model.ErrNotAdmin,
		},
		{
			name:    "non-positive price",
			actorID: adminID,
			req:     model.CreateProductRequest{Name: "Mug", PriceCents: 0},
			wantErr: model.ErrInvalidPrice,
		},
		{
			name:    "description too long",
			actorID: adminID,
			req:     model.CreateProductRequest{Name: "Mug", PriceCents: 1, Description: strings.Repeat("d", 601)},
			wantErr: model.ErrDescriptionTooLong,
		},
		{
			name:    "bad photo",
			actorID: adminID,
			req:     model.CreateProductRequest{Name: "Mug", PriceCents: 1},
			photoFn: func(f *catalogFixture) *PhotoUpload {
				f.photos.err = model.ErrInvalidImageType
				return &PhotoUpload{File: strings.NewReader("x"), Header: &multipart.FileHeader{}}
			},
			wantErr: model.ErrInvalidImageType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()
			var photo *PhotoUpload
			if tt.photoFn != nil {
				photo = tt.photoFn(f)
			}

			_, err := f.svc.CreateProduct(context.Background(), tt.actorID, &tt.req, photo)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.products.products)
		})
	}
}

func TestCatalogService_CreateProduct_PhotoWithoutStorage(t *testing.T) {
	f := newCatalogFixture()
	svc := NewCatalogService(f.categories, f.products, f.reviews, &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, IsAdmin: true}, nil
		},
	}, nil, nil)

	_, err := svc.CreateProduct(context.Background(), adminID,
		&model.CreateProductRequest{Name: "Mug", PriceCents: 1},
		&PhotoUpload{File: strings.NewReader("x"), Header: &multipart.FileHeader{}},
	)
	assert.ErrorIs(t, err, model.ErrMediaNotConfigured)
}

func TestReviewService_AddReview_Validation(t *testing.T) {
	svc := NewReviewService(&mockReviewRepository{}, &mockUserRepository{}, nil)
	ctx := context.Background()

	_, err := svc.AddReview(ctx, 1, shopperID, &model.CreateReviewRequest{Text: ""})
	assert.ErrorIs(t, err, model.ErrReviewRequired)

	_, err = svc.AddReview(ctx, 1, shopperID, &model.CreateReviewRequest{Text: strings.Repeat("r", 601)})
	assert.ErrorIs(t, err, model.ErrReviewTooLong)

	_, err = svc.AddReview(ctx, 404, shopperID, &model.CreateReviewRequest{Text: "ok"})
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}
