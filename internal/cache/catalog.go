package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"marketforum/internal/model"
)

const (
	productKeyPrefix = "catalog:product:"
	categoriesKey    = "catalog:categories"
)

// CatalogCache holds read-mostly catalog pages. Forum data is never cached.
type CatalogCache interface {
	// GetProduct returns (nil, nil) on a miss.
	GetProduct(ctx context.Context, productID int64) (*model.ProductDetail, error)
	SetProduct(ctx context.Context, detail *model.ProductDetail) error
	InvalidateProduct(ctx context.Context, productID int64) error

	// GetCategories returns (nil, nil) on a miss.
	GetCategories(ctx context.Context) ([]model.Category, error)
	SetCategories(ctx context.Context, categories []model.Category) error
	InvalidateCategories(ctx context.Context) error
}

// RedisCatalogCache stores JSON snapshots with a fixed TTL.
type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) CatalogCache {
	return &RedisCatalogCache{client: client, ttl: ttl}
}

func productKey(productID int64) string {
	return fmt.Sprintf("%s%d", productKeyPrefix, productID)
}

func (c *RedisCatalogCache) GetProduct(ctx context.Context, productID int64) (*model.ProductDetail, error) {
	var detail model.ProductDetail
	found, err := c.get(ctx, productKey(productID), &detail)
	if err != nil || !found {
		return nil, err
	}
	return &detail, nil
}

func (c *RedisCatalogCache) SetProduct(ctx context.Context, detail *model.ProductDetail) error {
	return c.set(ctx, productKey(detail.ID), detail)
}

func (c *RedisCatalogCache) InvalidateProduct(ctx context.Context, productID int64) error {
	return c.del(ctx, productKey(productID))
}

func (c *RedisCatalogCache) GetCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	found, err := c.get(ctx, categoriesKey, &categories)
	if err != nil || !found {
		return nil, err
	}
	return categories, nil
}

func (c *RedisCatalogCache) SetCategories(ctx context.Context, categories []model.Category) error {
	return c.set(ctx, categoriesKey, categories)
}

func (c *RedisCatalogCache) InvalidateCategories(ctx context.Context) error {
	return c.del(ctx, categoriesKey)
}

func (c *RedisCatalogCache) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		log.Debugf("[CatalogCache] miss key=%s", key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// A snapshot from an older build; drop it and treat as a miss.
		log.Warnf("[CatalogCache] discarding undecodable entry key=%s err=%v", key, err)
		c.client.Del(ctx, key)
		return false, nil
	}
	log.Debugf("[CatalogCache] hit key=%s", key)
	return true, nil
}

func (c *RedisCatalogCache) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCatalogCache) del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache del %s: %w", key, err)
	}
	return nil
}
