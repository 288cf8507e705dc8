package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Majorzinnn/botDC/models"
	"github.com/Majorzinnn/botDC/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	productListCachePrefix = "products:v:"
	productCacheVersionKey = "products:version"
	productCacheTTL        = 5 * time.Minute
)

// CatalogService is the product catalog surface: CRUD for the dashboard
// plus the stock mutations the fulfillment path needs. List reads go
// through a versioned Redis cache; every write bumps the version so
// stale pages die without explicit key bookkeeping.
type CatalogService struct {
	repo   repository.ProductRepository
	cache  *redis.Client
	logger *zap.Logger
}

func NewCatalogService(repo repository.ProductRepository, cache *redis.Client, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, logger: logger}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	if cached, ok := s.cachedList(ctx); ok {
		return cached, nil
	}

	products, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	s.storeList(ctx, products)
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.FindActiveByID(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req *models.ProductCreateRequest) (*models.Product, error) {
	category := req.Category
	if category == "" {
		category = "general"
	}

	product := &models.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    category,
		Stock:       req.Stock,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DecrementStock implements StockKeeper for the fulfillment path.
func (s *CatalogService) DecrementStock(ctx context.Context, id string, qty int) error {
	err := s.repo.DecrementStock(ctx, id, qty)
	if err == nil || errors.Is(err, repository.ErrInsufficientStock) {
		s.invalidate(ctx)
	}
	return err
}

// ClampStockToZero implements StockKeeper.
func (s *CatalogService) ClampStockToZero(ctx context.Context, id string) error {
	err := s.repo.ClampStockToZero(ctx, id)
	if err == nil {
		s.invalidate(ctx)
	}
	return err
}

func (s *CatalogService) cachedList(ctx context.Context) ([]models.Product, bool) {
	if s.cache == nil {
		return nil, false
	}

	version, err := s.cache.Get(ctx, productCacheVersionKey).Int64()
	if err != nil || version == 0 {
		return nil, false
	}

	data, err := s.cache.Get(ctx, listCacheKey(version)).Result()
	if err != nil {
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal([]byte(data), &products); err != nil {
		s.logger.Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return products, true
}

func (s *CatalogService) storeList(ctx context.Context, products []models.Product) {
	if s.cache == nil {
		return
	}

	version, err := s.cache.Get(ctx, productCacheVersionKey).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return
		}
		version = 1
		if err := s.cache.Set(ctx, productCacheVersionKey, version, 0).Err(); err != nil {
			return
		}
	}

	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, listCacheKey(version), data, productCacheTTL).Err(); err != nil {
		s.logger.Warn("Failed to cache product list", zap.Error(err))
	}
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, productCacheVersionKey).Err(); err != nil {
		s.logger.Warn("Failed to bump product cache version", zap.Error(err))
	}
}

func listCacheKey(version int64) string {
	return fmt.Sprintf("%s%d:active", productListCachePrefix, version)
}
