package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jkstudio99/DropStockAPI/internal/domain"
	"github.com/jkstudio99/DropStockAPI/internal/repository"
	apperrors "github.com/jkstudio99/DropStockAPI/pkg/errors"
	"github.com/jkstudio99/DropStockAPI/pkg/pagination"
)

// ProductCache is the read cache in front of the product store. A miss is
// reported as ErrNotFound.
type ProductCache interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	Set(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
}

// CategoryService implements the business logic for category management.
type CategoryService struct {
	repo   repository.CategoryRepository
	logger *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger}
}

// CategoryInput holds the parameters for creating or updating a category.
type CategoryInput struct {
	Name   string
	Status int
}

// Create adds a new category.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	now := time.Now().UTC()
	category := &domain.Category{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Status:    input.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("name", category.Name),
	)

	return category, nil
}

// Get retrieves a category by ID.
func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return category, nil
}

// List returns a page of categories filtered by an optional name substring.
func (s *CategoryService) List(ctx context.Context, params pagination.Params, search string) (pagination.Result[domain.Category], error) {
	categories, total, err := s.repo.List(ctx, params, search)
	if err != nil {
		return pagination.Result[domain.Category]{}, fmt.Errorf("list categories: %w", err)
	}
	return pagination.NewResult(categories, total, params), nil
}

// Update modifies an existing category.
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.Status = input.Status

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	return category, nil
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "category deleted", slog.String("category_id", id))
	return nil
}

// --- Product Service ---

// ProductService implements the business logic for product management with a
// cache-aside read path.
type ProductService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cache        ProductCache
	logger       *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	cache ProductCache,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:         repo,
		categoryRepo: categoryRepo,
		cache:        cache,
		logger:       logger,
	}
}

// ProductInput holds the parameters for creating or updating a product.
type ProductInput struct {
	Name          string
	Description   string
	Price         int64
	StockQuantity int
	CategoryID    string
}

// Create adds a new product after checking the category exists.
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		return nil, apperrors.InvalidInput("category does not exist")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:            uuid.New().String(),
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		CategoryID:    input.CategoryID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// Get retrieves a product by ID, preferring the cache. Cache failures fall
// through to the store.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if cached, err := s.cache.Get(ctx, id); err == nil {
		return cached, nil
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, product); err != nil {
		s.logger.WarnContext(ctx, "failed to cache product",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	return product, nil
}

// List returns a page of products filtered by an optional name substring.
// Listings always hit the store; only single lookups are cached.
func (s *ProductService) List(ctx context.Context, params pagination.Params, search string) (pagination.Result[domain.Product], error) {
	products, total, err := s.repo.List(ctx, params, search)
	if err != nil {
		return pagination.Result[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return pagination.NewResult(products, total, params), nil
}

// Update modifies an existing product and invalidates its cache entry.
func (s *ProductService) Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != product.CategoryID {
		if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
			return nil, apperrors.InvalidInput("category does not exist")
		}
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.StockQuantity = input.StockQuantity
	product.CategoryID = input.CategoryID

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate product cache",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	return product, nil
}

// Delete removes a product and invalidates its cache entry.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate product cache",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}
