package services

import (
	"context"
	"math"
	"strings"

	"stockdesk/internal/adapters/persistence/models"
	"stockdesk/internal/adapters/persistence/repositories"
	"stockdesk/internal/pkg/pagination"

	"go.uber.org/zap"
)

// CatalogService handles the product catalog
type CatalogService struct {
	products repositories.ProductRepository
	log      *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(products repositories.ProductRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{products: products, log: log.Named("catalog")}
}

// AddProductInput represents add product input
type AddProductInput struct {
	Name     string
	Quantity int
	Price    float64
}

// AddProduct validates and stores a product
func (s *CatalogService) AddProduct(ctx context.Context, input AddProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		return nil, validationError("name is required")
	case input.Quantity < 0:
		return nil, validationError("quantity must not be negative")
	case input.Price < 0 || math.IsNaN(input.Price) || math.IsInf(input.Price, 0):
		return nil, validationError("price must be a non-negative number")
	}

	product := &models.Product{
		Name:     name,
		Quantity: input.Quantity,
		Price:    input.Price,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, persistenceError("create product", err)
	}

	s.log.Info("product added", zap.Uint("id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// ListProducts lists products newest first. A negative offset starts at the
// beginning and a non-positive limit uses pagination.DefaultLimit.
func (s *CatalogService) ListProducts(ctx context.Context, offset, limit int) ([]*models.Product, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	products, total, err := s.products.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, persistenceError("list products", err)
	}
	return products, total, nil
}
