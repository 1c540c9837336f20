package repositories

import (
	"context"

	"stockdesk/internal/adapters/persistence/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// productRepository implements ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a new product
func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(product).Error, "productRepo.Create")
}

// List lists products newest first with pagination
func (r *productRepository) List(ctx context.Context, offset, limit int) ([]*models.Product, int64, error) {
	var products []*models.Product
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "productRepo.List.Count")
	}

	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, errors.Wrap(err, "productRepo.List.Find")
	}

	return products, total, nil
}

// Count counts all products
func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, errors.Wrap(err, "productRepo.Count")
}
