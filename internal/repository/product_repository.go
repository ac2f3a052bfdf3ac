package repository

import (
	"context"
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
)

type ProductFilter struct {
	Division      models.Division
	CategoryID    string
	AvailableOnly bool
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	DecrementStock(ctx context.Context, id string, quantity int) (bool, error)
	IncrementStock(ctx context.Context, id string, quantity int) (bool, error)
	AdjustStock(ctx context.Context, id string, delta int) (bool, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	// stock is owned by the stock methods below
	return r.db.WithContext(ctx).Model(product).Select("*").Omit("stock", "created_at").Updates(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	var products []models.Product
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.Division != "" {
		query = query.Where("division = ?", filter.Division)
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	err := query.Order("title ASC").Find(&products).Error
	return products, err
}

// DecrementStock takes quantity units only if that many are on hand. It
// reports false, without error, when the product has fewer units or does not
// exist.
func (r *productRepository) DecrementStock(ctx context.Context, id string, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepository) IncrementStock(ctx context.Context, id string, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", quantity),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AdjustStock applies a signed delta and refuses any change that would leave
// the stock below zero.
func (r *productRepository) AdjustStock(ctx context.Context, id string, delta int) (bool, error) {
	if delta < 0 {
		return r.DecrementStock(ctx, id, -delta)
	}
	return r.IncrementStock(ctx, id, delta)
}
