package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name     string
	Slug     string
	Division models.Division
}

type ProductInput struct {
	Title                string
	Slug                 string
	Description          string
	Price                decimal.Decimal
	Stock                int
	WholesalePrice       decimal.NullDecimal
	WholesaleMinQuantity int
	DiscountPercentage   int
	IsAvailable          bool
	ImageURL             string
	CategoryID           string
	Division             models.Division
}

type CatalogService interface {
	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	ListCategories(ctx context.Context, division models.Division) ([]models.Category, error)
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, input ProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error)
	AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error)
}

type catalogService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewCatalogService(store repository.Store, logger *zap.Logger) CatalogService {
	return &catalogService{store: store, logger: logger.Named("catalog")}
}

func (s *catalogService) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	division, err := resolveDivision(input.Division)
	if err != nil {
		return nil, err
	}
	categorySlug := Slugify(input.Slug)
	if categorySlug == "" {
		categorySlug = Slugify(name)
	}

	category := &models.Category{ID: uuid.NewString(), Name: name, Slug: categorySlug, Division: division}
	if err := s.store.Categories().Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCategory
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.Info("Category created", zap.String("category_id", category.ID), zap.String("slug", categorySlug))
	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context, division models.Division) ([]models.Category, error) {
	return s.store.Categories().List(ctx, division)
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	product := &models.Product{ID: uuid.NewString()}
	if err := s.applyProductInput(ctx, product, input); err != nil {
		return nil, err
	}
	if input.Stock < 0 {
		return nil, ErrNegativeStock
	}
	product.Stock = input.Stock

	if err := s.store.Products().Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateProduct
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("division", string(product.Division)),
		zap.Int("stock", product.Stock))
	return product, nil
}

// UpdateProduct replaces the descriptive fields. Stock is left alone; use
// AdjustStock to change it.
func (s *catalogService) UpdateProduct(ctx context.Context, id string, input ProductInput) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyProductInput(ctx, product, input); err != nil {
		return nil, err
	}
	if err := s.store.Products().Update(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateProduct
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.GetProduct(ctx, id)
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	return s.store.Products().List(ctx, filter)
}

func (s *catalogService) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	ok, err := s.store.Products().AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	if !ok {
		return nil, ErrNegativeStock
	}
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Stock adjusted", zap.String("product_id", id), zap.Int("delta", delta), zap.Int("stock", product.Stock))
	return product, nil
}

func (s *catalogService) applyProductInput(ctx context.Context, product *models.Product, input ProductInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidProduct)
	}
	if input.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidProduct)
	}
	if input.DiscountPercentage < 0 || input.DiscountPercentage > 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidProduct)
	}
	if input.WholesalePrice.Valid && (input.WholesalePrice.Decimal.IsNegative() || input.WholesaleMinQuantity < 1) {
		return fmt.Errorf("%w: wholesale price needs a minimum quantity", ErrInvalidProduct)
	}
	division, err := resolveDivision(input.Division)
	if err != nil {
		return err
	}
	if input.CategoryID != "" {
		category, err := s.store.Categories().GetByID(ctx, input.CategoryID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		if err != nil {
			return fmt.Errorf("load category: %w", err)
		}
		if category.Division != division {
			return fmt.Errorf("%w: category belongs to another store", ErrInvalidProduct)
		}
	}

	productSlug := Slugify(input.Slug)
	if productSlug == "" {
		productSlug = Slugify(title)
	}

	product.Title = title
	product.Slug = productSlug
	product.Description = strings.TrimSpace(input.Description)
	product.Price = input.Price.Round(2)
	product.WholesalePrice = input.WholesalePrice
	product.WholesaleMinQuantity = input.WholesaleMinQuantity
	product.DiscountPercentage = input.DiscountPercentage
	product.IsAvailable = input.IsAvailable
	product.ImageURL = strings.TrimSpace(input.ImageURL)
	product.CategoryID = input.CategoryID
	product.Division = division
	return nil
}

func resolveDivision(d models.Division) (models.Division, error) {
	if d == "" {
		return models.DefaultDivision, nil
	}
	if !d.Valid() {
		return "", ErrInvalidDivision
	}
	return d, nil
}

// Slugify transliterates s to ASCII and joins its words with dashes.
func Slugify(s string) string {
	return slug.MakeLang(s, "es")
}
