package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type StoreConfigInput struct {
	DisplayName     string
	ShippingCost    decimal.Decimal
	FreeShippingMin decimal.Decimal
	AdminEmail      string
	AdminPhone      string
}

type StoreService interface {
	GetConfig(ctx context.Context, division models.Division) (*models.StoreConfig, error)
	UpdateConfig(ctx context.Context, division models.Division, input StoreConfigInput) (*models.StoreConfig, error)
}

type storeService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewStoreService(store repository.Store, logger *zap.Logger) StoreService {
	return &storeService{store: store, logger: logger.Named("stores")}
}

func (s *storeService) GetConfig(ctx context.Context, division models.Division) (*models.StoreConfig, error) {
	division, err := resolveDivision(division)
	if err != nil {
		return nil, err
	}
	return loadStoreConfig(ctx, s.store, division)
}

func (s *storeService) UpdateConfig(ctx context.Context, division models.Division, input StoreConfigInput) (*models.StoreConfig, error) {
	if division == "" || !division.Valid() {
		return nil, ErrInvalidDivision
	}
	if input.ShippingCost.IsNegative() || input.FreeShippingMin.IsNegative() {
		return nil, fmt.Errorf("%w: amounts cannot be negative", ErrInvalidStoreConfig)
	}

	cfg, err := loadStoreConfig(ctx, s.store, division)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.DisplayName); name != "" {
		cfg.DisplayName = name
	}
	cfg.ShippingCost = input.ShippingCost.Round(2)
	cfg.FreeShippingMin = input.FreeShippingMin.Round(2)
	cfg.AdminEmail = strings.TrimSpace(input.AdminEmail)
	cfg.AdminPhone = strings.TrimSpace(input.AdminPhone)
	cfg.UpdatedAt = time.Now()

	if err := s.store.StoreConfigs().Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("save store config: %w", err)
	}
	s.logger.Info("Store config updated", zap.String("division", string(division)))
	return cfg, nil
}
