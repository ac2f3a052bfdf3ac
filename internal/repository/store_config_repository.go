package repository

import (
	"context"

	"storefront/internal/models"

	"gorm.io/gorm"
)

type StoreConfigRepository interface {
	Get(ctx context.Context, division models.Division) (*models.StoreConfig, error)
	Save(ctx context.Context, config *models.StoreConfig) error
}

type storeConfigRepository struct {
	db *gorm.DB
}

func NewStoreConfigRepository(db *gorm.DB) StoreConfigRepository {
	return &storeConfigRepository{db: db}
}

func (r *storeConfigRepository) Get(ctx context.Context, division models.Division) (*models.StoreConfig, error) {
	var config models.StoreConfig
	err := r.db.WithContext(ctx).Where("division = ?", division).First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *storeConfigRepository) Save(ctx context.Context, config *models.StoreConfig) error {
	return r.db.WithContext(ctx).Save(config).Error
}
