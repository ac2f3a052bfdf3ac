package migrations

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	NotifyEmail   string
	NotifyPhone   string
}

// RunMigrations migrates the schema and creates default data. It never drops
// tables.
func RunMigrations(ctx context.Context, db *gorm.DB, opts SeedOptions, logger *zap.Logger) error {
	logger.Info("Running database migrations")

	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := createDefaultData(ctx, repository.NewStore(db), opts, logger); err != nil {
		logger.Warn("Failed to create default data", zap.Error(err))
	}

	logger.Info("Database migrations completed")
	return nil
}

// createDefaultData creates the store configuration rows and the first
// administrator account.
func createDefaultData(ctx context.Context, store repository.Store, opts SeedOptions, logger *zap.Logger) error {
	for _, division := range []models.Division{models.DivisionJugueteria, models.DivisionFiestas} {
		_, err := store.StoreConfigs().Get(ctx, division)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		cfg := models.DefaultStoreConfig(division)
		cfg.AdminEmail = opts.NotifyEmail
		cfg.AdminPhone = opts.NotifyPhone
		if err := store.StoreConfigs().Save(ctx, cfg); err != nil {
			return fmt.Errorf("create store config %s: %w", division, err)
		}
		logger.Info("Created store config", zap.String("division", string(division)))
	}

	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		return nil
	}

	userService := services.NewUserService(store, logger)
	_, err := userService.Register(ctx, services.RegisterInput{
		Name:     "Administrador",
		Email:    opts.AdminEmail,
		Password: opts.AdminPassword,
		Role:     models.RoleAdmin,
	})
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		logger.Info("Admin user already exists", zap.String("email", opts.AdminEmail))
	case err != nil:
		return fmt.Errorf("create admin user: %w", err)
	default:
		logger.Info("Admin user created", zap.String("email", opts.AdminEmail))
	}
	return nil
}
