package services

import (
	"context"
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStoreConfigDefaultsAndUpdates(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	svc := NewStoreService(store, zap.NewNop())

	cfg, err := svc.GetConfig(ctx, models.DivisionFiestas)
	require.NoError(t, err)
	assert.Equal(t, "FiestasYa", cfg.DisplayName)
	assert.True(t, cfg.ShippingCost.IsZero())

	_, err = svc.UpdateConfig(ctx, models.DivisionFiestas, StoreConfigInput{ShippingCost: dec("10"), FreeShippingMin: dec("100"), AdminPhone: "5491100000000"})
	require.NoError(t, err)

	cfg, err = svc.GetConfig(ctx, models.DivisionFiestas)
	require.NoError(t, err)
	assert.True(t, cfg.ShippingCost.Equal(dec("10")))
	assert.True(t, cfg.FreeShippingMin.Equal(dec("100")))
	assert.Equal(t, "5491100000000", cfg.AdminPhone)
	assert.Equal(t, "FiestasYa", cfg.DisplayName)

	_, err = svc.UpdateConfig(ctx, models.DivisionFiestas, StoreConfigInput{ShippingCost: dec("-1")})
	assert.ErrorIs(t, err, ErrInvalidStoreConfig)
	_, err = svc.UpdateConfig(ctx, "OTRA", StoreConfigInput{})
	assert.ErrorIs(t, err, ErrInvalidDivision)
}
