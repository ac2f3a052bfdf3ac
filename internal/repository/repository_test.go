package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"storefront/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return NewStore(db)
}

func newProduct(t *testing.T, store Store, id string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:          id,
		Title:       "Producto " + id,
		Slug:        "producto-" + id,
		Price:       decimal.NewFromInt(10),
		Stock:       stock,
		IsAvailable: true,
		Division:    models.DivisionJugueteria,
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func TestDecrementStockIsConditional(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	newProduct(t, store, "p1", 3)

	ok, err := store.Products().DecrementStock(ctx, "p1", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Products().DecrementStock(ctx, "p1", 2)
	require.NoError(t, err)
	assert.False(t, ok, "only one unit left")

	ok, err = store.Products().DecrementStock(ctx, "missing", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)
}

func TestAdjustStock(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	newProduct(t, store, "p1", 1)

	ok, err := store.Products().AdjustStock(ctx, "p1", 4)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.Products().AdjustStock(ctx, "p1", -6)
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

func TestTransactionRollsBackEveryWrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	newProduct(t, store, "p1", 5)
	newProduct(t, store, "p2", 5)

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx Store) error {
		if _, err := tx.Products().DecrementStock(ctx, "p1", 2); err != nil {
			return err
		}
		if _, err := tx.Products().DecrementStock(ctx, "p2", 2); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	for _, id := range []string{"p1", "p2"} {
		p, err := store.Products().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 5, p.Stock, id)
	}
}

func TestOrderCreateAndQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	newProduct(t, store, "p1", 5)
	user := "u1"

	for i, status := range []models.OrderStatus{models.OrderPending, models.OrderPaid, models.OrderPending} {
		order := &models.Order{
			ID:             fmt.Sprintf("o%d", i),
			ClientName:     "Ana",
			Status:         status,
			DeliveryMethod: models.DeliveryPickup,
			Division:       models.DivisionJugueteria,
			Source:         models.SourceOnline,
			Items: []models.OrderItem{
				{ProductID: "p1", ProductTitle: "Producto p1", Quantity: 1, UnitPrice: decimal.NewFromInt(10), LineTotal: decimal.NewFromInt(10)},
			},
		}
		if i == 0 {
			order.UserID = &user
		}
		require.NoError(t, store.Orders().Create(ctx, order))
	}

	got, err := store.Orders().GetByID(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1", got.Items[0].ProductID)

	items, err := store.OrderItems().GetByOrderID(ctx, "o1")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	pending, total, err := store.Orders().List(ctx, OrderFilter{Status: models.OrderPending})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, pending, 2)

	page, total, err := store.Orders().List(ctx, OrderFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 1)

	mine, err := store.Orders().GetByUserID(ctx, user)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = store.Orders().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCouponIncrementUsageHonorsCap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	limit := 1
	coupon := &models.Coupon{Code: "UNO", DiscountType: models.DiscountFixed, Value: decimal.NewFromInt(5), MaxUses: &limit, IsActive: true}
	require.NoError(t, store.Coupons().Create(ctx, coupon))

	ok, err := store.Coupons().IncrementUsage(ctx, coupon.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.Coupons().IncrementUsage(ctx, coupon.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	unlimited := &models.Coupon{Code: "LIBRE", DiscountType: models.DiscountFixed, Value: decimal.NewFromInt(5), IsActive: true}
	require.NoError(t, store.Coupons().Create(ctx, unlimited))
	for i := 0; i < 3; i++ {
		ok, err = store.Coupons().IncrementUsage(ctx, unlimited.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestStoreConfigSaveIsUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	cfg := models.DefaultStoreConfig(models.DivisionFiestas)
	require.NoError(t, store.StoreConfigs().Save(ctx, cfg))
	cfg.ShippingCost = decimal.NewFromInt(12)
	require.NoError(t, store.StoreConfigs().Save(ctx, cfg))

	got, err := store.StoreConfigs().Get(ctx, models.DivisionFiestas)
	require.NoError(t, err)
	assert.True(t, got.ShippingCost.Equal(decimal.NewFromInt(12)))
	assert.NoError(t, store.Ping(ctx))
}
