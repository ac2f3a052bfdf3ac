package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCartService(t *testing.T) (CartService, *miniredis.Miniredis, *models.Product, *models.Product) {
	t.Helper()
	store, _ := newTestStore(t)
	mr := miniredis.RunT(t)
	client := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	a := createProduct(t, store, "Pelota", "10.00", 5, models.DivisionJugueteria)
	b := createProduct(t, store, "Globo", "1.00", 50, models.DivisionFiestas)
	return NewCartService(client, store, time.Hour, zap.NewNop()), mr, a, b
}

func TestCartAddAndUpdateItems(t *testing.T) {
	svc, mr, a, _ := newCartService(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "c1", models.DivisionJugueteria, a.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, mr.Exists("cart:c1"))
	assert.Equal(t, time.Hour, mr.TTL("cart:c1"))

	cart, err = svc.AddItem(ctx, "c1", models.DivisionJugueteria, a.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	_, err = svc.AddItem(ctx, "c1", models.DivisionJugueteria, a.ID, 2)
	var stockErr *StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 5, stockErr.Available)

	cart, err = svc.SetQuantity(ctx, "c1", a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	cart, err = svc.SetQuantity(ctx, "c1", a.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	stored, err := svc.GetCart(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, stored.Items)

	require.NoError(t, svc.Clear(ctx, "c1"))
	_, err = svc.GetCart(ctx, "c1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestCartRejectsProductsFromAnotherStore(t *testing.T) {
	svc, _, a, b := newCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "c2", models.DivisionJugueteria, b.ID, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.AddItem(ctx, "c2", models.DivisionJugueteria, a.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "c2", models.DivisionFiestas, b.ID, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.AddItem(ctx, "c2", models.DivisionJugueteria, "missing", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.AddItem(ctx, "c2", models.DivisionJugueteria, a.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartExpires(t *testing.T) {
	svc, mr, a, _ := newCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "c3", models.DivisionJugueteria, a.ID, 1)
	require.NoError(t, err)
	mr.FastForward(2 * time.Hour)

	_, err = svc.GetCart(ctx, "c3")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
