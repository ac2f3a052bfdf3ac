package services

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/audit"
	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProcessSaleCreatesDeliveredPaidOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	globo := createProduct(t, store, "Globo", "1.50", 100, models.DivisionFiestas)
	recorder := &memoryRecorder{}
	svc := NewPOSService(store, recorder, zap.NewNop())

	order, err := svc.ProcessSale(ctx, POSSaleInput{
		Items:         []LineInput{line(globo, 10)},
		Division:      models.DivisionFiestas,
		PaymentMethod: PaymentCard,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderDelivered, order.Status)
	assert.True(t, order.IsPaid)
	assert.NotNil(t, order.PaidAt)
	assert.Equal(t, models.SourcePOS, order.Source)
	assert.Equal(t, models.DeliveryPickup, order.DeliveryMethod)
	assert.Equal(t, "Mostrador", order.ClientName)
	assert.Equal(t, "POS-CARD", order.PaymentReference)
	assert.True(t, order.Total.Equal(dec("15.00")), order.Total.String())
	assert.Equal(t, 90, stockOf(t, store, globo.ID))
	assert.Equal(t, []string{audit.ActionPOSSale}, recorder.actions())
}

func TestProcessSaleInsufficientStock(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	globo := createProduct(t, store, "Globo", "1.50", 3, models.DivisionFiestas)
	vela := createProduct(t, store, "Vela", "2.00", 10, models.DivisionFiestas)
	svc := NewPOSService(store, nil, zap.NewNop())

	_, err := svc.ProcessSale(ctx, POSSaleInput{
		Items:    []LineInput{line(vela, 2), line(globo, 4)},
		Division: models.DivisionFiestas,
	})
	var stockErr *StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, globo.ID, stockErr.ProductID)
	assert.Zero(t, countOrders(t, db))
	assert.Equal(t, 3, stockOf(t, store, globo.ID))
	assert.Equal(t, 10, stockOf(t, store, vela.ID))
}

func TestProcessSaleRejectsUnknownPaymentMethod(t *testing.T) {
	store, _ := newTestStore(t)
	globo := createProduct(t, store, "Globo", "1.50", 3, models.DivisionFiestas)
	svc := NewPOSService(store, nil, zap.NewNop())

	_, err := svc.ProcessSale(context.Background(), POSSaleInput{
		Items:         []LineInput{line(globo, 1)},
		Division:      models.DivisionFiestas,
		PaymentMethod: "BITCOIN",
	})
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	assert.Equal(t, 3, stockOf(t, store, globo.ID))
}
