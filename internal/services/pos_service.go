package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/audit"
	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentTransfer
}

const defaultCounterClient = "Mostrador"

type POSSaleInput struct {
	Items         []LineInput
	Division      models.Division
	PaymentMethod PaymentMethod
	ClientName    string
	ClientPhone   string
	Notes         string
}

type POSService interface {
	ProcessSale(ctx context.Context, input POSSaleInput) (*models.Order, error)
}

type posService struct {
	store  repository.Store
	audit  audit.Recorder
	logger *zap.Logger
	now    func() time.Time
}

func NewPOSService(store repository.Store, recorder audit.Recorder, logger *zap.Logger) POSService {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &posService{store: store, audit: recorder, logger: logger.Named("pos"), now: time.Now}
}

// ProcessSale records a counter sale. The goods leave the store with the
// customer, so the order is created delivered and paid, and stock is taken
// under the same rules as an online checkout.
func (s *posService) ProcessSale(ctx context.Context, input POSSaleInput) (*models.Order, error) {
	lines, err := mergeLines(input.Items)
	if err != nil {
		return nil, err
	}
	division := input.Division
	if division == "" {
		division = models.DefaultDivision
	}
	if !division.Valid() {
		return nil, ErrInvalidDivision
	}
	method := input.PaymentMethod
	if method == "" {
		method = PaymentCash
	}
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	clientName := strings.TrimSpace(input.ClientName)
	if clientName == "" {
		clientName = defaultCounterClient
	}

	var order *models.Order
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		res, err := reserveStock(ctx, tx, lines, division)
		if err != nil {
			return err
		}

		now := s.now()
		order = &models.Order{
			ID:               uuid.NewString(),
			ClientName:       clientName,
			ClientPhone:      strings.TrimSpace(input.ClientPhone),
			Subtotal:         res.subtotal,
			Discount:         decimal.Zero,
			ShippingCost:     decimal.Zero,
			Total:            res.subtotal,
			ItemsInOrder:     res.itemCount,
			DeliveryMethod:   models.DeliveryPickup,
			Notes:            strings.TrimSpace(input.Notes),
			Division:         division,
			Source:           models.SourcePOS,
			PaymentReference: "POS-" + string(method),
			Items:            res.items,
		}
		order.ApplyStatus(models.OrderDelivered, now)
		if err := tx.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("create pos order: %w", err)
		}
		return nil
	})
	if err != nil {
		if IsBusinessError(err) {
			s.logger.Info("POS sale rejected", zap.Error(err))
		} else {
			s.logger.Error("POS sale failed", zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("POS sale recorded",
		zap.String("order_id", order.ID),
		zap.String("payment_method", string(method)),
		zap.String("total", order.Total.StringFixed(2)))
	recordAudit(ctx, s.audit, s.logger, audit.ActionPOSSale, order.ID, bson.M{
		"total":          order.Total.StringFixed(2),
		"items":          order.ItemsInOrder,
		"payment_method": string(method),
		"division":       string(order.Division),
	})
	return order, nil
}
