package services

import (
	"context"
	"errors"
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
	"gorm.io/gorm"
)

type PlaceOrderInput struct {
	ClientName      string
	ClientPhone     string
	DeliveryMethod  models.DeliveryMethod
	ShippingAddress string
	Notes           string
	CouponCode      string
	Division        models.Division
	UserID          *string
	Items           []LineInput
}

type OrderService interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error)
	ConfirmPayment(ctx context.Context, orderID, paymentReference string) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, int64, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	History(ctx context.Context, orderID string) ([]*audit.Entry, error)
}

type OrderServiceOptions struct {
	NotifyTimeout time.Duration
	Now           func() time.Time
}

type orderService struct {
	store         repository.Store
	notifier      Notifier
	audit         audit.Recorder
	logger        *zap.Logger
	notifyTimeout time.Duration
	now           func() time.Time
}

func NewOrderService(store repository.Store, notifier Notifier, recorder audit.Recorder, logger *zap.Logger, opts OrderServiceOptions) OrderService {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 5 * time.Second
	}
	return &orderService{
		store:         store,
		notifier:      notifier,
		audit:         recorder,
		logger:        logger.Named("orders"),
		notifyTimeout: opts.NotifyTimeout,
		now:           opts.Now,
	}
}

// PlaceOrder validates the cart against current stock and, in one
// transaction, takes the stock, redeems the coupon and writes the order.
// Nothing is persisted unless every line can be served.
func (s *orderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
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

	method := input.DeliveryMethod
	if method == "" {
		method = models.DeliveryPickup
	}
	address := strings.TrimSpace(input.ShippingAddress)
	if method == models.DeliveryShipping && address == "" {
		return nil, ErrShippingAddressRequired
	}
	if method == models.DeliveryPickup {
		address = ""
	}

	var order *models.Order
	var storeCfg *models.StoreConfig
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		storeCfg, err = loadStoreConfig(ctx, tx, division)
		if err != nil {
			return err
		}

		res, err := reserveStock(ctx, tx, lines, division)
		if err != nil {
			return err
		}

		discount := decimal.Zero
		couponCode := ""
		if code := normalizeCouponCode(input.CouponCode); code != "" {
			coupon, err := redeemCoupon(ctx, tx, code, division, s.now())
			if err != nil {
				return err
			}
			discount = coupon.DiscountFor(res.subtotal)
			couponCode = coupon.Code
		}

		net := res.subtotal.Sub(discount)
		shipping := storeCfg.ShippingFor(method, net)

		order = &models.Order{
			ID:              uuid.NewString(),
			ClientName:      strings.TrimSpace(input.ClientName),
			ClientPhone:     strings.TrimSpace(input.ClientPhone),
			Subtotal:        res.subtotal,
			Discount:        discount,
			CouponCode:      couponCode,
			ShippingCost:    shipping,
			Total:           net.Add(shipping),
			ItemsInOrder:    res.itemCount,
			Status:          models.OrderPending,
			DeliveryMethod:  method,
			ShippingAddress: address,
			Notes:           strings.TrimSpace(input.Notes),
			Division:        division,
			Source:          models.SourceOnline,
			UserID:          input.UserID,
			Items:           res.items,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("Checkout failed", err)
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("division", string(order.Division)),
		zap.Int("items", order.ItemsInOrder),
		zap.String("total", order.Total.StringFixed(2)))

	s.record(ctx, audit.ActionOrderCreated, order.ID, bson.M{
		"total":    order.Total.StringFixed(2),
		"items":    order.ItemsInOrder,
		"division": string(order.Division),
		"coupon":   order.CouponCode,
	})
	s.notify(ctx, order, storeCfg)

	return order, nil
}

// UpdateStatus moves an order between states and keeps stock consistent:
// cancelling returns the units, reactivating a cancelled order takes them
// again and is refused as a whole if any product is short.
func (s *orderService) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var order *models.Order
	var previous models.OrderStatus
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		order, err = tx.Orders().GetByID(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}
		previous = order.Status

		items, err := tx.OrderItems().GetByOrderID(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("load order items: %w", err)
		}

		switch {
		case previous.Active() && status == models.OrderCancelled:
			if err := restock(ctx, tx, items, s.logger); err != nil {
				return err
			}
		case !previous.Active() && status.Active():
			if err := retake(ctx, tx, items); err != nil {
				return err
			}
		}

		now := s.now()
		order.ApplyStatus(status, now)
		order.UpdatedAt = now
		if err := tx.Orders().UpdateStatus(ctx, order); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("Order status update failed", err, zap.String("order_id", orderID), zap.String("status", string(status)))
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", order.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(order.Status)))
	s.record(ctx, audit.ActionStatusChanged, order.ID, bson.M{
		"from":    string(previous),
		"to":      string(order.Status),
		"is_paid": order.IsPaid,
	})
	return order, nil
}

// restock returns every item's units to its product.
func restock(ctx context.Context, tx repository.Store, items []models.OrderItem, logger *zap.Logger) error {
	for _, item := range items {
		ok, err := tx.Products().IncrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("restock product %s: %w", item.ProductID, err)
		}
		if !ok {
			logger.Warn("Product missing while restocking cancelled order",
				zap.String("order_id", item.OrderID),
				zap.String("product_id", item.ProductID))
		}
	}
	return nil
}

// retake checks all items before touching any stock, then decrements.
func retake(ctx context.Context, tx repository.Store, items []models.OrderItem) error {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := tx.Products().GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	stock := make(map[string]models.Product, len(products))
	for _, p := range products {
		stock[p.ID] = p
	}

	for _, item := range items {
		p, ok := stock[item.ProductID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductTitle)
		}
		if p.Stock < item.Quantity {
			return &StockError{ProductID: p.ID, Title: p.Title, Available: p.Stock, Requested: item.Quantity}
		}
	}

	for _, item := range items {
		if err := takeStock(ctx, tx, item.ProductID, item.ProductTitle, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// ConfirmPayment marks a pending order as paid. Confirming an order that is
// already paid changes nothing.
func (s *orderService) ConfirmPayment(ctx context.Context, orderID, paymentReference string) (*models.Order, error) {
	var order *models.Order
	changed := false
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		order, err = tx.Orders().GetByID(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}
		if order.Status == models.OrderCancelled {
			return ErrOrderCancelled
		}
		if order.IsPaid {
			return nil
		}

		now := s.now()
		order.ApplyStatus(models.OrderPaid, now)
		order.PaymentReference = paymentReference
		order.UpdatedAt = now
		changed = true
		if err := tx.Orders().UpdatePayment(ctx, order); err != nil {
			return fmt.Errorf("update order payment: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("Payment confirmation failed", err, zap.String("order_id", orderID))
		return nil, err
	}

	if changed {
		s.logger.Info("Order paid", zap.String("order_id", order.ID), zap.String("payment_reference", paymentReference))
		s.record(ctx, audit.ActionPaymentApplied, order.ID, bson.M{"payment_reference": paymentReference})
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, int64, error) {
	return s.store.Orders().List(ctx, filter)
}

func (s *orderService) GetOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.store.Orders().GetByUserID(ctx, userID)
}

func (s *orderService) History(ctx context.Context, orderID string) ([]*audit.Entry, error) {
	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.audit.History(ctx, orderID, 50)
}

// notify runs after commit. A failed notification never undoes the sale.
func (s *orderService) notify(ctx context.Context, order *models.Order, store *models.StoreConfig) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyNewOrder(ctx, order, store); err != nil {
		s.logger.Warn("Order notification failed", zap.String("order_id", order.ID), zap.Error(err))
	}
}

func (s *orderService) record(ctx context.Context, action, orderID string, data bson.M) {
	recordAudit(ctx, s.audit, s.logger, action, orderID, data)
}

func (s *orderService) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if IsBusinessError(err) {
		s.logger.Info(msg, fields...)
		return
	}
	s.logger.Error(msg, fields...)
}

func recordAudit(ctx context.Context, recorder audit.Recorder, logger *zap.Logger, action, orderID string, data bson.M) {
	err := recorder.Record(context.WithoutCancel(ctx), &audit.Entry{
		Service:  "storefront",
		Action:   action,
		EntityID: orderID,
		Data:     data,
	})
	if err != nil {
		logger.Warn("Failed to write audit entry", zap.String("action", action), zap.String("order_id", orderID), zap.Error(err))
	}
}

func loadStoreConfig(ctx context.Context, tx repository.Store, division models.Division) (*models.StoreConfig, error) {
	cfg, err := tx.StoreConfigs().Get(ctx, division)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultStoreConfig(division), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load store config: %w", err)
	}
	return cfg, nil
}
