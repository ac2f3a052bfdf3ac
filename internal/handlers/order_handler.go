package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/redis"
	"storefront/internal/repository"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IdempotencyStore remembers which order a checkout key produced.
type IdempotencyStore interface {
	ReserveCheckout(ctx context.Context, key string, ttl time.Duration) (bool, error)
	CheckoutResult(ctx context.Context, key string) (string, error)
	CompleteCheckout(ctx context.Context, key, orderID string, ttl time.Duration) error
	ReleaseCheckout(ctx context.Context, key string) error
}

type OrderHandler struct {
	orderService   services.OrderService
	cartService    services.CartService
	idempotency    IdempotencyStore
	idempotencyTTL time.Duration
	webhookSecret  string
	logger         *zap.Logger
}

type OrderHandlerOptions struct {
	Carts          services.CartService
	Idempotency    IdempotencyStore
	IdempotencyTTL time.Duration
	WebhookSecret  string
}

func NewOrderHandler(orderService services.OrderService, logger *zap.Logger, opts OrderHandlerOptions) *OrderHandler {
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}
	return &OrderHandler{
		orderService:   orderService,
		cartService:    opts.Carts,
		idempotency:    opts.Idempotency,
		idempotencyTTL: opts.IdempotencyTTL,
		webhookSecret:  opts.WebhookSecret,
		logger:         logger,
	}
}

type orderLineRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Price     decimal.Decimal `json:"price"`
}

type checkoutRequest struct {
	ClientName      string             `json:"client_name" binding:"required,min=2,max=100"`
	ClientPhone     string             `json:"client_phone" binding:"required,min=6,max=30"`
	DeliveryMethod  string             `json:"delivery_method" binding:"omitempty,oneof=PICKUP DELIVERY"`
	ShippingAddress string             `json:"shipping_address" binding:"required_if=DeliveryMethod DELIVERY,max=300"`
	Notes           string             `json:"notes" binding:"max=500"`
	CouponCode      string             `json:"coupon_code" binding:"max=50"`
	Division        string             `json:"division"`
	CartID          string             `json:"cart_id"`
	Items           []orderLineRequest `json:"items" binding:"required_without=CartID,dive"`
}

func toLineInputs(lines []orderLineRequest) []services.LineInput {
	out := make([]services.LineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, services.LineInput{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price})
	}
	return out
}

// PlaceOrder handles POST /api/orders.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	named := namedDivision(c, req.Division)
	division, ok := parseDivision(named)
	if !ok {
		respondInvalidDivision(c)
		return
	}
	ctx := c.Request.Context()

	items := toLineInputs(req.Items)
	if len(items) == 0 && req.CartID != "" && h.cartService != nil {
		cart, err := h.cartService.GetCart(ctx, req.CartID)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		if cart.Division != "" {
			cartDivision := models.Division(cart.Division)
			if named != "" && division != cartDivision {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"message": "cart belongs to store " + cart.Division,
				})
				return
			}
			division = cartDivision
		}
		for _, item := range cart.Items {
			items = append(items, services.LineInput{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.UnitPrice})
		}
	}

	key := strings.TrimSpace(c.GetHeader(idempotencyHeader))
	if h.idempotency == nil {
		key = ""
	}
	if key != "" {
		claimed, err := h.claimCheckout(c, key)
		if err != nil {
			h.logger.Warn("Idempotency store unavailable, continuing without it", zap.Error(err))
			key = ""
		} else if !claimed {
			return
		}
	}

	input := services.PlaceOrderInput{
		ClientName:      req.ClientName,
		ClientPhone:     req.ClientPhone,
		DeliveryMethod:  models.DeliveryMethod(req.DeliveryMethod),
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		CouponCode:      req.CouponCode,
		Division:        division,
		Items:           items,
	}
	if user, ok := currentUser(c); ok {
		input.UserID = &user.ID
	}

	order, err := h.orderService.PlaceOrder(ctx, input)
	if err != nil {
		if key != "" {
			if relErr := h.idempotency.ReleaseCheckout(context.WithoutCancel(ctx), key); relErr != nil {
				h.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
			}
		}
		respondError(c, h.logger, err)
		return
	}

	if key != "" {
		if err := h.idempotency.CompleteCheckout(context.WithoutCancel(ctx), key, order.ID, h.idempotencyTTL); err != nil {
			h.logger.Warn("Failed to store idempotency result", zap.String("key", key), zap.Error(err))
		}
	}
	if req.CartID != "" && h.cartService != nil {
		if err := h.cartService.Clear(context.WithoutCancel(ctx), req.CartID); err != nil {
			h.logger.Warn("Failed to clear cart after checkout", zap.String("cart_id", req.CartID), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order created",
		"order":   order,
	})
}

// claimCheckout reserves key for this request. When another request holds
// it, the response is written here and false is returned. A key that expires
// between the claim and the lookup is claimed once more.
func (h *OrderHandler) claimCheckout(c *gin.Context, key string) (bool, error) {
	ctx := c.Request.Context()
	for attempt := 0; attempt < 2; attempt++ {
		claimed, err := h.idempotency.ReserveCheckout(ctx, key, h.idempotencyTTL)
		if err != nil {
			return false, err
		}
		if claimed {
			return true, nil
		}
		orderID, err := h.idempotency.CheckoutResult(ctx, key)
		if errors.Is(err, redis.ErrCheckoutNotFound) {
			continue
		}
		if err != nil {
			respondError(c, h.logger, err)
			return false, nil
		}
		h.replayCheckout(c, orderID)
		return false, nil
	}
	h.replayCheckout(c, "")
	return false, nil
}

// replayCheckout answers a repeated key with the order it produced. An empty
// orderID means the first checkout is still running.
func (h *OrderHandler) replayCheckout(c *gin.Context, orderID string) {
	if orderID == "" {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "a checkout with this idempotency key is already in progress",
		})
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Order already created",
		"replayed": true,
		"order":    order,
	})
}

// publicOrder is what anyone holding an order id may see: no contact or
// delivery details.
type publicOrder struct {
	ID             string                `json:"id"`
	Status         models.OrderStatus    `json:"status"`
	IsPaid         bool                  `json:"is_paid"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	Discount       decimal.Decimal       `json:"discount"`
	ShippingCost   decimal.Decimal       `json:"shipping_cost"`
	Total          decimal.Decimal       `json:"total"`
	ItemsInOrder   int                   `json:"items_in_order"`
	DeliveryMethod models.DeliveryMethod `json:"delivery_method"`
	Division       models.Division       `json:"division"`
	Items          []models.OrderItem    `json:"items,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

func toPublicOrder(o *models.Order) publicOrder {
	return publicOrder{
		ID:             o.ID,
		Status:         o.Status,
		IsPaid:         o.IsPaid,
		Subtotal:       o.Subtotal,
		Discount:       o.Discount,
		ShippingCost:   o.ShippingCost,
		Total:          o.Total,
		ItemsInOrder:   o.ItemsInOrder,
		DeliveryMethod: o.DeliveryMethod,
		Division:       o.Division,
		Items:          o.Items,
		CreatedAt:      o.CreatedAt,
	}
}

// canSeeContact reports whether the caller is an administrator or the user
// who placed the order.
func canSeeContact(c *gin.Context, order *models.Order) bool {
	user, ok := currentUser(c)
	if !ok {
		return false
	}
	if user.Role == models.RoleAdmin {
		return true
	}
	return order.UserID != nil && *order.UserID == user.ID
}

// GetOrder handles GET /api/orders/:id. Contact and delivery details are only
// returned to the order's owner and to administrators.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !canSeeContact(c, order) {
		c.JSON(http.StatusOK, gin.H{"success": true, "order": toPublicOrder(order)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

type listOrdersQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING PAID DELIVERED CANCELLED"`
	Division string `form:"division" binding:"omitempty,oneof=JUGUETERIA FIESTAS"`
	Source   string `form:"source" binding:"omitempty,oneof=ONLINE POS"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ListOrders handles GET /api/admin/orders.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}
	orders, total, err := h.orderService.ListOrders(c.Request.Context(), repository.OrderFilter{
		Status:   models.OrderStatus(q.Status),
		Division: models.Division(q.Division),
		Source:   models.OrderSource(q.Source),
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"orders":    orders,
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	})
}

// MyOrders handles GET /api/users/me/orders.
func (h *OrderHandler) MyOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	orders, err := h.orderService.GetOrdersByUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PAID DELIVERED CANCELLED"`
}

// UpdateStatus handles PATCH /api/admin/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), models.OrderStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated",
		"order":   order,
	})
}

// History handles GET /api/admin/orders/:id/audit.
func (h *OrderHandler) History(c *gin.Context) {
	entries, err := h.orderService.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries})
}

type paymentWebhookRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

// PaymentWebhook handles POST /api/payments/webhook. Only approved payments
// change the order; other statuses are acknowledged and ignored.
func (h *OrderHandler) PaymentWebhook(c *gin.Context) {
	if h.webhookSecret == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "payment webhook is not configured"})
		return
	}
	secret := c.GetHeader(webhookHeader)
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.webhookSecret)) != 1 {
		abortUnauthorized(c)
		return
	}

	var req paymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !strings.EqualFold(req.Status, "approved") {
		h.logger.Info("Ignoring payment notification", zap.String("order_id", req.OrderID), zap.String("status", req.Status))
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "ignored"})
		return
	}

	order, err := h.orderService.ConfirmPayment(c.Request.Context(), req.OrderID, req.PaymentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}
