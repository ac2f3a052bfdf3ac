package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"storefront/internal/models"
	"storefront/pkg/resend"

	"go.uber.org/zap"
)

// Notifier tells the store staff about a new online order.
type Notifier interface {
	NotifyNewOrder(ctx context.Context, order *models.Order, store *models.StoreConfig) error
}

type Mailer interface {
	SendEmail(ctx context.Context, email resend.Email) (*resend.SendEmailResponse, error)
}

type Messenger interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

type NotificationConfig struct {
	From          string
	FallbackEmail string
	FallbackPhone string
}

type notificationService struct {
	mailer    Mailer
	messenger Messenger
	config    NotificationConfig
	logger    *zap.Logger
}

// NewNotificationService sends email through mailer and WhatsApp messages
// through messenger. Either may be nil to disable that channel.
func NewNotificationService(mailer Mailer, messenger Messenger, cfg NotificationConfig, logger *zap.Logger) Notifier {
	return &notificationService{mailer: mailer, messenger: messenger, config: cfg, logger: logger}
}

func (s *notificationService) NotifyNewOrder(ctx context.Context, order *models.Order, store *models.StoreConfig) error {
	email, phone := s.config.FallbackEmail, s.config.FallbackPhone
	storeName := "Festamas"
	if store != nil {
		if store.AdminEmail != "" {
			email = store.AdminEmail
		}
		if store.AdminPhone != "" {
			phone = store.AdminPhone
		}
		if store.DisplayName != "" {
			storeName = store.DisplayName
		}
	}

	var errs []error
	if s.mailer != nil && email != "" {
		_, err := s.mailer.SendEmail(ctx, resend.Email{
			From:    s.config.From,
			To:      []string{email},
			Subject: fmt.Sprintf("[%s] Nuevo pedido de %s - $%s", storeName, order.ClientName, order.Total.StringFixed(2)),
			HTML:    orderEmailHTML(order),
			Text:    orderSummary(order),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}
	if s.messenger != nil && phone != "" {
		message := fmt.Sprintf("🛒 Nuevo pedido en %s\n%s", storeName, orderSummary(order))
		if err := s.messenger.SendTextMessage(ctx, phone, message); err != nil {
			errs = append(errs, fmt.Errorf("whatsapp: %w", err))
		}
	}

	if len(errs) == 0 {
		s.logger.Debug("Order notification sent", zap.String("order_id", order.ID))
	}
	return errors.Join(errs...)
}

func orderSummary(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pedido %s\n", order.ID)
	fmt.Fprintf(&b, "Cliente: %s (%s)\n", order.ClientName, order.ClientPhone)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %d x %s @ $%s\n", item.Quantity, item.ProductTitle, item.UnitPrice.StringFixed(2))
	}
	if order.Discount.IsPositive() {
		fmt.Fprintf(&b, "Descuento (%s): -$%s\n", order.CouponCode, order.Discount.StringFixed(2))
	}
	if order.DeliveryMethod == models.DeliveryShipping {
		fmt.Fprintf(&b, "Envío a: %s ($%s)\n", order.ShippingAddress, order.ShippingCost.StringFixed(2))
	} else {
		b.WriteString("Retira en local\n")
	}
	fmt.Fprintf(&b, "Total: $%s", order.Total.StringFixed(2))
	if order.Notes != "" {
		fmt.Fprintf(&b, "\nNotas: %s", order.Notes)
	}
	return b.String()
}

func orderEmailHTML(order *models.Order) string {
	lines := strings.Split(orderSummary(order), "\n")
	for i, line := range lines {
		lines[i] = html.EscapeString(line)
	}
	return "<p>" + strings.Join(lines, "<br>") + "</p>"
}
