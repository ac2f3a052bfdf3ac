package services

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/models"
	"storefront/pkg/resend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMailer struct {
	sent []resend.Email
	err  error
}

func (f *fakeMailer) SendEmail(_ context.Context, email resend.Email) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, email)
	return &resend.SendEmailResponse{ID: "email-1"}, nil
}

type fakeMessenger struct {
	phones   []string
	messages []string
	err      error
}

func (f *fakeMessenger) SendTextMessage(_ context.Context, phone, message string) error {
	if f.err != nil {
		return f.err
	}
	f.phones = append(f.phones, phone)
	f.messages = append(f.messages, message)
	return nil
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:             "order-1",
		ClientName:     "Ana <script>",
		ClientPhone:    "1155551234",
		Total:          dec("42.50"),
		DeliveryMethod: models.DeliveryPickup,
		Items: []models.OrderItem{
			{ProductTitle: "Pelota", Quantity: 2, UnitPrice: dec("21.25")},
		},
	}
}

func TestNotifyNewOrderUsesStoreContacts(t *testing.T) {
	mailer := &fakeMailer{}
	messenger := &fakeMessenger{}
	svc := NewNotificationService(mailer, messenger, NotificationConfig{
		From:          "pedidos@festamas.com",
		FallbackEmail: "fallback@festamas.com",
		FallbackPhone: "5490000000000",
	}, zap.NewNop())

	err := svc.NotifyNewOrder(context.Background(), sampleOrder(), &models.StoreConfig{
		DisplayName: "FiestasYa",
		AdminEmail:  "admin@fiestasya.com",
		AdminPhone:  "5491111111111",
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"admin@fiestasya.com"}, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "FiestasYa")
	assert.Contains(t, mailer.sent[0].HTML, "Ana &lt;script&gt;")
	assert.NotContains(t, mailer.sent[0].HTML, "<script>")

	require.Len(t, messenger.phones, 1)
	assert.Equal(t, "5491111111111", messenger.phones[0])
	assert.Contains(t, messenger.messages[0], "2 x Pelota")
	assert.Contains(t, messenger.messages[0], "Total: $42.50")
}

func TestNotifyNewOrderFallsBackAndJoinsErrors(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("quota exceeded")}
	messenger := &fakeMessenger{}
	svc := NewNotificationService(mailer, messenger, NotificationConfig{
		FallbackEmail: "fallback@festamas.com",
		FallbackPhone: "5490000000000",
	}, zap.NewNop())

	err := svc.NotifyNewOrder(context.Background(), sampleOrder(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, []string{"5490000000000"}, messenger.phones, "one failing channel does not stop the other")
}

func TestNotifyNewOrderWithoutChannels(t *testing.T) {
	svc := NewNotificationService(nil, nil, NotificationConfig{}, zap.NewNop())
	assert.NoError(t, svc.NotifyNewOrder(context.Background(), sampleOrder(), nil))
}
