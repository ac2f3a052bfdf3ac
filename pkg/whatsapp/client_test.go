package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "5491155551234", NormalizePhone("+54 9 11 5555-1234"))
	assert.Equal(t, "", NormalizePhone("sin número"))
}

func TestSendMessage(t *testing.T) {
	var got SendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wa/send/message", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"code":"SUCCESS","success":true,"results":{"message_id":"m1","status":"sent"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin", "secret", "/wa/")
	resp, err := client.SendMessage(context.Background(), "+54 9 11 5555-1234", "Nuevo pedido")
	require.NoError(t, err)
	assert.Equal(t, "m1", resp.Results.MessageID)
	assert.Equal(t, "5491155551234@s.whatsapp.net", got.Phone)
	assert.Equal(t, "Nuevo pedido", got.Message)
}

func TestSendTextMessageGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send/message", r.URL.Path)
		http.Error(w, "device not connected", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", "", "").SendTextMessage(context.Background(), "1155551234", "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "device not connected")
}

func TestSendMessageRejectsEmptyPhone(t *testing.T) {
	_, err := NewClient("http://unused", "", "", "").SendMessage(context.Background(), "---", "hola")
	assert.Error(t, err)
}
