package resend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func TestSendEmail(t *testing.T) {
	var got sentEmail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email-123"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/", "re_test")
	require.NoError(t, err)
	resp, err := client.SendEmail(context.Background(), Email{
		From:    "pedidos@festamas.com",
		To:      []string{"admin@festamas.com"},
		Subject: "Nuevo pedido",
		Text:    "hola",
	})
	require.NoError(t, err)
	assert.Equal(t, "email-123", resp.ID)
	assert.Equal(t, "pedidos@festamas.com", got.From)
	assert.Equal(t, []string{"admin@festamas.com"}, got.To)
	assert.Equal(t, "Nuevo pedido", got.Subject)
}

func TestSendEmailAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "re_test")
	require.NoError(t, err)
	_, err = client.SendEmail(context.Background(), Email{From: "x", To: []string{"a@b.c"}, Subject: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid from field")
}

func TestSendEmailNeedsRecipients(t *testing.T) {
	client, err := NewClient("", "key")
	require.NoError(t, err)
	_, err = client.SendEmail(context.Background(), Email{})
	assert.Error(t, err)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("http://bad host", "key")
	assert.Error(t, err)
}
