// Package resend sends transactional email through the Resend API.
package resend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sdk "github.com/resend/resend-go/v2"
)

const DefaultBaseURL = "https://api.resend.com"

type Client struct {
	api *sdk.Client
}

type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

type SendEmailResponse struct {
	ID string `json:"id"`
}

// NewClient builds a client for the API at baseURL, or the public Resend
// endpoint when baseURL is empty.
func NewClient(baseURL, apiKey string) (*Client, error) {
	api := sdk.NewCustomClient(&http.Client{Timeout: 15 * time.Second}, apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("resend: invalid base URL: %w", err)
	}
	api.BaseURL = u
	return &Client{api: api}, nil
}

func (c *Client) SendEmail(ctx context.Context, email Email) (*SendEmailResponse, error) {
	if len(email.To) == 0 {
		return nil, errors.New("resend: no recipients")
	}

	sent, err := c.api.Emails.SendWithContext(ctx, &sdk.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
	})
	if err != nil {
		return nil, fmt.Errorf("resend: send email: %w", err)
	}
	return &SendEmailResponse{ID: sent.Id}, nil
}
