package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCheckoutNotFound = errors.New("idempotency key not found")
)

type Client struct {
	rdb *redis.Client
}

type CartItem struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Cart struct {
	ID        string     `json:"id"`
	Division  string     `json:"division"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

const (
	cartPrefix        = "cart:"
	idempotencyPrefix = "checkout:"
	pendingMarker     = "pending"
)

func Initialize(ctx context.Context, redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewFromClient wraps an existing connection.
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Cart storage
func (c *Client) SaveCart(ctx context.Context, cart *Cart, ttl time.Duration) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	return c.rdb.Set(ctx, cartPrefix+cart.ID, data, ttl).Err()
}

func (c *Client) GetCart(ctx context.Context, id string) (*Cart, error) {
	val, err := c.rdb.Get(ctx, cartPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal(val, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return &cart, nil
}

func (c *Client) DeleteCart(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, cartPrefix+id).Err()
}

// Checkout idempotency. A key moves from absent to "pending" while the
// checkout runs, then holds the id of the order it produced.

// ReserveCheckout claims key and reports false if it was already claimed.
func (c *Client) ReserveCheckout(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, idempotencyPrefix+key, pendingMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

// CheckoutResult returns the order id stored under key, or "" while the
// checkout holding it is still running. ErrCheckoutNotFound means the key is
// gone.
func (c *Client) CheckoutResult(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, idempotencyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCheckoutNotFound
		}
		return "", fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if val == pendingMarker {
		return "", nil
	}
	return val, nil
}

func (c *Client) CompleteCheckout(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return c.rdb.Set(ctx, idempotencyPrefix+key, orderID, ttl).Err()
}

// ReleaseCheckout frees a key whose checkout failed so the client can retry.
func (c *Client) ReleaseCheckout(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, idempotencyPrefix+key).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
