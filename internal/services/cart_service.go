package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/redis"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartStore keeps carts between requests.
type CartStore interface {
	GetCart(ctx context.Context, id string) (*redis.Cart, error)
	SaveCart(ctx context.Context, cart *redis.Cart, ttl time.Duration) error
	DeleteCart(ctx context.Context, id string) error
}

type CartService interface {
	GetCart(ctx context.Context, id string) (*redis.Cart, error)
	AddItem(ctx context.Context, cartID string, division models.Division, productID string, quantity int) (*redis.Cart, error)
	SetQuantity(ctx context.Context, cartID, productID string, quantity int) (*redis.Cart, error)
	RemoveItem(ctx context.Context, cartID, productID string) (*redis.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

type cartService struct {
	carts  CartStore
	store  repository.Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewCartService(carts CartStore, store repository.Store, ttl time.Duration, logger *zap.Logger) CartService {
	return &cartService{carts: carts, store: store, ttl: ttl, logger: logger.Named("carts")}
}

func (s *cartService) GetCart(ctx context.Context, id string) (*redis.Cart, error) {
	cart, err := s.carts.GetCart(ctx, id)
	if errors.Is(err, redis.ErrCartNotFound) {
		return nil, ErrCartNotFound
	}
	return cart, err
}

// AddItem adds quantity units of a product, creating the cart when cartID is
// empty or expired. The running quantity may not exceed the stock on hand.
func (s *cartService) AddItem(ctx context.Context, cartID string, division models.Division, productID string, quantity int) (*redis.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	division, err := resolveDivision(division)
	if err != nil {
		return nil, err
	}

	cart, err := s.loadOrNew(ctx, cartID, division)
	if err != nil {
		return nil, err
	}
	if cart.Division != string(division) {
		return nil, fmt.Errorf("%w: cart belongs to another store", ErrProductUnavailable)
	}

	idx := cartIndex(cart, productID)
	total := quantity
	if idx >= 0 {
		total += cart.Items[idx].Quantity
	}
	product, err := s.checkProduct(ctx, productID, division, total)
	if err != nil {
		return nil, err
	}

	item := redis.CartItem{
		ProductID: product.ID,
		Title:     product.Title,
		Quantity:  total,
		UnitPrice: product.UnitPrice(total),
	}
	if idx >= 0 {
		cart.Items[idx] = item
	} else {
		cart.Items = append(cart.Items, item)
	}
	return s.save(ctx, cart)
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (s *cartService) SetQuantity(ctx context.Context, cartID, productID string, quantity int) (*redis.Cart, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, cartID, productID)
	}
	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	idx := cartIndex(cart, productID)
	if idx < 0 {
		return nil, ErrProductNotFound
	}
	product, err := s.checkProduct(ctx, productID, models.Division(cart.Division), quantity)
	if err != nil {
		return nil, err
	}
	cart.Items[idx].Quantity = quantity
	cart.Items[idx].Title = product.Title
	cart.Items[idx].UnitPrice = product.UnitPrice(quantity)
	return s.save(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, cartID, productID string) (*redis.Cart, error) {
	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if idx := cartIndex(cart, productID); idx >= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	}
	return s.save(ctx, cart)
}

func (s *cartService) Clear(ctx context.Context, cartID string) error {
	return s.carts.DeleteCart(ctx, cartID)
}

func (s *cartService) loadOrNew(ctx context.Context, cartID string, division models.Division) (*redis.Cart, error) {
	if cartID != "" {
		cart, err := s.carts.GetCart(ctx, cartID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, redis.ErrCartNotFound) {
			return nil, err
		}
	} else {
		cartID = uuid.NewString()
	}
	return &redis.Cart{ID: cartID, Division: string(division), Items: []redis.CartItem{}}, nil
}

func (s *cartService) checkProduct(ctx context.Context, productID string, division models.Division, quantity int) (*models.Product, error) {
	products, err := s.store.Products().GetByIDs(ctx, []string{productID})
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}
	p := products[0]
	if !p.IsAvailable || p.Division != division {
		return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, p.Title)
	}
	if quantity > p.Stock {
		return nil, &StockError{ProductID: p.ID, Title: p.Title, Available: p.Stock, Requested: quantity}
	}
	return &p, nil
}

func (s *cartService) save(ctx context.Context, cart *redis.Cart) (*redis.Cart, error) {
	cart.UpdatedAt = time.Now().UTC()
	if err := s.carts.SaveCart(ctx, cart, s.ttl); err != nil {
		return nil, err
	}
	s.logger.Debug("Cart saved", zap.String("cart_id", cart.ID), zap.Int("lines", len(cart.Items)))
	return cart, nil
}

func cartIndex(cart *redis.Cart, productID string) int {
	for i, item := range cart.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
