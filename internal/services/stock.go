package services

import (
	"context"
	"fmt"
	"sort"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// LineInput is one requested line of a checkout or a POS sale. Price is the
// price the client saw; the charged price is always recomputed from the
// product.
type LineInput struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type reservation struct {
	items     []models.OrderItem
	subtotal  decimal.Decimal
	itemCount int
}

// mergeLines validates the lines, folds repeated products into one line and
// sorts them by product id so concurrent transactions touch rows in the same
// order.
func mergeLines(lines []LineInput) ([]LineInput, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	byID := make(map[string]int, len(lines))
	merged := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == "" {
			return nil, fmt.Errorf("%w: missing product id", ErrProductNotFound)
		}
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if idx, ok := byID[line.ProductID]; ok {
			merged[idx].Quantity += line.Quantity
			continue
		}
		byID[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ProductID < merged[j].ProductID })
	return merged, nil
}

// reserveStock checks every line against current stock and, only if all of
// them fit, takes the units. It must run inside a transaction: a failure on
// any line is returned so the caller's transaction rolls back the lines that
// were already taken.
func reserveStock(ctx context.Context, tx repository.Store, lines []LineInput, division models.Division) (*reservation, error) {
	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}

	products, err := tx.Products().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, line := range lines {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		if !p.IsAvailable {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, p.Title)
		}
		if division != "" && p.Division != division {
			return nil, fmt.Errorf("%w: %s is not sold in this store", ErrProductUnavailable, p.Title)
		}
		if line.Quantity > p.Stock {
			return nil, &StockError{ProductID: p.ID, Title: p.Title, Available: p.Stock, Requested: line.Quantity}
		}
	}

	res := &reservation{subtotal: decimal.Zero}
	for _, line := range lines {
		p := byID[line.ProductID]
		if err := takeStock(ctx, tx, p.ID, p.Title, line.Quantity); err != nil {
			return nil, err
		}

		unit := p.UnitPrice(line.Quantity)
		lineTotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		res.items = append(res.items, models.OrderItem{
			ProductID:    p.ID,
			ProductTitle: p.Title,
			Quantity:     line.Quantity,
			UnitPrice:    unit,
			LineTotal:    lineTotal,
		})
		res.subtotal = res.subtotal.Add(lineTotal)
		res.itemCount += line.Quantity
	}
	return res, nil
}

// takeStock decrements conditionally. A concurrent writer that got there
// first makes the update match no row, which is reported as a StockError
// carrying the stock seen now.
func takeStock(ctx context.Context, tx repository.Store, productID, title string, quantity int) error {
	ok, err := tx.Products().DecrementStock(ctx, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock for %s: %w", productID, err)
	}
	if ok {
		return nil
	}
	available := 0
	if current, err := tx.Products().GetByID(ctx, productID); err == nil {
		available = current.Stock
		title = current.Title
	}
	return &StockError{ProductID: productID, Title: title, Available: available, Requested: quantity}
}
