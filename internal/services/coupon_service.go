package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateCouponInput struct {
	Code         string
	DiscountType models.DiscountType
	Value        decimal.Decimal
	MaxUses      *int
	ExpiresAt    *time.Time
	Division     models.Division
}

// CouponPreview is what a shopper sees before checkout. Redemption only
// happens when an order is placed.
type CouponPreview struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

type CouponService interface {
	CreateCoupon(ctx context.Context, input CreateCouponInput) (*models.Coupon, error)
	ListCoupons(ctx context.Context) ([]models.Coupon, error)
	Preview(ctx context.Context, code string, subtotal decimal.Decimal, division models.Division) (*CouponPreview, error)
}

type couponService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewCouponService(store repository.Store, logger *zap.Logger) CouponService {
	return &couponService{store: store, logger: logger.Named("coupons"), now: time.Now}
}

func (s *couponService) CreateCoupon(ctx context.Context, input CreateCouponInput) (*models.Coupon, error) {
	code := normalizeCouponCode(input.Code)
	if code == "" || !input.Value.IsPositive() {
		return nil, ErrInvalidCoupon
	}
	switch input.DiscountType {
	case models.DiscountFixed:
	case models.DiscountPercentage:
		if input.Value.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("%w: percentage above 100", ErrInvalidCoupon)
		}
	default:
		return nil, fmt.Errorf("%w: unknown discount type", ErrInvalidCoupon)
	}
	if input.MaxUses != nil && *input.MaxUses < 1 {
		return nil, fmt.Errorf("%w: max uses must be positive", ErrInvalidCoupon)
	}
	if input.Division != "" && !input.Division.Valid() {
		return nil, ErrInvalidDivision
	}

	if _, err := s.store.Coupons().GetByCode(ctx, code); err == nil {
		return nil, ErrDuplicateCoupon
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up coupon: %w", err)
	}

	coupon := &models.Coupon{
		Code:         code,
		DiscountType: input.DiscountType,
		Value:        input.Value.Round(2),
		MaxUses:      input.MaxUses,
		ExpiresAt:    input.ExpiresAt,
		Division:     input.Division,
		IsActive:     true,
	}
	if err := s.store.Coupons().Create(ctx, coupon); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCoupon
		}
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	s.logger.Info("Coupon created", zap.String("code", coupon.Code), zap.String("type", string(coupon.DiscountType)))
	return coupon, nil
}

func (s *couponService) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	return s.store.Coupons().List(ctx)
}

func (s *couponService) Preview(ctx context.Context, code string, subtotal decimal.Decimal, division models.Division) (*CouponPreview, error) {
	coupon, err := loadUsableCoupon(ctx, s.store, normalizeCouponCode(code), division, s.now())
	if err != nil {
		return nil, err
	}
	discount := coupon.DiscountFor(subtotal)
	return &CouponPreview{
		Code:     coupon.Code,
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}, nil
}

func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func loadUsableCoupon(ctx context.Context, store repository.Store, code string, division models.Division, now time.Time) (*models.Coupon, error) {
	if code == "" {
		return nil, ErrCouponNotFound
	}
	coupon, err := store.Coupons().GetByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load coupon: %w", err)
	}
	switch {
	case !coupon.IsActive:
		return nil, ErrCouponInactive
	case coupon.Expired(now):
		return nil, ErrCouponExpired
	case coupon.Exhausted():
		return nil, ErrCouponExhausted
	case coupon.Division != "" && division != "" && coupon.Division != division:
		return nil, ErrCouponDivision
	}
	return coupon, nil
}

// redeemCoupon validates the coupon and counts the use inside tx. The usage
// cap is enforced by the conditional increment, not by the earlier read.
func redeemCoupon(ctx context.Context, tx repository.Store, code string, division models.Division, now time.Time) (*models.Coupon, error) {
	coupon, err := loadUsableCoupon(ctx, tx, code, division, now)
	if err != nil {
		return nil, err
	}
	ok, err := tx.Coupons().IncrementUsage(ctx, coupon.ID)
	if err != nil {
		return nil, fmt.Errorf("redeem coupon: %w", err)
	}
	if !ok {
		return nil, ErrCouponExhausted
	}
	coupon.UsageCount++
	return coupon, nil
}
