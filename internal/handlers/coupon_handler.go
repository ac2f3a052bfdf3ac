package handlers

import (
	"net/http"
	"time"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CouponHandler struct {
	couponService services.CouponService
	logger        *zap.Logger
}

func NewCouponHandler(couponService services.CouponService, logger *zap.Logger) *CouponHandler {
	return &CouponHandler{couponService: couponService, logger: logger}
}

type createCouponRequest struct {
	Code         string          `json:"code" binding:"required,min=3,max=50"`
	DiscountType string          `json:"discount_type" binding:"required,oneof=FIXED PERCENTAGE"`
	Value        decimal.Decimal `json:"value"`
	MaxUses      *int            `json:"max_uses" binding:"omitempty,min=1"`
	ExpiresAt    *time.Time      `json:"expires_at"`
	Division     string          `json:"division" binding:"omitempty,oneof=JUGUETERIA FIESTAS"`
}

func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	coupon, err := h.couponService.CreateCoupon(c.Request.Context(), services.CreateCouponInput{
		Code:         req.Code,
		DiscountType: models.DiscountType(req.DiscountType),
		Value:        req.Value,
		MaxUses:      req.MaxUses,
		ExpiresAt:    req.ExpiresAt,
		Division:     models.Division(req.Division),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "coupon": coupon})
}

func (h *CouponHandler) ListCoupons(c *gin.Context) {
	coupons, err := h.couponService.ListCoupons(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "coupons": coupons})
}

type validateCouponRequest struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Division string          `json:"division"`
}

func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	division, ok := requestDivision(c, req.Division)
	if !ok {
		respondInvalidDivision(c)
		return
	}
	preview, err := h.couponService.Preview(c.Request.Context(), req.Code, req.Subtotal, division)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "coupon": preview})
}
