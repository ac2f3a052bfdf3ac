package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Pinger reports whether a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type APIHandler struct {
	storeService services.StoreService
	checks       map[string]Pinger
	logger       *zap.Logger
}

func NewAPIHandler(storeService services.StoreService, checks map[string]Pinger, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		storeService: storeService,
		checks:       checks,
		logger:       logger,
	}
}

// Health pings every dependency and answers 503 if any of them fails.
func (h *APIHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(gin.H, len(h.checks))
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			results[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "up"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "checks": results})
}

func (h *APIHandler) GetStoreConfig(c *gin.Context) {
	division, ok := models.ParseDivision(strings.ToUpper(c.Param("division")))
	if !ok || division == "" {
		respondInvalidDivision(c)
		return
	}
	cfg, err := h.storeService.GetConfig(c.Request.Context(), division)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "store": cfg})
}

type storeConfigRequest struct {
	DisplayName     string          `json:"display_name" binding:"max=100"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	FreeShippingMin decimal.Decimal `json:"free_shipping_min"`
	AdminEmail      string          `json:"admin_email" binding:"omitempty,email"`
	AdminPhone      string          `json:"admin_phone" binding:"max=30"`
}

func (h *APIHandler) UpdateStoreConfig(c *gin.Context) {
	division, ok := models.ParseDivision(strings.ToUpper(c.Param("division")))
	if !ok || division == "" {
		respondInvalidDivision(c)
		return
	}
	var req storeConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	cfg, err := h.storeService.UpdateConfig(c.Request.Context(), division, services.StoreConfigInput{
		DisplayName:     req.DisplayName,
		ShippingCost:    req.ShippingCost,
		FreeShippingMin: req.FreeShippingMin,
		AdminEmail:      req.AdminEmail,
		AdminPhone:      req.AdminPhone,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "store": cfg})
}
