package handlers

import (
	"net/http"

	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type POSHandler struct {
	posService services.POSService
	logger     *zap.Logger
}

func NewPOSHandler(posService services.POSService, logger *zap.Logger) *POSHandler {
	return &POSHandler{posService: posService, logger: logger}
}

type posSaleRequest struct {
	Items         []orderLineRequest `json:"items" binding:"required,min=1,dive"`
	ClientName    string             `json:"client_name" binding:"max=100"`
	ClientPhone   string             `json:"client_phone" binding:"max=30"`
	Notes         string             `json:"notes" binding:"max=500"`
	Division      string             `json:"division"`
	PaymentMethod string             `json:"payment_method" binding:"omitempty,oneof=CASH CARD TRANSFER"`
}

// ProcessSale handles POST /api/admin/pos/sales.
func (h *POSHandler) ProcessSale(c *gin.Context) {
	var req posSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	division, ok := requestDivision(c, req.Division)
	if !ok {
		respondInvalidDivision(c)
		return
	}

	order, err := h.posService.ProcessSale(c.Request.Context(), services.POSSaleInput{
		Items:         toLineInputs(req.Items),
		Division:      division,
		PaymentMethod: services.PaymentMethod(req.PaymentMethod),
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		Notes:         req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Sale recorded",
		"order":   order,
	})
}
