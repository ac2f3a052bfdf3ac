package handlers

import (
	"net/http"
	"strconv"

	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalogService services.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService services.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, logger: logger}
}

type categoryRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Slug     string `json:"slug" binding:"max=120"`
	Division string `json:"division"`
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	division, ok := requestDivision(c, req.Division)
	if !ok {
		respondInvalidDivision(c)
		return
	}
	category, err := h.catalogService.CreateCategory(c.Request.Context(), services.CategoryInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Division: division,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "category": category})
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	division, ok := requestDivision(c, "")
	if !ok {
		respondInvalidDivision(c)
		return
	}
	categories, err := h.catalogService.ListCategories(c.Request.Context(), division)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
}

type productRequest struct {
	Title                string              `json:"title" binding:"required,min=2,max=200"`
	Slug                 string              `json:"slug" binding:"max=220"`
	Description          string              `json:"description" binding:"max=5000"`
	Price                decimal.Decimal     `json:"price"`
	Stock                int                 `json:"stock" binding:"gte=0"`
	WholesalePrice       decimal.NullDecimal `json:"wholesale_price"`
	WholesaleMinQuantity int                 `json:"wholesale_min_quantity" binding:"gte=0"`
	DiscountPercentage   int                 `json:"discount_percentage" binding:"gte=0,lte=100"`
	IsAvailable          *bool               `json:"is_available"`
	ImageURL             string              `json:"image_url" binding:"max=500"`
	CategoryID           string              `json:"category_id"`
	Division             string              `json:"division"`
}

func (h *CatalogHandler) productInput(c *gin.Context, req productRequest) (services.ProductInput, bool) {
	division, ok := requestDivision(c, req.Division)
	if !ok {
		respondInvalidDivision(c)
		return services.ProductInput{}, false
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	return services.ProductInput{
		Title:                req.Title,
		Slug:                 req.Slug,
		Description:          req.Description,
		Price:                req.Price,
		Stock:                req.Stock,
		WholesalePrice:       req.WholesalePrice,
		WholesaleMinQuantity: req.WholesaleMinQuantity,
		DiscountPercentage:   req.DiscountPercentage,
		IsAvailable:          available,
		ImageURL:             req.ImageURL,
		CategoryID:           req.CategoryID,
		Division:             division,
	}, true
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	input, ok := h.productInput(c, req)
	if !ok {
		return
	}
	product, err := h.catalogService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	input, ok := h.productInput(c, req)
	if !ok {
		return
	}
	product, err := h.catalogService.UpdateProduct(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{CategoryID: c.Query("category_id")}
	if raw := c.Query("division"); raw != "" {
		d, ok := models.ParseDivision(raw)
		if !ok {
			respondInvalidDivision(c)
			return
		}
		filter.Division = d
	}
	if raw := c.Query("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "available must be true or false"})
			return
		}
		filter.AvailableOnly = available
	}
	products, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

type stockAdjustmentRequest struct {
	Delta int `json:"delta" binding:"required,ne=0"`
}

func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	var req stockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := h.catalogService.AdjustStock(c.Request.Context(), c.Param("id"), req.Delta)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}
