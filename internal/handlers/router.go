package handlers

import (
	"net/http"

	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies is everything the HTTP layer needs. Carts may be nil when no
// cart store is configured; the cart routes are then not mounted.
type Dependencies struct {
	Orders  *OrderHandler
	POS     *POSHandler
	Catalog *CatalogHandler
	Coupons *CouponHandler
	Carts   *CartHandler
	Users   *UserHandler
	API     *APIHandler

	UserLookup UserLookup
	Logger     *zap.Logger
}

func NewRouter(deps Dependencies) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(deps.Logger))

	router.GET("/health", deps.API.Health)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "route not found"})
	})

	requireAdmin := RequireAdmin(deps.UserLookup, deps.Logger)
	requireUser := RequireUser(deps.UserLookup, deps.Logger)
	optionalUser := OptionalUser(deps.UserLookup, deps.Logger)

	api := router.Group("/api")
	{
		api.POST("/orders", optionalUser, deps.Orders.PlaceOrder)
		api.GET("/orders/:id", optionalUser, deps.Orders.GetOrder)
		api.POST("/payments/webhook", deps.Orders.PaymentWebhook)

		api.GET("/categories", deps.Catalog.ListCategories)
		api.GET("/products", deps.Catalog.ListProducts)
		api.GET("/products/:id", deps.Catalog.GetProduct)

		api.POST("/coupons/validate", deps.Coupons.ValidateCoupon)
		api.GET("/stores/:division", deps.API.GetStoreConfig)

		api.POST("/users/register", deps.Users.Register)
		api.POST("/users/login", deps.Users.Login)
		api.GET("/users/me", requireUser, deps.Users.Me)
		api.GET("/users/me/orders", requireUser, deps.Orders.MyOrders)

		if deps.Carts != nil {
			carts := api.Group("/carts/:id")
			carts.GET("", deps.Carts.GetCart)
			carts.DELETE("", deps.Carts.Clear)
			carts.POST("/items", deps.Carts.AddItem)
			carts.PUT("/items/:product_id", deps.Carts.SetQuantity)
			carts.DELETE("/items/:product_id", deps.Carts.RemoveItem)
		}
	}

	admin := api.Group("/admin", requireAdmin)
	{
		admin.GET("/orders", deps.Orders.ListOrders)
		admin.PATCH("/orders/:id/status", deps.Orders.UpdateStatus)
		admin.GET("/orders/:id/audit", deps.Orders.History)

		admin.POST("/pos/sales", deps.POS.ProcessSale)

		admin.POST("/categories", deps.Catalog.CreateCategory)
		admin.POST("/products", deps.Catalog.CreateProduct)
		admin.PUT("/products/:id", deps.Catalog.UpdateProduct)
		admin.PATCH("/products/:id/stock", deps.Catalog.AdjustStock)

		admin.POST("/coupons", deps.Coupons.CreateCoupon)
		admin.GET("/coupons", deps.Coupons.ListCoupons)

		admin.PUT("/stores/:division", deps.API.UpdateStoreConfig)
	}

	return router
}

var _ UserLookup = (services.UserService)(nil)
