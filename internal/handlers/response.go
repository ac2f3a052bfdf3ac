package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const genericErrorMessage = "No se pudo procesar la solicitud. Intente nuevamente."

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report the json name of a field
// instead of the Go name.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	})
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request format",
		})
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = validationMessage(fe)
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Validation failed",
		"errors":  fields,
	})
}

// fieldPath drops the request struct name: "checkoutRequest.items[0].quantity"
// becomes "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_without":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid id"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "ne":
		return "must not be " + fe.Param()
	}
	return "is invalid"
}

// respondError maps service errors to HTTP responses. Unknown errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var stockErr *services.StockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusConflict, gin.H{
			"success":    false,
			"message":    stockErr.Error(),
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
			"requested":  stockErr.Requested,
		})
		return
	}

	if !services.IsBusinessError(err) {
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": genericErrorMessage,
		})
		return
	}

	c.JSON(statusFor(err), gin.H{
		"success": false,
		"message": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrCouponNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrCartNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, services.ErrOrderCancelled),
		errors.Is(err, services.ErrNegativeStock),
		errors.Is(err, services.ErrDuplicateCoupon),
		errors.Is(err, services.ErrDuplicateProduct),
		errors.Is(err, services.ErrDuplicateCategory),
		errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// requestDivision picks the division from the body value, then the query
// string, then the X-Division header. Empty means the default store.
func requestDivision(c *gin.Context, fromBody string) (models.Division, bool) {
	return parseDivision(namedDivision(c, fromBody))
}

// namedDivision returns the division the caller sent, or "" when none.
func namedDivision(c *gin.Context, fromBody string) string {
	raw := strings.TrimSpace(fromBody)
	if raw == "" {
		raw = strings.TrimSpace(c.Query("division"))
	}
	if raw == "" {
		raw = strings.TrimSpace(c.GetHeader(divisionHeader))
	}
	return raw
}

func parseDivision(raw string) (models.Division, bool) {
	d, ok := models.ParseDivision(strings.ToUpper(raw))
	if !ok {
		return "", false
	}
	if d == "" {
		d = models.DefaultDivision
	}
	return d, true
}

func respondInvalidDivision(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": services.ErrInvalidDivision.Error(),
	})
}
