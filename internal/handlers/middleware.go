package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	userIDHeader      = "X-User-ID"
	divisionHeader    = "X-Division"
	idempotencyHeader = "Idempotency-Key"
	webhookHeader     = "X-Webhook-Secret"

	userContextKey = "user"
)

// UserLookup is the part of the user service the access middleware needs.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ValidateUserRole(ctx context.Context, userID string, requiredRole models.UserRole) (*models.User, error)
}

func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// RequireAdmin lets the request through only when X-User-ID names an
// administrator.
func RequireAdmin(users UserLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(userIDHeader))
		if userID == "" {
			abortUnauthorized(c)
			return
		}
		user, err := users.ValidateUserRole(c.Request.Context(), userID, models.RoleAdmin)
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			abortUnauthorized(c)
			return
		case errors.Is(err, services.ErrForbidden):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": err.Error()})
			return
		case err != nil:
			respondError(c, logger, err)
			c.Abort()
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireUser resolves X-User-ID to a user and rejects the request
// otherwise.
func RequireUser(users UserLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loadUser(c, users, logger) {
			return
		}
		if _, ok := currentUser(c); !ok {
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}

// OptionalUser attaches the user when X-User-ID is sent. An unknown id is
// rejected rather than silently ignored.
func OptionalUser(users UserLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loadUser(c, users, logger) {
			return
		}
		c.Next()
	}
}

func loadUser(c *gin.Context, users UserLookup, logger *zap.Logger) bool {
	userID := strings.TrimSpace(c.GetHeader(userIDHeader))
	if userID == "" {
		return true
	}
	user, err := users.GetUserByID(c.Request.Context(), userID)
	if errors.Is(err, services.ErrUserNotFound) {
		abortUnauthorized(c)
		return false
	}
	if err != nil {
		respondError(c, logger, err)
		c.Abort()
		return false
	}
	c.Set(userContextKey, user)
	return true
}

func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "authentication required",
	})
}
