package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mysteries-backend/internal/services"
)

// AccountKey is the gin context key holding the authenticated account.
const AccountKey = "account"

func AuthMiddleware(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
				c.Abort()
				return
			}
			tokenString = parts[1]
		} else {
			tokenString = c.Query("token")
			if tokenString == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
				c.Abort()
				return
			}
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(AccountKey, claims.Account)

		c.Next()
	}
}

// AuthorityOnly rejects callers other than the configured authority account
// before the request reaches the state machine.
func AuthorityOnly(authority string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(AccountKey) != authority {
			c.JSON(http.StatusForbidden, gin.H{"error": "Authority account required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimiter counts actions per subject in a fixed window.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, subject, action string, limit int, window time.Duration) (bool, error)
}

// RateLimitMiddleware throttles the paying player routes per account.
func RateLimitMiddleware(limiter RateLimiter, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := c.GetString(AccountKey)
		if account == "" {
			c.Next()
			return
		}

		path := c.Request.URL.Path

		var action string
		switch {
		case strings.HasSuffix(path, "/claim"):
			action = "claim"
		case strings.HasSuffix(path, "/purchase"), strings.HasSuffix(path, "/purchase-with-points"):
			action = "purchase"
		default:
			c.Next()
			return
		}

		window := services.RateLimitWindow
		allowed, err := limiter.CheckRateLimit(c.Request.Context(), account, action, perMinute, window)
		if err != nil {
			slog.Error("rate limit check failed", "account", account, "action", action, "error", err)
		}
		if err != nil || !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
