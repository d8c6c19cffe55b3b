package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysteries-backend/internal/config"
	"mysteries-backend/internal/middleware"
	"mysteries-backend/internal/services"
)

func newJWT() *services.JWTService {
	return services.NewJWTService(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour})
}

func echoAccount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"account": c.GetString(middleware.AccountKey)})
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService := newJWT()

	router := gin.New()
	router.GET("/me", middleware.AuthMiddleware(jwtService), echoAccount)

	token, err := jwtService.GenerateToken("alice.near")
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic "+token)
		assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := serve(router, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice.near")
	})

	t.Run("query token", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthorityOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/admin", func(c *gin.Context) {
		c.Set(middleware.AccountKey, c.Query("as"))
		c.Next()
	}, middleware.AuthorityOnly("admin.near"), echoAccount)

	assert.Equal(t, http.StatusForbidden, serve(router, httptest.NewRequest(http.MethodGet, "/admin?as=alice.near", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(router, httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/admin?as=admin.near", nil)).Code)
}

type failingLimiter struct{}

func (failingLimiter) CheckRateLimit(context.Context, string, string, int, time.Duration) (bool, error) {
	return false, errors.New("store unavailable")
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(limiter middleware.RateLimiter) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(middleware.AccountKey, "alice.near")
			c.Next()
		}, middleware.RateLimitMiddleware(limiter, 1))
		router.POST("/users/:id/claim", echoAccount)
		router.POST("/accessories/:id/purchase", echoAccount)
		router.POST("/accessories/:id/purchase-with-points", echoAccount)
		router.GET("/me", echoAccount)
		return router
	}

	t.Run("throttles per action", func(t *testing.T) {
		router := newRouter(services.NewMemoryStore())

		post := func(path string) int {
			return serve(router, httptest.NewRequest(http.MethodPost, path, nil)).Code
		}
		assert.Equal(t, http.StatusOK, post("/users/1/claim"))
		assert.Equal(t, http.StatusTooManyRequests, post("/users/2/claim"))

		// Both purchase routes share one budget.
		assert.Equal(t, http.StatusOK, post("/accessories/200/purchase"))
		assert.Equal(t, http.StatusTooManyRequests, post("/accessories/201/purchase-with-points"))

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/me", nil)).Code)
		}
	})

	t.Run("limiter errors reject", func(t *testing.T) {
		router := newRouter(failingLimiter{})
		w := serve(router, httptest.NewRequest(http.MethodPost, "/users/1/claim", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}
