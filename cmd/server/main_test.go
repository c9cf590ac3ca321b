package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/stocktransfer/internal/infrastructure/cache"
	"github.com/erp/stocktransfer/internal/infrastructure/config"
)

func TestNewEngine_WiresProtectedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{
		App: config.AppConfig{Name: "stocktransfer", Env: "development"},
		JWT: config.JWTConfig{Secret: "test-secret-with-enough-length-0123456789", Issuer: "erp", AccessTokenExpiration: time.Hour},
		HTTP: config.HTTPConfig{
			MaxBodySize: 1 << 20,
			RateLimit:   10,
			RateWindow:  time.Minute,
		},
		Idempotency: config.IdempotencyConfig{Enabled: true, TTL: time.Hour},
	}

	engine, err := newEngine(cfg, zap.NewNop(), nil, nil, client, store)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/inventory/transfers", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
