package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader names the client supplied replay key
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// IdempotencyConfig configures the replay guard
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency rejects a request whose Idempotency-Key was already seen for
// the same tenant and route. A key is released again when the first request
// did not succeed, so clients may retry failed calls with the same key.
// Requests without the header pass through.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		storeKey := idempotencyStoreKey(c, key)
		claimed, err := cfg.Store.MarkProcessed(c.Request.Context(), storeKey, cfg.TTL)
		if err != nil {
			cfg.Logger.Warn("Idempotency store unavailable, processing request unguarded",
				zap.String("key", key),
				zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(
				dto.ErrCodeDuplicateReq,
				"A request with this Idempotency-Key was already processed",
				GetRequestID(c),
			))
			return
		}

		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			if err := cfg.Store.Release(context.WithoutCancel(c.Request.Context()), storeKey); err != nil {
				cfg.Logger.Warn("Failed to release idempotency key",
					zap.String("key", key),
					zap.Error(err))
			}
		}
	}
}

func idempotencyStoreKey(c *gin.Context, key string) string {
	tenant := "anonymous"
	if claims := GetJWTClaims(c); claims != nil {
		tenant = claims.TenantID
	}
	return "http:" + tenant + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key
}
