package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/erp/stocktransfer/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
)

type rateKeyCtx struct{}

// RateLimitConfig bounds how many requests one caller may make per window
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// RateLimit throttles callers with a sliding window counter. Authenticated
// requests are counted per tenant and user, so it belongs after JWTAuth;
// anonymous ones fall back to the client IP. Over the limit the request is
// answered with 429 and a Retry-After header. A non-positive Requests value
// disables the limiter.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Requests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	limiter := httprate.Limit(cfg.Requests, cfg.Window,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(dto.NewErrorResponse(
				dto.ErrCodeRateLimited, "Too many requests, retry later", w.Header().Get(RequestIDHeader)))
		}),
	)

	return func(c *gin.Context) {
		if claims := GetJWTClaims(c); claims != nil {
			ctx := context.WithValue(c.Request.Context(), rateKeyCtx{}, claims.TenantID+":"+claims.UserID)
			c.Request = c.Request.WithContext(ctx)
		}
		admitted := false
		limiter(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			admitted = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !admitted {
			c.Abort()
		}
	}
}

func rateLimitKey(r *http.Request) (string, error) {
	if key, ok := r.Context().Value(rateKeyCtx{}).(string); ok {
		return "caller:" + key, nil
	}
	ip, err := httprate.KeyByRealIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + ip, nil
}
