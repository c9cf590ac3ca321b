package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/infrastructure/auth"
	"github.com/erp/stocktransfer/internal/infrastructure/logger"
	"github.com/erp/stocktransfer/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by JWTAuth
const (
	JWTClaimsKey       = "jwt_claims"
	BusinessContextKey = "business_context"
	AuthHeaderKey      = "Authorization"
	BearerPrefix       = "Bearer "
)

// JWTConfig holds configuration for JWT middleware
type JWTConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// Revocations is optional; revoked token ids are rejected
	Revocations auth.RevocationList
	// Settings are the business defaults merged into every BusinessContext
	Settings auth.BusinessSettings
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuth validates the bearer token and stores its claims and the derived
// BusinessContext in the gin context.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, cfg, nil, "Missing authorization header")
			return
		}
		tokenString, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || tokenString == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			abortUnauthorized(c, cfg, err, "Token validation failed")
			return
		}

		if cfg.Revocations != nil && claims.ID != "" {
			revoked, err := cfg.Revocations.IsRevoked(c.Request.Context(), claims.ID)
			switch {
			case err != nil:
				// Fail open on revocation store errors.
				cfg.Logger.Error("Failed to check token revocation",
					zap.String("jti", claims.ID),
					zap.Error(err))
			case revoked:
				abortUnauthorized(c, cfg, auth.ErrTokenRevoked, "Token has been revoked")
				return
			}
		}

		biz, err := claims.BusinessContext(cfg.Settings)
		if err != nil {
			abortUnauthorized(c, cfg, err, "Token claims are malformed")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(BusinessContextKey, biz)
		c.Set(logger.GinTenantIDKey, claims.TenantID)
		c.Set(logger.GinUserIDKey, claims.UserID)

		ctx := c.Request.Context()
		reqLogger := logger.FromContext(ctx).With(
			zap.String("tenant_id", claims.TenantID),
			zap.String("user_id", claims.UserID),
		)
		c.Request = c.Request.WithContext(logger.WithContext(ctx, reqLogger))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, cfg JWTConfig, err error, reason string) {
	cfg.Logger.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
	)

	code, message := shared.CodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, message = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case err != nil:
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetBusinessContext retrieves the BusinessContext built by JWTAuth
func GetBusinessContext(c *gin.Context) (shared.BusinessContext, bool) {
	if v, exists := c.Get(BusinessContextKey); exists {
		if biz, ok := v.(shared.BusinessContext); ok {
			return biz, true
		}
	}
	return shared.BusinessContext{}, false
}
