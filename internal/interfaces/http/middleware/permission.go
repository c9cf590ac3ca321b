package middleware

import (
	"net/http"
	"slices"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PermissionConfig configures the permission guards
type PermissionConfig struct {
	Logger *zap.Logger
}

// RequirePermission admits callers whose token grants permission
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permission)
}

// RequireAnyPermissionWithConfig admits callers holding at least one of
// permissions. It must run after JWTAuth; a request without claims is
// answered with 401 and a request lacking every permission with 403.
func RequireAnyPermissionWithConfig(cfg PermissionConfig, permissions ...string) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(shared.CodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if slices.ContainsFunc(permissions, claims.HasPermission) {
			c.Next()
			return
		}
		log.Warn("Permission denied",
			zap.String("user_id", claims.UserID),
			zap.String("tenant_id", claims.TenantID),
			zap.Strings("required_any", permissions),
			zap.String("route", c.FullPath()),
		)
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponse(shared.CodeForbidden, "Missing permission for this action", GetRequestID(c)))
	}
}
