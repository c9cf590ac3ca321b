package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request. Span names follow the route
// pattern, e.g. "GET /api/v1/inventory/transfers/:id".
func Tracing(serviceName string, opts ...otelgin.Option) gin.HandlerFunc {
	return otelgin.Middleware(serviceName, opts...)
}

// SpanAttributes tags the request span with the request, tenant and user
// ids. It must run after Tracing and JWTAuth.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			attrs := make([]attribute.KeyValue, 0, 3)
			if id := GetRequestID(c); id != "" {
				attrs = append(attrs, attribute.String("request_id", id))
			}
			if claims := GetJWTClaims(c); claims != nil {
				attrs = append(attrs,
					attribute.String("tenant_id", claims.TenantID),
					attribute.String("user_id", claims.UserID),
				)
			}
			span.SetAttributes(attrs...)
		}
		c.Next()
	}
}
