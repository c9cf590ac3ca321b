// Package router assembles the gin engine of the transfer API.
package router

import (
	"fmt"
	"time"

	_ "github.com/erp/stocktransfer/docs"
	apptransfer "github.com/erp/stocktransfer/internal/application/transfer"
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/infrastructure/logger"
	"github.com/erp/stocktransfer/internal/interfaces/http/handler"
	"github.com/erp/stocktransfer/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered by Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes and middleware of one API area
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []routeDefinition
	subgroups  []*DomainGroup
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle registers a route for method
func (dg *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle("GET", path, handlers...)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle("POST", path, handlers...)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle("PUT", path, handlers...)
}

// PATCH registers a PATCH route
func (dg *DomainGroup) PATCH(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle("PATCH", path, handlers...)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle("DELETE", path, handlers...)
}

// Group creates a sub-group that inherits this group's middleware
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Config holds the engine level HTTP settings
type Config struct {
	ServiceName    string
	MaxBodySize    int64
	TrustedProxies []string
	Tracing        bool
	IdempotencyTTL time.Duration
	// Production turns on the HTTPS redirect and HSTS
	Production     bool
	RateLimit      middleware.RateLimitConfig
	Swagger        middleware.SwaggerConfig
}

// Dependencies are the handlers and middleware collaborators of the API
type Dependencies struct {
	Logger *zap.Logger
	JWT    middleware.JWTConfig
	// Idempotency backs the Idempotency-Key guard; nil disables it
	Idempotency shared.IdempotencyStore
	Transfers   *handler.TransferHandler
	Stock       *handler.StockHandler
	Health      *handler.HealthHandler
}

// NewEngine builds the gin engine with the global middleware chain, the
// health probe and the inventory routes.
func NewEngine(cfg Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(middleware.RequestID(), middleware.SecureHeaders(cfg.Production))
	if cfg.Tracing {
		engine.Use(middleware.Tracing(cfg.ServiceName))
	}
	engine.Use(
		logger.GinMiddleware(deps.Logger),
		logger.Recovery(deps.Logger),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	if deps.Health != nil {
		engine.GET("/health", deps.Health.Health)
	}
	if deps.JWT.Logger == nil {
		deps.JWT.Logger = deps.Logger
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, middleware.JWTAuth(deps.JWT)),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	NewRouter(engine).Register(InventoryRoutes(cfg, deps)).Setup()
	return engine, nil
}

// InventoryRoutes declares the transfer, receipt and stock endpoints
func InventoryRoutes(cfg Config, deps Dependencies) *DomainGroup {
	if deps.JWT.Logger == nil {
		deps.JWT.Logger = deps.Logger
	}
	perm := func(p string) gin.HandlerFunc {
		return middleware.RequireAnyPermissionWithConfig(middleware.PermissionConfig{Logger: deps.Logger}, p)
	}
	replayGuard := middleware.Idempotency(middleware.IdempotencyConfig{
		Store:  deps.Idempotency,
		TTL:    cfg.IdempotencyTTL,
		Logger: deps.Logger,
	})

	inventory := NewDomainGroup("inventory", "/inventory").
		Use(middleware.JWTAuth(deps.JWT), middleware.RateLimit(cfg.RateLimit), middleware.SpanAttributes())

	t := deps.Transfers
	inventory.Group("transfers", "/transfers").
		POST("", perm(apptransfer.PermissionCreate), replayGuard, t.Create).
		GET("", perm(apptransfer.PermissionRead), t.List).
		GET("/:id", perm(apptransfer.PermissionRead), t.Get).
		PUT("/:id", perm(apptransfer.PermissionUpdate), t.Update).
		PATCH("/:id/status", perm(apptransfer.PermissionUpdate), t.ChangeStatus).
		DELETE("/:id", perm(apptransfer.PermissionDelete), t.Delete).
		POST("/:id/shipping-documents", perm(apptransfer.PermissionUpdate), t.RequestShippingDocumentUpload).
		GET("/:id/shipping-documents", perm(apptransfer.PermissionRead), t.ListShippingDocuments)

	s := deps.Stock
	inventory.
		POST("/receipts", perm(apptransfer.PermissionReceiveStock), replayGuard, s.ReceiveStock).
		GET("/stock", perm(apptransfer.PermissionStockRead), s.ListStock)

	return inventory
}
