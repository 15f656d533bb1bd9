// Package router assembles the gin engine and mounts the HTTP handlers.
package router

import (
	"fmt"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/config"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/erp/ledgercore/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
	rootRoutes []RouteRegistrar
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
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar mounted under /api/<version>
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// RegisterRoot adds a RouteRegistrar mounted at the engine root, for health checks
func (r *Router) RegisterRoot(registrar RouteRegistrar) *Router {
	r.rootRoutes = append(r.rootRoutes, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	root := r.engine.Group("")
	for _, registrar := range r.rootRoutes {
		registrar.RegisterRoutes(root)
	}

	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// EngineOptions configures the middleware stack built by NewEngine
type EngineOptions struct {
	Logger *zap.Logger
	HTTP   config.HTTPConfig

	// ServiceName names the server spans; empty disables tracing
	ServiceName string
	// Meter records HTTP metrics; nil disables them
	Meter metric.Meter
	// Profiling labels CPU samples with the route
	Profiling bool

	// Idempotency guards mutating requests that carry an Idempotency-Key; nil disables it
	Idempotency    shared.IdempotencyStore
	IdempotencyTTL time.Duration
}

// NewEngine creates a gin engine with the middleware applied in order:
// recovery, request ID, actor, tracing, access log, metrics, profiling labels,
// body limit and the idempotency guard.
func NewEngine(opts EngineOptions) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			return nil, fmt.Errorf("set trusted proxies: %w", err)
		}
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Actor(),
	)
	if opts.ServiceName != "" {
		engine.Use(middleware.Tracing(opts.ServiceName), middleware.SpanAttributes())
	}
	engine.Use(logger.GinMiddleware(log))
	if opts.Meter != nil {
		metrics, err := middleware.HTTPMetrics(opts.Meter)
		if err != nil {
			return nil, fmt.Errorf("create HTTP metrics: %w", err)
		}
		engine.Use(metrics)
	}
	if opts.Profiling {
		engine.Use(middleware.Profiling())
	}
	if opts.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))
	}
	if opts.Idempotency != nil {
		engine.Use(middleware.Idempotency(opts.Idempotency, opts.IdempotencyTTL))
	}
	return engine, nil
}
