package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/infrastructure/config"
	"github.com/vitrina/backend/internal/infrastructure/logger"
	"github.com/vitrina/backend/internal/interfaces/http/handler"
	"github.com/vitrina/backend/internal/interfaces/http/middleware"
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
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes under the versioned API group
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// NewEngine builds a gin engine with the standard middleware chain
func NewEngine(cfg config.HTTPConfig, tracing middleware.TracingConfig, log *zap.Logger) *gin.Engine {
	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		// SetTrustedProxies only fails on unparseable CIDRs; surface it loudly
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("invalid trusted proxies, keeping gin defaults", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(tracing)...)
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg)))

	return engine
}

// MountSystem registers the unversioned health probe
func MountSystem(engine *gin.Engine, system *handler.SystemHandler) {
	engine.GET("/health", system.Health)
}
