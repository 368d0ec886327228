package router

import (
	"github.com/artcase/storefront/internal/application/guard"
	"github.com/artcase/storefront/internal/infrastructure/config"
	"github.com/artcase/storefront/internal/infrastructure/logger"
	"github.com/artcase/storefront/internal/interfaces/http/handler"
	"github.com/artcase/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// HealthPath is served without a profile
const HealthPath = "/health"

// Handlers are the page handlers mounted by the storefront routes
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Auth     *handler.AuthHandler
	Checkout *handler.CheckoutHandler
	Admin    *handler.AdminHandler
	System   *handler.SystemHandler
}

// Options configure the storefront engine
type Options struct {
	Logger   *zap.Logger
	HTTP     config.HTTPConfig
	Profiles middleware.ProfileMiddlewareConfig
	Tracing  middleware.TracingConfig
	// Meter records request metrics; nil disables them
	Meter     metric.Meter
	Profiling bool
	// Limiter throttles every request and AuthLimiter the credential posts;
	// nil disables either
	Limiter     *middleware.RateLimiter
	AuthLimiter *middleware.RateLimiter
	Handlers    Handlers
}

// NewEngine builds the gin engine with the storefront middleware chain and routes.
//
// Middleware order:
//  1. RequestID, request logger and panic recovery
//  2. otelgin tracing with span enrichment, request metrics, profiling labels
//  3. CORS, security headers and rate limiting
//  4. per-group body limits, the browser profile and the route guards
func NewEngine(opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.MaxMultipartMemory = 8 << 20

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(opts.Tracing))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(opts.Meter))
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:   opts.Profiling,
		SkipPaths: []string{HealthPath},
	}))

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.Secure())
	if opts.Limiter != nil {
		engine.Use(middleware.RateLimit(opts.Limiter))
	}

	h := opts.Handlers
	if h.System != nil {
		engine.GET(HealthPath, h.System.Health)
	}

	profiles := opts.Profiles
	if profiles.Logger == nil {
		profiles.Logger = log
	}
	r := NewRouter(engine)
	r.Use(middleware.Profile(profiles))
	for _, g := range StorefrontGroups(h, opts) {
		r.Register(g)
	}
	r.Setup()

	return engine
}

// StorefrontGroups returns the page routes: public pages, the session-gated
// checkout and the admin dashboard
func StorefrontGroups(h Handlers, opts Options) []*DomainGroup {
	bodyLimit := middleware.BodyLimit(opts.HTTP.MaxBodySize)
	authLimit := func(c *gin.Context) { c.Next() }
	if opts.AuthLimiter != nil {
		authLimit = middleware.AuthRateLimit(opts.AuthLimiter)
	}

	pages := NewDomainGroup("pages", "").Use(bodyLimit)
	pages.GET("/", h.Catalog.Home).
		GET("/gallery", h.Catalog.Gallery).
		GET("/about", h.Catalog.About).
		GET("/products/:id", h.Catalog.Product)

	pages.GET("/login", h.Auth.LoginPage).
		POST("/login", authLimit, h.Auth.Login).
		GET("/register", h.Auth.RegisterPage).
		POST("/register", authLimit, h.Auth.Register).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me).
		GET("/notifications", h.Auth.Notifications)

	cart := pages.Group("cart", "/cart")
	cart.GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		POST("/items", h.Cart.Add).
		POST("/items/:id/decrease", h.Cart.Decrease).
		DELETE("/items/:id", h.Cart.Remove)

	checkout := NewDomainGroup("checkout", "").Use(bodyLimit, middleware.Guard(guard.RequireSession))
	checkout.GET("/checkout", h.Checkout.Page).
		POST("/checkout", h.Checkout.Place).
		GET("/thank-you", h.Checkout.ThankYou)

	admin := NewDomainGroup("admin", "/admin").Use(middleware.Guard(guard.RequireAdmin))
	admin.GET("", h.Admin.Dashboard).
		POST("/artworks", middleware.BodyLimit(opts.HTTP.MaxUploadSize), h.Admin.Publish)

	return []*DomainGroup{pages, checkout, admin}
}
