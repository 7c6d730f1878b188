package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/vet-admin-api/internal/handler/health"
	"github.com/jwalitptl/vet-admin-api/internal/handler/prometheus"
	"github.com/jwalitptl/vet-admin-api/internal/middleware"
	"github.com/jwalitptl/vet-admin-api/pkg/event"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type EventHandler interface {
	Handler
	event.EventHandler
}

// AuthHandler serves the public token endpoints and the protected profile.
type AuthHandler interface {
	Handler
	RegisterProtectedRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	CORSConfig       middleware.CORSConfig
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RequestTimeout   time.Duration
	MaxBodyBytes     int64
	Security         middleware.SecurityConfig
}

// Handlers lists everything mounted under /api/v1. Event handlers get the
// tracker; plain handlers are registered as they are.
type Handlers struct {
	Auth   AuthHandler
	Events []EventHandler
	Plain  []Handler
	Health *health.Handler
}

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	audit        *middleware.AuditMiddleware
	eventTracker *event.EventTrackerMiddleware
	prom         *prometheus.Handler
	handlers     Handlers
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	audit *middleware.AuditMiddleware,
	eventTracker *event.EventTrackerMiddleware,
	prom *prometheus.Handler,
	handlers Handlers,
	config RouterConfig,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:       engine,
		auth:         auth,
		audit:        audit,
		eventTracker: eventTracker,
		prom:         prom,
		handlers:     handlers,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		prom.Middleware(),
		middleware.SecurityHeaders(config.Security),
		middleware.CORS(config.CORSConfig),
		middleware.SizeLimit(config.MaxBodyBytes),
		middleware.Timeout(config.RequestTimeout),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)
	r.handlers.Auth.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(
		r.auth.Authenticate(),
		r.audit.AuditLog(),
	)
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(rg)
	}
	rg.GET("/health/metrics", r.prom.Handler())
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.handlers.Auth.RegisterProtectedRoutes(rg)
	for _, h := range r.handlers.Events {
		h.RegisterRoutesWithEvents(rg, r.eventTracker)
	}
	for _, h := range r.handlers.Plain {
		h.RegisterRoutes(rg)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
