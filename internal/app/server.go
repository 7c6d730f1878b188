package app

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/vet-admin-api/internal/config"
	appointmentHandler "github.com/jwalitptl/vet-admin-api/internal/handler/appointment"
	auditHandler "github.com/jwalitptl/vet-admin-api/internal/handler/audit"
	authHandler "github.com/jwalitptl/vet-admin-api/internal/handler/auth"
	billingHandler "github.com/jwalitptl/vet-admin-api/internal/handler/billing"
	dashboardHandler "github.com/jwalitptl/vet-admin-api/internal/handler/dashboard"
	"github.com/jwalitptl/vet-admin-api/internal/handler/health"
	inventoryHandler "github.com/jwalitptl/vet-admin-api/internal/handler/inventory"
	labHandler "github.com/jwalitptl/vet-admin-api/internal/handler/lab"
	notificationHandler "github.com/jwalitptl/vet-admin-api/internal/handler/notification"
	patientHandler "github.com/jwalitptl/vet-admin-api/internal/handler/patient"
	"github.com/jwalitptl/vet-admin-api/internal/handler/prometheus"
	reportHandler "github.com/jwalitptl/vet-admin-api/internal/handler/report"
	staffHandler "github.com/jwalitptl/vet-admin-api/internal/handler/staff"
	"github.com/jwalitptl/vet-admin-api/internal/middleware"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/router"
	"github.com/jwalitptl/vet-admin-api/pkg/event"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
	"github.com/jwalitptl/vet-admin-api/pkg/validator"
)

// NewRouter wires every handler and middleware onto a gin engine.
func NewRouter(cfg *config.Config, infra *Infra, svcs *Services, log *logger.Logger) *router.Router {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	validator.RegisterGin()

	authMiddleware := middleware.NewAuthMiddleware(svcs.JWT)
	adminOnly := authMiddleware.RequireRole(model.StaffRoleAdmin)
	eventTracker := event.NewEventTrackerMiddleware(svcs.Events, log)

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.Server.AllowedOrigins
	}

	r := router.NewRouter(
		authMiddleware,
		middleware.NewAuditMiddleware(svcs.AuditLogger),
		eventTracker,
		prometheus.New(infra.Registry, MetricsNamespace),
		router.Handlers{
			Auth: authHandler.NewHandler(svcs.Auth),
			Events: []router.EventHandler{
				patientHandler.NewHandler(svcs.Patients),
				appointmentHandler.NewHandler(svcs.Appointments),
				billingHandler.NewHandler(svcs.Billing),
				labHandler.NewHandler(svcs.Lab),
				inventoryHandler.NewHandler(svcs.Inventory),
				staffHandler.NewHandler(svcs.Staff, adminOnly),
				notificationHandler.NewHandler(svcs.Notifications),
				reportHandler.NewHandler(svcs.Reports, adminOnly),
			},
			Plain: []router.Handler{
				dashboardHandler.NewHandler(svcs.Dashboard),
				auditHandler.NewHandler(svcs.Audit, adminOnly),
			},
			Health: health.NewHandler(infra.Checks),
		},
		router.RouterConfig{
			CORSConfig:       cors,
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RequestTimeout:   cfg.Server.RequestTimeout,
			MaxBodyBytes:     cfg.Server.MaxBodyBytes,
			Security: middleware.SecurityConfig{
				HSTSMaxAge:        cfg.Server.HSTSMaxAge,
				TrustForwardedTLS: cfg.Server.BehindTLSProxy,
			},
		},
	)
	r.Setup()
	return r
}
