// Package app builds the storage, broker and services shared by the server,
// the worker and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/vet-admin-api/internal/config"
	"github.com/jwalitptl/vet-admin-api/internal/email"
	"github.com/jwalitptl/vet-admin-api/internal/handler/health"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	"github.com/jwalitptl/vet-admin-api/internal/repository/memory"
	"github.com/jwalitptl/vet-admin-api/internal/repository/postgres"
	"github.com/jwalitptl/vet-admin-api/internal/repository/seed"
	"github.com/jwalitptl/vet-admin-api/internal/service/appointment"
	"github.com/jwalitptl/vet-admin-api/internal/service/audit"
	authService "github.com/jwalitptl/vet-admin-api/internal/service/auth"
	"github.com/jwalitptl/vet-admin-api/internal/service/billing"
	"github.com/jwalitptl/vet-admin-api/internal/service/dashboard"
	"github.com/jwalitptl/vet-admin-api/internal/service/inventory"
	"github.com/jwalitptl/vet-admin-api/internal/service/lab"
	"github.com/jwalitptl/vet-admin-api/internal/service/notification"
	"github.com/jwalitptl/vet-admin-api/internal/service/patient"
	"github.com/jwalitptl/vet-admin-api/internal/service/report"
	"github.com/jwalitptl/vet-admin-api/internal/service/staff"
	"github.com/jwalitptl/vet-admin-api/pkg/auth"
	"github.com/jwalitptl/vet-admin-api/pkg/event"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
	"github.com/jwalitptl/vet-admin-api/pkg/messaging"
	"github.com/jwalitptl/vet-admin-api/pkg/messaging/redis"
	"github.com/jwalitptl/vet-admin-api/pkg/metrics"
	"github.com/jwalitptl/vet-admin-api/pkg/security"
)

const MetricsNamespace = "vetclinic"

// NewLogger builds the process logger from config and installs it as the
// zerolog global used by the HTTP middleware.
func NewLogger(cfg config.LogConfig) *logger.Logger {
	log := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Level),
		Format: cfg.Format,
	})
	log.SetGlobal()
	return log
}

// Infra holds the process-wide dependencies that need closing.
type Infra struct {
	Store    *repository.Store
	Broker   messaging.Broker
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Checks   map[string]health.Check
	Hasher   security.PasswordHasher

	closers []func() error
}

// Open connects storage and the broker according to cfg. Postgres is
// migrated on open; the demo fixture is loaded into an empty store when
// storage.seed is set.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Infra, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	infra := &Infra{
		Registry: registry,
		Metrics:  metrics.NewMetrics(registry, MetricsNamespace, ""),
		Checks:   map[string]health.Check{},
		Hasher:   security.NewBcryptHasher(bcrypt.DefaultCost),
	}

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		infra.closers = append(infra.closers, db.Close)
		if err := postgres.MigrateUp(db); err != nil {
			infra.Close()
			return nil, err
		}
		infra.Store = postgres.NewStore(db, infra.Metrics)
		infra.Checks["database"] = db.PingContext
	default:
		infra.Store = memory.NewStore()
	}

	if cfg.Redis.Enabled {
		zl := log.ZL.With().Str("component", "redis").Logger()
		broker, err := redis.NewRedisBroker(ctx, cfg.Redis.ToBrokerConfig(), &zl)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Broker = broker
		infra.Checks["redis"] = broker.Ping
	} else {
		infra.Broker = messaging.NewMemoryBroker()
	}
	infra.closers = append(infra.closers, infra.Broker.Close)

	if cfg.Storage.Seed {
		seeded, err := SeedIfEmpty(ctx, infra.Store, infra.Hasher)
		if err != nil {
			infra.Close()
			return nil, err
		}
		if seeded {
			log.Info("loaded demo data", "driver", cfg.Storage.Driver)
		}
	}

	return infra, nil
}

// SeedIfEmpty loads the demo fixture unless staff records already exist.
func SeedIfEmpty(ctx context.Context, store *repository.Store, hasher security.PasswordHasher) (bool, error) {
	existing, err := store.Staff.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check existing data: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}
	if err := seed.Load(ctx, store, hasher.Hash, time.Now()); err != nil {
		return false, fmt.Errorf("failed to load demo data: %w", err)
	}
	return true, nil
}

// Close releases resources in reverse order of acquisition.
func (i *Infra) Close() error {
	var errs []error
	for j := len(i.closers) - 1; j >= 0; j-- {
		if err := i.closers[j](); err != nil {
			errs = append(errs, err)
		}
	}
	i.closers = nil
	return errors.Join(errs...)
}

type Services struct {
	JWT           auth.JWTService
	Events        *event.Service
	Audit         *audit.Service
	AuditLogger   *audit.AuditLogger
	Auth          *authService.Service
	Staff         *staff.Service
	Patients      *patient.Service
	Appointments  *appointment.Service
	Billing       *billing.Service
	Lab           *lab.Service
	Inventory     *inventory.Service
	Notifications *notification.Service
	Reports       *report.Service
	Dashboard     *dashboard.Service
}

func NewServices(cfg *config.Config, infra *Infra, log *logger.Logger) *Services {
	store := infra.Store
	loc := cfg.Server.Location()

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})

	auditSvc := audit.NewService(store.Audit)
	auditLogger := audit.NewAuditLogger(auditSvc, log)
	notifications := notification.NewService(store.Notifications, email.NewService(cfg.SMTP, log), infra.Broker, log, infra.Metrics)

	return &Services{
		JWT:           jwtSvc,
		Events:        event.NewService(store.Outbox),
		Audit:         auditSvc,
		AuditLogger:   auditLogger,
		Auth:          authService.NewService(store.Staff, jwtSvc, infra.Hasher, auditLogger),
		Staff:         staff.NewService(store.Staff, infra.Hasher, loc),
		Patients:      patient.NewService(store.Patients, store.Appointments, store.Bills, loc),
		Appointments:  appointment.NewService(store.Appointments, store.Patients, store.Staff, loc),
		Billing:       billing.NewService(store.Bills, store.Patients, cfg.Billing.TaxRate, cfg.Billing.DueDays, loc),
		Lab:           lab.NewService(store.LabResults, store.Patients),
		Inventory:     inventory.NewService(store.Inventory, notifications, log, cfg.Inventory.ExpiryWindowDays),
		Notifications: notifications,
		Reports:       report.NewService(store, cfg.Reports.CacheTTL, log, infra.Metrics, loc),
		Dashboard:     dashboard.NewService(store, cfg.Inventory.ExpiryWindowDays, loc),
	}
}
