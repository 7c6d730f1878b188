package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/vet-admin-api/internal/app"
	"github.com/jwalitptl/vet-admin-api/internal/config"
	"github.com/jwalitptl/vet-admin-api/internal/handler/health"
	"github.com/jwalitptl/vet-admin-api/internal/handler/prometheus"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
)

func setupHealthCheck(addr string, infra *app.Infra, logger *logger.Logger) *http.Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	health.NewHandler(infra.Checks).RegisterRoutes(engine)
	engine.GET("/metrics", prometheus.New(infra.Registry, app.MetricsNamespace+"_worker").Handler())

	srv := &http.Server{Addr: addr, Handler: engine}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "health check server failed")
		}
	}()
	return srv
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	healthAddr := flag.String("health-addr", ":8081", "address of the health and metrics endpoints")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := app.NewLogger(cfg.Log)
	gin.SetMode(gin.ReleaseMode)

	if cfg.Storage.Driver == config.StorageMemory {
		logger.Warn("worker started with in-memory storage; it only sees its own data set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal(err, "failed to initialise storage")
	}
	defer infra.Close()

	svcs := app.NewServices(cfg, infra, logger)
	healthSrv := setupHealthCheck(*healthAddr, infra, logger)

	var wg sync.WaitGroup
	bg := app.Background{Outbox: true, Reminders: true, Cleanup: true, EventLog: true}
	if err := app.StartWorkers(ctx, &wg, bg, cfg, infra, svcs, logger); err != nil {
		logger.Fatal(err, "failed to start workers")
	}
	logger.Info("worker started", "health_addr", *healthAddr)

	<-ctx.Done()
	logger.Info("shutting down...")
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(shutdownCtx)
}
