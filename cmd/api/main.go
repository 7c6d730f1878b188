package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/vet-admin-api/internal/app"
	"github.com/jwalitptl/vet-admin-api/internal/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal(err, "failed to initialise storage")
	}
	defer infra.Close()

	svcs := app.NewServices(cfg, infra, logger)
	r := app.NewRouter(cfg, infra, svcs, logger)

	// A separate worker process cannot see the in-memory store, so the
	// server runs every loop itself in that mode.
	inMemory := cfg.Storage.Driver == config.StorageMemory
	var wg sync.WaitGroup
	bg := app.Background{Outbox: true, Reminders: inMemory, Cleanup: inMemory}
	if err := app.StartWorkers(ctx, &wg, bg, cfg, infra, svcs, logger); err != nil {
		logger.Fatal(err, "failed to start background workers")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "server forced to shutdown")
	}
	wg.Wait()
	svcs.AuditLogger.Wait()

	logger.Info("server exited properly")
}
