package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/vet-admin-api/internal/repository"
	"github.com/jwalitptl/vet-admin-api/internal/service/audit"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
)

// AuditCleanupWorker deletes audit entries past the retention period.
type AuditCleanupWorker struct {
	service         *audit.Service
	retentionDays   int
	cleanupInterval time.Duration
	logger          *logger.Logger
}

func NewAuditCleanupWorker(service *audit.Service, retentionDays int, cleanupInterval time.Duration, log *logger.Logger) *AuditCleanupWorker {
	return &AuditCleanupWorker{
		service:         service,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		logger:          log,
	}
}

func (w *AuditCleanupWorker) Start(ctx context.Context) {
	every(ctx, w.cleanupInterval, func(ctx context.Context) {
		if _, err := w.Cleanup(ctx); err != nil {
			w.logger.Error(err, "audit cleanup failed")
		}
	})
}

func (w *AuditCleanupWorker) Cleanup(ctx context.Context) (int64, error) {
	rows, err := w.service.Cleanup(ctx, w.retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	if rows > 0 {
		w.logger.Info("cleaned up audit logs", "rows", rows, "retention_days", w.retentionDays)
	}
	return rows, nil
}

// OutboxCleanupWorker removes published outbox events older than the
// retention period.
type OutboxCleanupWorker struct {
	repo      repository.OutboxRepository
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
	now       func() time.Time
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retention, interval time.Duration, log *logger.Logger) *OutboxCleanupWorker {
	return &OutboxCleanupWorker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    log,
		now:       time.Now,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	every(ctx, w.interval, func(ctx context.Context) {
		if _, err := w.Cleanup(ctx); err != nil {
			w.logger.Error(err, "outbox cleanup failed")
		}
	})
}

func (w *OutboxCleanupWorker) Cleanup(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-w.retention)
	rows, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup outbox events: %w", err)
	}
	if rows > 0 {
		w.logger.Info("cleaned up outbox events", "rows", rows, "before", cutoff)
	}
	return rows, nil
}

// every runs fn immediately and then on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		interval = time.Hour
	}
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
