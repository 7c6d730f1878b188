package app

import (
	"context"
	"sync"

	"github.com/jwalitptl/vet-admin-api/internal/config"
	internalWorker "github.com/jwalitptl/vet-admin-api/internal/worker"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
	"github.com/jwalitptl/vet-admin-api/pkg/worker"
)

// Background selects which loops StartWorkers runs.
type Background struct {
	Outbox    bool
	Reminders bool
	Cleanup   bool
	EventLog  bool
}

// StartWorkers launches the selected loops on wg. They stop when ctx is
// cancelled.
func StartWorkers(ctx context.Context, wg *sync.WaitGroup, bg Background, cfg *config.Config, infra *Infra, svcs *Services, log *logger.Logger) error {
	run := func(start func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start(ctx)
		}()
	}

	if bg.Outbox {
		processor, err := worker.NewOutboxProcessor(
			infra.Store.Outbox,
			infra.Broker,
			cfg.Worker.ToOutboxConfig(),
			log.WithFields(map[string]interface{}{"worker": "outbox"}),
			infra.Metrics,
		)
		if err != nil {
			return err
		}
		run(processor.Start)
	}

	if bg.Reminders {
		reminders := internalWorker.NewReminderWorker(
			svcs.Notifications,
			svcs.Inventory,
			svcs.Billing,
			infra.Store.Patients,
			cfg.Worker.ReminderInterval,
			log.WithFields(map[string]interface{}{"worker": "reminders"}),
			infra.Metrics,
		)
		run(reminders.Start)
	}

	if bg.Cleanup {
		auditCleanup := internalWorker.NewAuditCleanupWorker(
			svcs.Audit,
			cfg.Audit.RetentionDays,
			cfg.Audit.CleanupInterval,
			log.WithFields(map[string]interface{}{"worker": "audit_cleanup"}),
		)
		outboxCleanup := internalWorker.NewOutboxCleanupWorker(
			infra.Store.Outbox,
			cfg.Worker.OutboxRetention,
			cfg.Audit.CleanupInterval,
			log.WithFields(map[string]interface{}{"worker": "outbox_cleanup"}),
		)
		run(auditCleanup.Start)
		run(outboxCleanup.Start)
	}

	if bg.EventLog {
		consumer := internalWorker.NewEventConsumer(infra.Broker, log.WithFields(map[string]interface{}{"worker": "events"}))
		run(consumer.Start)
	}

	return nil
}
