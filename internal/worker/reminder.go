package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	"github.com/jwalitptl/vet-admin-api/internal/service/inventory"
	"github.com/jwalitptl/vet-admin-api/internal/service/patient"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
	"github.com/jwalitptl/vet-admin-api/pkg/metrics"
)

// Sweep kinds, also used as metric labels.
const (
	SweepLowStock     = "low_stock"
	SweepExpiring     = "expiring"
	SweepOverdueBills = "overdue_bills"
	SweepVaccinations = "vaccinations"
)

type Notifier interface {
	NotifyOnce(ctx context.Context, n *model.Notification) (bool, error)
}

type StockAlerter interface {
	Alerts(ctx context.Context) (lowStock, expiring []*model.InventoryItemView, err error)
}

type OverdueMarker interface {
	MarkOverdue(ctx context.Context) ([]*model.Bill, error)
	List(ctx context.Context, filters *model.BillFilters) ([]*model.Bill, error)
}

// ReminderWorker periodically raises reminder notifications. Each reminder
// is created at most once while an unread copy exists.
type ReminderWorker struct {
	notifier  Notifier
	inventory StockAlerter
	billing   OverdueMarker
	patients  repository.PatientRepository
	interval  time.Duration
	logger    *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewReminderWorker(notifier Notifier, inv StockAlerter, billing OverdueMarker, patients repository.PatientRepository,
	interval time.Duration, log *logger.Logger, m *metrics.Metrics) *ReminderWorker {
	return &ReminderWorker{
		notifier:  notifier,
		inventory: inv,
		billing:   billing,
		patients:  patients,
		interval:  interval,
		logger:    log,
		metrics:   m,
		now:       time.Now,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	w.logger.Info("reminder worker started", "interval", w.interval)
	every(ctx, w.interval, func(ctx context.Context) {
		w.Sweep(ctx)
	})
	w.logger.Info("reminder worker stopped")
}

// Sweep runs every reminder kind once and returns the number of
// notifications created per kind. A failing kind does not stop the others.
func (w *ReminderWorker) Sweep(ctx context.Context) map[string]int {
	sweeps := []struct {
		kind string
		fn   func(context.Context) (int, error)
	}{
		{SweepLowStock, w.sweepLowStock},
		{SweepExpiring, w.sweepExpiring},
		{SweepOverdueBills, w.sweepOverdueBills},
		{SweepVaccinations, w.sweepVaccinations},
	}

	created := make(map[string]int, len(sweeps))
	for _, s := range sweeps {
		n, err := s.fn(ctx)
		created[s.kind] = n
		status := "success"
		if err != nil {
			status = "error"
			w.logger.Error(err, "reminder sweep failed", "kind", s.kind)
		}
		if w.metrics != nil {
			w.metrics.ReminderSweeps.WithLabelValues(s.kind, status).Inc()
			w.metrics.ReminderSweepSize.WithLabelValues(s.kind).Set(float64(n))
		}
	}
	return created
}

func (w *ReminderWorker) notifyAll(ctx context.Context, notes []*model.Notification) (int, error) {
	created := 0
	for _, n := range notes {
		ok, err := w.notifier.NotifyOnce(ctx, n)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (w *ReminderWorker) sweepLowStock(ctx context.Context) (int, error) {
	low, _, err := w.inventory.Alerts(ctx)
	if err != nil {
		return 0, err
	}
	notes := make([]*model.Notification, 0, len(low))
	for _, v := range low {
		notes = append(notes, inventory.LowStockNotification(v.InventoryItem))
	}
	return w.notifyAll(ctx, notes)
}

func (w *ReminderWorker) sweepExpiring(ctx context.Context) (int, error) {
	_, expiring, err := w.inventory.Alerts(ctx)
	if err != nil {
		return 0, err
	}
	notes := make([]*model.Notification, 0, len(expiring))
	for _, v := range expiring {
		notes = append(notes, inventory.ExpiringNotification(v.InventoryItem))
	}
	return w.notifyAll(ctx, notes)
}

func (w *ReminderWorker) sweepOverdueBills(ctx context.Context) (int, error) {
	if _, err := w.billing.MarkOverdue(ctx); err != nil {
		return 0, err
	}
	bills, err := w.billing.List(ctx, &model.BillFilters{Status: string(model.BillStatusOverdue)})
	if err != nil {
		return 0, err
	}

	notes := make([]*model.Notification, 0, len(bills))
	for _, b := range bills {
		name := "unknown patient"
		recipient := ""
		if p, err := w.patients.Get(ctx, b.PatientID); err == nil {
			name = p.Name
			recipient = p.Owner.Email
		}
		notes = append(notes, &model.Notification{
			Title: "Overdue bill: " + name,
			Message: fmt.Sprintf("Bill of %s for %s was due on %s.",
				b.Total.StringFixed(2), name, b.DueDate.Format(model.DateLayout)),
			Priority:  model.NotificationPriorityHigh,
			Link:      "/bills/" + b.ID.String(),
			Recipient: recipient,
		})
	}
	return w.notifyAll(ctx, notes)
}

// sweepVaccinations reminds about overdue vaccines and required vaccines
// that were never given.
func (w *ReminderWorker) sweepVaccinations(ctx context.Context) (int, error) {
	patients, err := w.patients.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list patients: %w", err)
	}

	now := w.now()
	var notes []*model.Notification
	for _, p := range patients {
		for _, entry := range patient.Schedule(p, now) {
			var msg string
			switch {
			case entry.Status == model.VaccinationStatusOverdue:
				msg = fmt.Sprintf("%s vaccine for %s was due on %s.", entry.Name, p.Name, entry.NextDue.Format(model.DateLayout))
			case entry.Status == model.VaccinationStatusDue && entry.Required:
				msg = fmt.Sprintf("%s has no record of the required %s vaccine.", p.Name, entry.Name)
			default:
				continue
			}
			notes = append(notes, &model.Notification{
				Title:     fmt.Sprintf("Vaccination due: %s (%s)", p.Name, entry.Name),
				Message:   msg,
				Priority:  model.NotificationPriorityMedium,
				Link:      "/patients/" + p.ID.String() + "/vaccinations/schedule",
				Recipient: p.Owner.Email,
			})
		}
	}
	return w.notifyAll(ctx, notes)
}
