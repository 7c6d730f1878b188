package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jwalitptl/vet-admin-api/internal/config"
	"github.com/jwalitptl/vet-admin-api/internal/email"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	"github.com/jwalitptl/vet-admin-api/internal/repository/memory"
	"github.com/jwalitptl/vet-admin-api/internal/service/audit"
	"github.com/jwalitptl/vet-admin-api/internal/service/billing"
	"github.com/jwalitptl/vet-admin-api/internal/service/inventory"
	"github.com/jwalitptl/vet-admin-api/internal/service/notification"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
	"github.com/jwalitptl/vet-admin-api/pkg/messaging"
	"github.com/jwalitptl/vet-admin-api/pkg/metrics"
)

var testNow = time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store         *repository.Store
	notifications *notification.Service
	metrics       *metrics.Metrics
	worker        *ReminderWorker
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	broker := messaging.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })

	log := logger.Nop()
	m := metrics.New("test")
	notifications := notification.NewService(store.Notifications, email.NewService(config.SMTPConfig{}, log), broker, log, m)
	inv := inventory.NewService(store.Inventory, notifications, log, 30)
	bills := billing.NewService(store.Bills, store.Patients, 0.08, 30, time.UTC)

	w := NewReminderWorker(notifications, inv, bills, store.Patients, time.Hour, log, m)
	w.now = func() time.Time { return testNow }
	return &fixture{store: store, notifications: notifications, metrics: m, worker: w}
}

func (f *fixture) addPatient(t *testing.T, name, species string, vaccinations ...model.Vaccination) *model.Patient {
	t.Helper()
	p := &model.Patient{
		Name:         name,
		Species:      species,
		Owner:        model.Owner{Name: "Jordan Lee", Email: "jordan@example.com"},
		Vaccinations: vaccinations,
	}
	p.Touch(testNow)
	require.NoError(t, f.store.Patients.Create(context.Background(), p))
	return p
}

func TestSweepCreatesEachReminderOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	low := &model.InventoryItem{
		Name: "Carprofen 75mg", SKU: "MED-001", Category: model.InventoryCategoryMedication,
		Quantity: 3, MinStock: 10, Unit: "tablets", Price: decimal.RequireFromString("1.50"),
	}
	low.Touch(testNow)
	require.NoError(t, f.store.Inventory.Create(ctx, low))

	// required vaccines never given: Rabies and DHPP
	rex := f.addPatient(t, "Rex", "Dog")
	// all cat vaccines current except an expired FeLV
	f.addPatient(t, "Misty", "Cat",
		model.Vaccination{Name: "Rabies", Date: testNow.AddDate(0, -1, 0), ValidityPeriod: 365},
		model.Vaccination{Name: "FVRCP", Date: testNow.AddDate(0, -1, 0), ValidityPeriod: 1095},
		model.Vaccination{Name: "FeLV", Date: testNow.AddDate(-2, 0, 0), ValidityPeriod: 365},
	)

	bill := &model.Bill{
		PatientID: rex.ID,
		Date:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC),
		Total:     decimal.RequireFromString("108.00"),
		Status:    model.BillStatusPending,
	}
	bill.Touch(testNow)
	require.NoError(t, f.store.Bills.Create(ctx, bill))

	created := f.worker.Sweep(ctx)
	assert.Equal(t, map[string]int{
		SweepLowStock:     1,
		SweepExpiring:     0,
		SweepOverdueBills: 1,
		SweepVaccinations: 3,
	}, created)

	stored, err := f.store.Bills.Get(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BillStatusOverdue, stored.Status)

	all, err := f.notifications.List(ctx, &model.NotificationFilters{})
	require.NoError(t, err)
	titles := make([]string, 0, len(all))
	for _, n := range all {
		titles = append(titles, n.Title)
	}
	assert.Contains(t, titles, "Low stock: Carprofen 75mg")
	assert.Contains(t, titles, "Overdue bill: Rex")
	assert.Contains(t, titles, "Vaccination due: Rex (Rabies)")
	assert.Contains(t, titles, "Vaccination due: Misty (FeLV)")

	again := f.worker.Sweep(ctx)
	for kind, n := range again {
		assert.Zero(t, n, kind)
	}
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.ReminderSweeps.WithLabelValues(SweepVaccinations, "success")))
	assert.Equal(t, float64(0), testutil.ToFloat64(f.metrics.ReminderSweepSize.WithLabelValues(SweepVaccinations)))
}

func TestSweepRemindsAgainAfterRead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addPatient(t, "Rex", "Dog")

	first := f.worker.Sweep(ctx)
	require.Equal(t, 2, first[SweepVaccinations])

	_, err := f.notifications.MarkAllRead(ctx)
	require.NoError(t, err)

	second := f.worker.Sweep(ctx)
	assert.Equal(t, 2, second[SweepVaccinations])
}

func TestReminderWorkerStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.worker.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reminder worker did not stop")
	}
}

func TestAuditCleanup(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := audit.NewService(store.Audit)

	old := &model.AuditLog{ID: uuid.New(), Action: model.AuditActionCreate, EntityType: "patient", CreatedAt: time.Now().AddDate(-2, 0, 0)}
	recent := &model.AuditLog{ID: uuid.New(), Action: model.AuditActionCreate, EntityType: "patient", CreatedAt: time.Now()}
	require.NoError(t, store.Audit.Create(ctx, old))
	require.NoError(t, store.Audit.Create(ctx, recent))

	w := NewAuditCleanupWorker(svc, 365, time.Hour, logger.Nop())
	rows, err := w.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	logs, total, err := store.Audit.List(ctx, &model.AuditFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, recent.ID, logs[0].ID)
}

func TestOutboxCleanup(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Outbox

	events := make([]*model.OutboxEvent, 3)
	for i := range events {
		events[i] = &model.OutboxEvent{
			ID:        uuid.New(),
			EventType: "PATIENT_CREATE",
			Payload:   json.RawMessage(`{}`),
			Status:    model.OutboxStatusPending,
			CreatedAt: testNow,
		}
		require.NoError(t, repo.Create(ctx, events[i]))
	}
	require.NoError(t, repo.UpdateStatus(ctx, events[0].ID, model.OutboxStatusProcessed, nil))
	require.NoError(t, repo.UpdateStatus(ctx, events[1].ID, model.OutboxStatusProcessed, nil))

	w := NewOutboxCleanupWorker(repo, time.Hour, time.Hour, logger.Nop())
	w.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	rows, err := w.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	pending, err := repo.GetPendingEventsWithLock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, events[2].ID, pending[0].ID)
}

func TestEventConsumerHandle(t *testing.T) {
	c := NewEventConsumer(messaging.NewMemoryBroker(), logger.Nop())

	env, err := json.Marshal(model.Envelope{ID: uuid.New(), Type: "PATIENT_CREATE", CreatedAt: testNow})
	require.NoError(t, err)
	assert.NoError(t, c.Handle(context.Background(), env))
	assert.Error(t, c.Handle(context.Background(), []byte("not json")))
}

func TestEventConsumerStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	broker := messaging.NewMemoryBroker()
	defer broker.Close()
	c := NewEventConsumer(broker, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event consumer did not stop")
	}
}
