package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	"github.com/jwalitptl/vet-admin-api/internal/repository/memory"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
	"github.com/jwalitptl/vet-admin-api/pkg/messaging"
	"github.com/jwalitptl/vet-admin-api/pkg/metrics"
)

var testConfig = OutboxProcessorConfig{
	BatchSize:     10,
	PollInterval:  10 * time.Millisecond,
	RetryAttempts: 3,
	RetryDelay:    time.Millisecond,
}

// flakyBroker fails the first failures publishes and records the rest.
type flakyBroker struct {
	mu        sync.Mutex
	failures  int
	published []model.Envelope
	topics    []string
}

func (b *flakyBroker) Publish(_ context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures > 0 {
		b.failures--
		return errors.New("broker unavailable")
	}
	b.published = append(b.published, message.(model.Envelope))
	b.topics = append(b.topics, channel)
	return nil
}

func (b *flakyBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not supported")
}

func (b *flakyBroker) Close() error { return nil }

func addEvent(t *testing.T, repo repository.OutboxRepository, eventType string) *model.OutboxEvent {
	t.Helper()
	e := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   json.RawMessage(`{"entity_id":"x"}`),
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	_, err := NewOutboxProcessor(memory.NewOutboxRepository(), &flakyBroker{}, OutboxProcessorConfig{}, logger.Nop(), metrics.New("test"))
	assert.Error(t, err)
}

func TestProcessBatchPublishesEnvelopes(t *testing.T) {
	repo := memory.NewOutboxRepository()
	broker := &flakyBroker{}
	m := metrics.New("test")
	p, err := NewOutboxProcessor(repo, broker, testConfig, logger.Nop(), m)
	require.NoError(t, err)

	first := addEvent(t, repo, "PATIENT_CREATE")
	addEvent(t, repo, "APPOINTMENT_CREATE")

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, broker.published, 2)
	assert.Equal(t, []string{messaging.TopicClinicEvents, messaging.TopicClinicEvents}, broker.topics)
	assert.Equal(t, first.ID, broker.published[0].ID)
	assert.Equal(t, "PATIENT_CREATE", broker.published[0].Type)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.OutboxEventsProcessed))

	// nothing left to publish
	n, err = p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcessBatchRetries(t *testing.T) {
	repo := memory.NewOutboxRepository()
	broker := &flakyBroker{failures: 2}
	m := metrics.New("test")
	p, err := NewOutboxProcessor(repo, broker, testConfig, logger.Nop(), m)
	require.NoError(t, err)

	addEvent(t, repo, "BILL_CREATE")

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.OutboxRetries.WithLabelValues("BILL_CREATE")))
}

func TestProcessBatchMarksFailed(t *testing.T) {
	repo := memory.NewOutboxRepository()
	broker := &flakyBroker{failures: 10}
	m := metrics.New("test")
	p, err := NewOutboxProcessor(repo, broker, testConfig, logger.Nop(), m)
	require.NoError(t, err)

	addEvent(t, repo, "BILL_CREATE")

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxEventsFailed))
	assert.Empty(t, broker.published)
}

// cancellingBroker cancels the processor's context on the first publish and
// fails every attempt.
type cancellingBroker struct {
	cancel context.CancelFunc
	calls  int
}

func (b *cancellingBroker) Publish(context.Context, string, interface{}) error {
	b.calls++
	b.cancel()
	return errors.New("broker unavailable")
}

func (b *cancellingBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not supported")
}

func (b *cancellingBroker) Close() error { return nil }

func TestProcessBatchLeavesEventPendingOnShutdown(t *testing.T) {
	repo := memory.NewOutboxRepository()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broker := &cancellingBroker{cancel: cancel}
	m := metrics.New("test")

	cfg := testConfig
	cfg.RetryDelay = time.Hour
	p, err := NewOutboxProcessor(repo, broker, cfg, logger.Nop(), m)
	require.NoError(t, err)

	e := addEvent(t, repo, "BILL_CREATE")

	n, err := p.ProcessBatch(ctx)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, broker.calls)
	assert.Zero(t, testutil.ToFloat64(m.OutboxEventsFailed))

	pending, err := repo.GetPendingEventsWithLock(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, e.ID, pending[0].ID)
	assert.Nil(t, pending[0].ErrorMessage)
}

func TestStartStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	repo := memory.NewOutboxRepository()
	broker := &flakyBroker{}
	p, err := NewOutboxProcessor(repo, broker, testConfig, logger.Nop(), metrics.New("test"))
	require.NoError(t, err)
	addEvent(t, repo, "LAB_RESULT_REQUEST")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		broker.mu.Lock()
		defer broker.mu.Unlock()
		return len(broker.published) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop")
	}
}
