package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
	"github.com/jwalitptl/vet-admin-api/pkg/messaging"
)

// EventConsumer follows the clinic event topic and writes one log line per
// published outbox event.
type EventConsumer struct {
	dispatcher *messaging.Dispatcher
	logger     *logger.Logger
}

func NewEventConsumer(broker messaging.Broker, log *logger.Logger) *EventConsumer {
	return &EventConsumer{
		dispatcher: messaging.NewDispatcher(broker, log),
		logger:     log,
	}
}

func (c *EventConsumer) Start(ctx context.Context) {
	if err := c.dispatcher.Run(ctx, messaging.TopicClinicEvents, c.Handle); err != nil {
		c.logger.Error(err, "event consumer stopped")
	}
}

func (c *EventConsumer) Handle(_ context.Context, payload []byte) error {
	var env model.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	c.logger.Info("clinic event", "event_id", env.ID, "event_type", env.Type, "created_at", env.CreatedAt)
	return nil
}
