package messaging

import (
	"context"

	"github.com/jwalitptl/vet-admin-api/pkg/logger"
)

// Handler processes one raw message received on a topic.
type Handler func(ctx context.Context, payload []byte) error

// Dispatcher fans messages from a Broker subscription out to a handler.
type Dispatcher struct {
	broker Broker
	logger *logger.Logger
}

func NewDispatcher(broker Broker, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{broker: broker, logger: logger}
}

// Run blocks until ctx is cancelled or the subscription channel closes.
// Handler failures are logged and do not stop the loop.
func (d *Dispatcher) Run(ctx context.Context, topic string, handler Handler) error {
	msgChan, err := d.broker.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgChan:
			if !ok {
				return nil
			}
			if err := handler(ctx, msg); err != nil {
				d.logger.Error(err, "Failed to handle message", "topic", topic)
			}
		}
	}
}
