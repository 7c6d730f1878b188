package messaging

import (
	"context"
	"errors"
)

// Topics published by the clinic API
const (
	TopicNotifications = "notifications"
	TopicClinicEvents  = "clinic.events"
)

var ErrBrokerClosed = errors.New("broker closed")

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
