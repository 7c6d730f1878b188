package event

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextKey = "eventCtx"

// EventContext is filled in by handlers while a tracked request runs.
type EventContext struct {
	Resource   string
	Operation  string
	EntityID   uuid.UUID
	OldData    interface{}
	NewData    interface{}
	Additional map[string]interface{}
}

// Type is the outbox event type, e.g. APPOINTMENT_CREATE.
func (e *EventContext) Type() string {
	return TypeOf(e.Resource, e.Operation)
}

// Recorder persists an event for later publication.
type Recorder interface {
	Record(ctx context.Context, eventType string, payload interface{}) error
}

// FromContext returns the event context of a tracked request, or nil.
func FromContext(c *gin.Context) *EventContext {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	ec, _ := v.(*EventContext)
	return ec
}

// SetResult records the outcome of a tracked handler. old may be nil.
func SetResult(c *gin.Context, id uuid.UUID, old, new interface{}) {
	ec := FromContext(c)
	if ec == nil {
		return
	}
	ec.EntityID = id
	ec.OldData = old
	ec.NewData = new
}
