package event

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/vet-admin-api/pkg/logger"
)

// TypeOf builds an event type such as LAB_RESULT_RECORD_RESULTS.
func TypeOf(resource, operation string) string {
	norm := func(s string) string {
		return strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(s))
	}
	return fmt.Sprintf("%s_%s", norm(resource), norm(operation))
}

type EventTrackerMiddleware struct {
	recorder Recorder
	logger   *logger.Logger
}

func NewEventTrackerMiddleware(recorder Recorder, logger *logger.Logger) *EventTrackerMiddleware {
	return &EventTrackerMiddleware{
		recorder: recorder,
		logger:   logger,
	}
}

// TrackEvent records an outbox event after the handler succeeds and has set
// NewData through SetResult. Failed requests record nothing.
func (m *EventTrackerMiddleware) TrackEvent(resource, operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventCtx := &EventContext{
			Resource:  resource,
			Operation: operation,
		}
		c.Set(contextKey, eventCtx)

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest || eventCtx.NewData == nil {
			return
		}

		payload := map[string]interface{}{
			"resource":  resource,
			"operation": operation,
			"entity_id": eventCtx.EntityID,
			"data":      eventCtx.NewData,
		}
		if staffID, ok := c.Get("staffID"); ok {
			payload["actor_id"] = staffID
		}
		for k, v := range eventCtx.Additional {
			payload[k] = v
		}

		if err := m.recorder.Record(c.Request.Context(), eventCtx.Type(), payload); err != nil {
			m.logger.Error(err, "Failed to record event",
				"event_type", eventCtx.Type(),
				"entity_id", eventCtx.EntityID.String())
		}
	}
}
