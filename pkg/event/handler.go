package event

import "github.com/gin-gonic/gin"

// EventHandler is implemented by handlers whose mutating routes are tracked.
type EventHandler interface {
	RegisterRoutesWithEvents(r *gin.RouterGroup, tracker *EventTrackerMiddleware)
}
