package notification

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/handler"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/service/notification"
	"github.com/jwalitptl/vet-admin-api/pkg/event"
	"github.com/jwalitptl/vet-admin-api/pkg/httputil"
)

type Handler struct {
	service *notification.Service
}

func NewHandler(service *notification.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.GET("/:id", h.GetNotification)
		notifications.POST("", h.CreateNotification)
		notifications.POST("/read-all", h.MarkAllRead)
		notifications.PATCH("/:id/read", h.MarkRead)
		notifications.PATCH("/:id/archive", h.Archive)
	}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.GET("/:id", h.GetNotification)

		notifications.POST("", eventTracker.TrackEvent("notification", "create"), h.CreateNotification)
		notifications.POST("/read-all", eventTracker.TrackEvent("notification", "read_all"), h.MarkAllRead)
		notifications.PATCH("/:id/read", eventTracker.TrackEvent("notification", "read"), h.MarkRead)
		notifications.PATCH("/:id/archive", eventTracker.TrackEvent("notification", "archive"), h.Archive)
	}
}

func (h *Handler) CreateNotification(c *gin.Context) {
	var req model.CreateNotificationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	n, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, n.ID, nil, n)
	httputil.RespondCreated(c, n)
}

func (h *Handler) GetNotification(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	n, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, n)
}

func (h *Handler) ListNotifications(c *gin.Context) {
	var filters model.NotificationFilters
	if !handler.BindQuery(c, &filters) {
		return
	}

	notifications, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, notifications)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"unread": count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	n, err := h.service.MarkRead(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, n.ID, nil, n)
	httputil.RespondWithSuccess(c, n)
}

func (h *Handler) Archive(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	n, err := h.service.Archive(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, n.ID, nil, n)
	httputil.RespondWithSuccess(c, n)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	changed, err := h.service.MarkAllRead(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	result := gin.H{"updated": changed}
	if changed > 0 {
		event.SetResult(c, uuid.Nil, nil, result)
	}
	httputil.RespondWithSuccess(c, result)
}
