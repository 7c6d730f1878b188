package staff

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/vet-admin-api/internal/handler"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/service/staff"
	"github.com/jwalitptl/vet-admin-api/pkg/event"
	"github.com/jwalitptl/vet-admin-api/pkg/httputil"
)

type Handler struct {
	service   *staff.Service
	adminOnly gin.HandlerFunc
}

// NewHandler builds the staff handler. adminOnly guards every mutating route.
func NewHandler(service *staff.Service, adminOnly gin.HandlerFunc) *Handler {
	return &Handler{service: service, adminOnly: handler.Guard(adminOnly)}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	members := r.Group("/staff")
	{
		members.GET("", h.ListStaff)
		members.GET("/:id", h.GetStaff)
		members.GET("/:id/schedule/events", h.ScheduleEvents)

		members.POST("", h.adminOnly, h.CreateStaff)
		members.PUT("/:id", h.adminOnly, h.UpdateStaff)
		members.DELETE("/:id", h.adminOnly, h.DeleteStaff)
		members.PUT("/:id/schedule/:day", h.adminOnly, h.SetScheduleDay)
		members.DELETE("/:id/schedule/:day", h.adminOnly, h.RemoveScheduleDay)
	}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	members := r.Group("/staff")
	{
		members.GET("", h.ListStaff)
		members.GET("/:id", h.GetStaff)
		members.GET("/:id/schedule/events", h.ScheduleEvents)

		members.POST("", h.adminOnly, eventTracker.TrackEvent("staff", "create"), h.CreateStaff)
		members.PUT("/:id", h.adminOnly, eventTracker.TrackEvent("staff", "update"), h.UpdateStaff)
		members.DELETE("/:id", h.adminOnly, eventTracker.TrackEvent("staff", "delete"), h.DeleteStaff)
		members.PUT("/:id/schedule/:day", h.adminOnly, eventTracker.TrackEvent("staff", "schedule_update"), h.SetScheduleDay)
		members.DELETE("/:id/schedule/:day", h.adminOnly, eventTracker.TrackEvent("staff", "schedule_update"), h.RemoveScheduleDay)
	}
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var req model.CreateStaffRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	member, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, member.ID, nil, member)
	httputil.RespondCreated(c, member)
}

func (h *Handler) GetStaff(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	member, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, member)
}

func (h *Handler) ListStaff(c *gin.Context) {
	var filters model.StaffFilters
	if !handler.BindQuery(c, &filters) {
		return
	}

	members, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, members)
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateStaffRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	old, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	member, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, member.ID, old, member)
	httputil.RespondWithSuccess(c, member)
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	old, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, id, old, gin.H{"deleted": true})
	httputil.RespondWithSuccess(c, gin.H{"message": "staff member deleted"})
}

func (h *Handler) SetScheduleDay(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var hours model.WorkingHours
	if !handler.BindJSON(c, &hours) {
		return
	}

	old, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	member, err := h.service.SetScheduleDay(c.Request.Context(), id, model.Weekday(c.Param("day")), hours)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, member.ID, old, member)
	httputil.RespondWithSuccess(c, member)
}

func (h *Handler) RemoveScheduleDay(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	old, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	member, err := h.service.RemoveScheduleDay(c.Request.Context(), id, model.Weekday(c.Param("day")))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, member.ID, old, member)
	httputil.RespondWithSuccess(c, member)
}

// ScheduleEvents expands the weekly schedule for the week containing ?date.
func (h *Handler) ScheduleEvents(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	events, err := h.service.ScheduleEvents(c.Request.Context(), id, c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, events)
}
