package appointment

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/handler"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/service/appointment"
	"github.com/jwalitptl/vet-admin-api/pkg/event"
	"github.com/jwalitptl/vet-admin-api/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

type calendarQuery struct {
	View model.CalendarView `form:"view" binding:"omitempty,oneof=month week day"`
	Date string             `form:"date" binding:"omitempty,yyyymmdd"`
}

type availabilityQuery struct {
	VeterinarianID string `form:"veterinarian_id" binding:"required"`
	Date           string `form:"date" binding:"required,yyyymmdd"`
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	apt, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, apt.ID, nil, apt)
	if ec := event.FromContext(c); ec != nil {
		ec.Additional = map[string]interface{}{
			"patient_id":      apt.PatientID,
			"veterinarian_id": apt.VeterinarianID,
		}
	}
	httputil.RespondCreated(c, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var filters model.AppointmentFilters
	if !handler.BindQuery(c, &filters) ||
		!handler.QueryID(c, "patient_id", &filters.PatientID) ||
		!handler.QueryID(c, "veterinarian_id", &filters.VeterinarianID) {
		return
	}

	apts, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apts)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	old, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	apt, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, apt.ID, old, apt)
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.ChangeAppointmentStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	old, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	apt, err := h.service.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, apt.ID, old, apt)
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
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
	httputil.RespondWithSuccess(c, gin.H{"message": "appointment deleted"})
}

// Calendar returns the events visible in a month, week or day view.
func (h *Handler) Calendar(c *gin.Context) {
	var q calendarQuery
	var vetID uuid.UUID
	if !handler.BindQuery(c, &q) || !handler.QueryID(c, "veterinarian_id", &vetID) {
		return
	}
	if q.View == "" {
		q.View = model.CalendarViewMonth
	}

	events, err := h.service.Calendar(c.Request.Context(), q.View, q.Date, vetID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, events)
}

func (h *Handler) Availability(c *gin.Context) {
	var q availabilityQuery
	var vetID uuid.UUID
	if !handler.BindQuery(c, &q) || !handler.QueryID(c, "veterinarian_id", &vetID) {
		return
	}

	slots, err := h.service.Availability(c.Request.Context(), vetID, q.Date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.GET("/calendar", h.Calendar)
		appointments.GET("/availability", h.Availability)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("", h.CreateAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.PATCH("/:id/status", h.ChangeStatus)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.GET("/calendar", h.Calendar)
		appointments.GET("/availability", h.Availability)
		appointments.GET("/:id", h.GetAppointment)

		appointments.POST("", eventTracker.TrackEvent("appointment", "create"), h.CreateAppointment)
		appointments.PUT("/:id", eventTracker.TrackEvent("appointment", "update"), h.UpdateAppointment)
		appointments.PATCH("/:id/status", eventTracker.TrackEvent("appointment", "status_change"), h.ChangeStatus)
		appointments.DELETE("/:id", eventTracker.TrackEvent("appointment", "delete"), h.DeleteAppointment)
	}
}
