package lab

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/vet-admin-api/internal/handler"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/service/lab"
	"github.com/jwalitptl/vet-admin-api/pkg/event"
	"github.com/jwalitptl/vet-admin-api/pkg/httputil"
)

type Handler struct {
	service *lab.Service
}

func NewHandler(service *lab.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	labs := r.Group("/lab-results")
	{
		labs.POST("", h.RequestTest)
		labs.GET("", h.ListResults)
		labs.GET("/stats", h.Stats)
		labs.GET("/:id", h.GetResult)
		labs.PATCH("/:id/status", h.UpdateStatus)
		labs.PUT("/:id/results", h.RecordResults)
		labs.DELETE("/:id", h.DeleteResult)
	}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	labs := r.Group("/lab-results")
	{
		labs.GET("", h.ListResults)
		labs.GET("/stats", h.Stats)
		labs.GET("/:id", h.GetResult)

		labs.POST("", eventTracker.TrackEvent("lab_result", "request"), h.RequestTest)
		labs.PATCH("/:id/status", eventTracker.TrackEvent("lab_result", "status_change"), h.UpdateStatus)
		labs.PUT("/:id/results", eventTracker.TrackEvent("lab_result", "record_results"), h.RecordResults)
		labs.DELETE("/:id", eventTracker.TrackEvent("lab_result", "delete"), h.DeleteResult)
	}
}

func (h *Handler) RequestTest(c *gin.Context) {
	var req model.RequestLabTestRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Request(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, result.ID, nil, result)
	httputil.RespondCreated(c, result)
}

func (h *Handler) GetResult(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) ListResults(c *gin.Context) {
	var filters model.LabFilters
	if !handler.BindQuery(c, &filters) || !handler.QueryID(c, "patient_id", &filters.PatientID) {
		return
	}

	results, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, results)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateLabStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	old, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	result, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, result.ID, old, result)
	httputil.RespondWithSuccess(c, result)
}

// RecordResults stores the values of a test and completes it.
func (h *Handler) RecordResults(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.RecordLabResultsRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	old, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	result, err := h.service.RecordResults(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, result.ID, old, result)
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) DeleteResult(c *gin.Context) {
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
	httputil.RespondWithSuccess(c, gin.H{"message": "lab result deleted"})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, stats)
}
