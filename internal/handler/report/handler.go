package report

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/vet-admin-api/internal/handler"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/service/report"
	"github.com/jwalitptl/vet-admin-api/pkg/event"
	"github.com/jwalitptl/vet-admin-api/pkg/httputil"
)

type Handler struct {
	service   *report.Service
	adminOnly gin.HandlerFunc
}

// NewHandler builds the report handler. adminOnly guards generation.
func NewHandler(service *report.Service, adminOnly gin.HandlerFunc) *Handler {
	return &Handler{service: service, adminOnly: handler.Guard(adminOnly)}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("", h.ListReports)
		reports.GET("/:id", h.GetReport)
		reports.GET("/:id/download", h.Download)
		reports.POST("", h.adminOnly, h.Generate)
	}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	reports := r.Group("/reports")
	{
		reports.GET("", h.ListReports)
		reports.GET("/:id", h.GetReport)
		reports.GET("/:id/download", h.Download)

		reports.POST("", h.adminOnly, eventTracker.TrackEvent("report", "generate"), h.Generate)
	}
}

func (h *Handler) Generate(c *gin.Context) {
	var req model.GenerateReportRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	generatedBy := ""
	if claims, err := handler.Claims(c); err == nil {
		generatedBy = claims.Email
	}

	rep, err := h.service.Generate(c.Request.Context(), &req, generatedBy)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, rep.ID, nil, rep)
	httputil.RespondCreated(c, rep)
}

func (h *Handler) ListReports(c *gin.Context) {
	reports, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, reports)
}

func (h *Handler) GetReport(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	rep, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rep)
}

// Download streams the rendered report as an attachment.
func (h *Handler) Download(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	rep, body, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+rep.Filename()+`"`)
	c.Header("Content-Length", strconv.Itoa(len(body)))
	c.Data(http.StatusOK, rep.Format.ContentType(), body)
}
