package audit

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/vet-admin-api/internal/handler"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/service/audit"
	"github.com/jwalitptl/vet-admin-api/pkg/httputil"
)

type Handler struct {
	service   *audit.Service
	adminOnly gin.HandlerFunc
}

func NewHandler(service *audit.Service, adminOnly gin.HandlerFunc) *Handler {
	return &Handler{
		service:   service,
		adminOnly: handler.Guard(adminOnly),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	audit := r.Group("/audit", h.adminOnly)
	{
		audit.GET("/logs", h.ListLogs)
		audit.GET("/logs/entity/:type/:id", h.GetEntityLogs)
		audit.GET("/logs/staff/:id", h.GetStaffLogs)
	}
}

// ListLogs pages through entries filtered by staff, entity, action and date.
func (h *Handler) ListLogs(c *gin.Context) {
	var filters model.AuditFilters
	if !handler.BindQuery(c, &filters) ||
		!handler.QueryID(c, "staff_id", &filters.StaffID) ||
		!handler.QueryID(c, "entity_id", &filters.EntityID) {
		return
	}
	h.respond(c, &filters)
}

func (h *Handler) GetEntityLogs(c *gin.Context) {
	entityID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var filters model.AuditFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	filters.EntityType = c.Param("type")
	filters.EntityID = entityID
	h.respond(c, &filters)
}

func (h *Handler) GetStaffLogs(c *gin.Context) {
	staffID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var filters model.AuditFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	filters.StaffID = staffID
	h.respond(c, &filters)
}

func (h *Handler) respond(c *gin.Context, filters *model.AuditFilters) {
	logs, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, logs, filters.Page, filters.PageSize, total)
}
