package inventory

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/vet-admin-api/internal/handler"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/service/inventory"
	"github.com/jwalitptl/vet-admin-api/pkg/event"
	"github.com/jwalitptl/vet-admin-api/pkg/httputil"
)

type Handler struct {
	service *inventory.Service
}

func NewHandler(service *inventory.Service) *Handler {
	return &Handler{service: service}
}

type alertsResponse struct {
	LowStock []*model.InventoryItemView `json:"low_stock"`
	Expiring []*model.InventoryItemView `json:"expiring"`
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	items := r.Group("/inventory")
	{
		items.POST("", h.CreateItem)
		items.GET("", h.ListItems)
		items.GET("/alerts", h.Alerts)
		items.GET("/analytics", h.Analytics)
		items.GET("/sku/:sku", h.GetItemBySKU)
		items.GET("/:id", h.GetItem)
		items.PUT("/:id", h.UpdateItem)
		items.POST("/:id/adjust", h.AdjustStock)
		items.DELETE("/:id", h.DeleteItem)
	}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	items := r.Group("/inventory")
	{
		items.GET("", h.ListItems)
		items.GET("/alerts", h.Alerts)
		items.GET("/analytics", h.Analytics)
		items.GET("/sku/:sku", h.GetItemBySKU)
		items.GET("/:id", h.GetItem)

		items.POST("", eventTracker.TrackEvent("inventory_item", "create"), h.CreateItem)
		items.PUT("/:id", eventTracker.TrackEvent("inventory_item", "update"), h.UpdateItem)
		items.POST("/:id/adjust", eventTracker.TrackEvent("inventory_item", "adjust_stock"), h.AdjustStock)
		items.DELETE("/:id", eventTracker.TrackEvent("inventory_item", "delete"), h.DeleteItem)
	}
}

func (h *Handler) CreateItem(c *gin.Context) {
	var req model.CreateInventoryItemRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	item, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, item.ID, nil, item)
	httputil.RespondCreated(c, h.service.View(item))
}

func (h *Handler) GetItem(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, h.service.View(item))
}

func (h *Handler) GetItemBySKU(c *gin.Context) {
	item, err := h.service.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, h.service.View(item))
}

func (h *Handler) ListItems(c *gin.Context) {
	var filters model.InventoryFilters
	if !handler.BindQuery(c, &filters) {
		return
	}

	items, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, items)
}

func (h *Handler) UpdateItem(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateInventoryItemRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	old, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, item.ID, old, item)
	httputil.RespondWithSuccess(c, h.service.View(item))
}

func (h *Handler) AdjustStock(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.AdjustStockRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	old, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	item, err := h.service.AdjustStock(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, item.ID, old, item)
	if ec := event.FromContext(c); ec != nil {
		ec.Additional = map[string]interface{}{"delta": req.Delta, "reason": req.Reason}
	}
	httputil.RespondWithSuccess(c, h.service.View(item))
}

func (h *Handler) DeleteItem(c *gin.Context) {
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
	httputil.RespondWithSuccess(c, gin.H{"message": "inventory item deleted"})
}

func (h *Handler) Alerts(c *gin.Context) {
	lowStock, expiring, err := h.service.Alerts(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, alertsResponse{LowStock: lowStock, Expiring: expiring})
}

func (h *Handler) Analytics(c *gin.Context) {
	analytics, err := h.service.Analytics(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, analytics)
}
