package billing

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/vet-admin-api/internal/handler"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/service/billing"
	"github.com/jwalitptl/vet-admin-api/pkg/event"
	"github.com/jwalitptl/vet-admin-api/pkg/httputil"
)

type Handler struct {
	service *billing.Service
}

func NewHandler(service *billing.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bills := r.Group("/bills")
	{
		bills.POST("", h.CreateBill)
		bills.GET("", h.ListBills)
		bills.GET("/:id", h.GetBill)
		bills.POST("/:id/pay", h.MarkPaid)
	}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	bills := r.Group("/bills")
	{
		bills.GET("", h.ListBills)
		bills.GET("/:id", h.GetBill)

		bills.POST("", eventTracker.TrackEvent("bill", "create"), h.CreateBill)
		bills.POST("/:id/pay", eventTracker.TrackEvent("bill", "paid"), h.MarkPaid)
	}
}

func (h *Handler) CreateBill(c *gin.Context) {
	var req model.CreateBillRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	bill, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, bill.ID, nil, bill)
	if ec := event.FromContext(c); ec != nil {
		ec.Additional = map[string]interface{}{"patient_id": bill.PatientID}
	}
	httputil.RespondCreated(c, bill)
}

func (h *Handler) GetBill(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	bill, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, bill)
}

func (h *Handler) ListBills(c *gin.Context) {
	var filters model.BillFilters
	if !handler.BindQuery(c, &filters) || !handler.QueryID(c, "patient_id", &filters.PatientID) {
		return
	}

	bills, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, bills)
}

func (h *Handler) MarkPaid(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	old, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	bill, err := h.service.MarkPaid(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, bill.ID, old, bill)
	httputil.RespondWithSuccess(c, bill)
}
