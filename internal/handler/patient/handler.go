package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/vet-admin-api/internal/handler"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/service/patient"
	"github.com/jwalitptl/vet-admin-api/pkg/event"
	"github.com/jwalitptl/vet-admin-api/pkg/httputil"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.GET("/:id/details", h.GetDetails)
		patients.GET("/:id/portal", h.GetPortal)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)

		patients.POST("/:id/records", h.AddMedicalRecord)
		patients.GET("/:id/records", h.ListMedicalRecords)
		patients.POST("/:id/vitals", h.AddVitalSigns)
		patients.GET("/:id/vitals", h.ListVitalSigns)
		patients.POST("/:id/prescriptions", h.AddPrescription)
		patients.GET("/:id/prescriptions", h.ListPrescriptions)
		patients.PATCH("/:id/prescriptions/:rxId/status", h.UpdatePrescriptionStatus)
		patients.POST("/:id/vaccinations", h.RecordVaccination)
		patients.GET("/:id/vaccinations/schedule", h.GetVaccinationSchedule)
	}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.GET("/:id/details", h.GetDetails)
		patients.GET("/:id/portal", h.GetPortal)
		patients.GET("/:id/records", h.ListMedicalRecords)
		patients.GET("/:id/vitals", h.ListVitalSigns)
		patients.GET("/:id/prescriptions", h.ListPrescriptions)
		patients.GET("/:id/vaccinations/schedule", h.GetVaccinationSchedule)

		patients.POST("", eventTracker.TrackEvent("patient", "create"), h.CreatePatient)
		patients.PUT("/:id", eventTracker.TrackEvent("patient", "update"), h.UpdatePatient)
		patients.DELETE("/:id", eventTracker.TrackEvent("patient", "delete"), h.DeletePatient)

		patients.POST("/:id/records", eventTracker.TrackEvent("medical_record", "create"), h.AddMedicalRecord)
		patients.POST("/:id/vitals", eventTracker.TrackEvent("vital_signs", "create"), h.AddVitalSigns)
		patients.POST("/:id/prescriptions", eventTracker.TrackEvent("prescription", "create"), h.AddPrescription)
		patients.PATCH("/:id/prescriptions/:rxId/status", eventTracker.TrackEvent("prescription", "status_change"), h.UpdatePrescriptionStatus)
		patients.POST("/:id/vaccinations", eventTracker.TrackEvent("vaccination", "create"), h.RecordVaccination)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, p.ID, nil, p)
	httputil.RespondCreated(c, p)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	old, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	p, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, p.ID, old, p)
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) DeletePatient(c *gin.Context) {
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
	httputil.RespondWithSuccess(c, gin.H{"message": "patient deleted"})
}

// GetDetails returns the patient with its billing-derived account status.
func (h *Handler) GetDetails(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	details, err := h.service.Details(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, details)
}

func (h *Handler) GetPortal(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	portal, err := h.service.Portal(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, portal)
}

func (h *Handler) AddMedicalRecord(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.AddMedicalRecordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.service.AddMedicalRecord(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, record.ID, nil, record)
	if ec := event.FromContext(c); ec != nil {
		ec.Additional = map[string]interface{}{"patient_id": id}
	}
	httputil.RespondCreated(c, record)
}

func (h *Handler) ListMedicalRecords(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	records, err := h.service.MedicalHistory(c.Request.Context(), id, c.Query("q"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, records)
}

func (h *Handler) AddVitalSigns(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.AddVitalSignsRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	vitals, err := h.service.AddVitalSigns(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, id, nil, vitals)
	httputil.RespondCreated(c, vitals)
}

func (h *Handler) ListVitalSigns(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	vitals, err := h.service.VitalSigns(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, vitals)
}

func (h *Handler) AddPrescription(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.AddPrescriptionRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	rx, err := h.service.AddPrescription(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, rx.ID, nil, rx)
	if ec := event.FromContext(c); ec != nil {
		ec.Additional = map[string]interface{}{"patient_id": id}
	}
	httputil.RespondCreated(c, rx)
}

// ListPrescriptions returns all prescriptions, or only active ones with
// ?active=true.
func (h *Handler) ListPrescriptions(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	rxs, err := h.service.Prescriptions(c.Request.Context(), id, c.Query("active") == "true")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rxs)
}

func (h *Handler) UpdatePrescriptionStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	rxID, ok := handler.ParamID(c, "rxId")
	if !ok {
		return
	}
	var req model.UpdatePrescriptionStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	rx, err := h.service.UpdatePrescriptionStatus(c.Request.Context(), id, rxID, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, rx.ID, nil, rx)
	httputil.RespondWithSuccess(c, rx)
}

func (h *Handler) RecordVaccination(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.RecordVaccinationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	v, err := h.service.RecordVaccination(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetResult(c, id, nil, v)
	httputil.RespondCreated(c, v)
}

func (h *Handler) GetVaccinationSchedule(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	schedule, err := h.service.VaccinationSchedule(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, schedule)
}
