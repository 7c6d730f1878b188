package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
)

type appointmentRepository struct {
	doc *document[model.Appointment]
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{doc: newDocument(base, "appointments",
		func(a *model.Appointment) *model.Base { return &a.Base },
		[]string{"patient_id", "veterinarian_id", "date", "status"},
		func(a *model.Appointment) []interface{} {
			return []interface{}{a.PatientID, a.VeterinarianID, a.Date, string(a.Status)}
		},
	)}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return r.doc.insert(ctx, appointment)
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return r.doc.get(ctx, id)
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	return r.doc.update(ctx, appointment)
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.doc.remove(ctx, id)
}

func (r *appointmentRepository) List(ctx context.Context) ([]*model.Appointment, error) {
	return r.doc.list(ctx, "")
}

func (r *appointmentRepository) ListByVeterinarianAndDate(ctx context.Context, vetID uuid.UUID, date string) ([]*model.Appointment, error) {
	return r.doc.list(ctx, "veterinarian_id = $1 AND date = $2", vetID, date)
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	return r.doc.list(ctx, "patient_id = $1", patientID)
}
