package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
)

type patientRepository struct {
	doc *document[model.Patient]
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{doc: newDocument(base, "patients",
		func(p *model.Patient) *model.Base { return &p.Base },
		[]string{"name", "species"},
		func(p *model.Patient) []interface{} { return []interface{}{p.Name, p.Species} },
	)}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return r.doc.insert(ctx, patient)
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return r.doc.get(ctx, id)
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	return r.doc.update(ctx, patient)
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.doc.remove(ctx, id)
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	return r.doc.list(ctx, "")
}

type billRepository struct {
	doc *document[model.Bill]
}

func NewBillRepository(base BaseRepository) repository.BillRepository {
	return &billRepository{doc: newDocument(base, "bills",
		func(b *model.Bill) *model.Base { return &b.Base },
		[]string{"patient_id", "status"},
		func(b *model.Bill) []interface{} { return []interface{}{b.PatientID, string(b.Status)} },
	)}
}

func (r *billRepository) Create(ctx context.Context, bill *model.Bill) error {
	return r.doc.insert(ctx, bill)
}

func (r *billRepository) Get(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	return r.doc.get(ctx, id)
}

func (r *billRepository) Update(ctx context.Context, bill *model.Bill) error {
	return r.doc.update(ctx, bill)
}

func (r *billRepository) List(ctx context.Context) ([]*model.Bill, error) {
	return r.doc.list(ctx, "")
}

func (r *billRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Bill, error) {
	return r.doc.list(ctx, "patient_id = $1", patientID)
}

type labResultRepository struct {
	doc *document[model.LabResult]
}

func NewLabResultRepository(base BaseRepository) repository.LabResultRepository {
	return &labResultRepository{doc: newDocument(base, "lab_results",
		func(l *model.LabResult) *model.Base { return &l.Base },
		[]string{"patient_id", "status"},
		func(l *model.LabResult) []interface{} { return []interface{}{l.PatientID, string(l.Status)} },
	)}
}

func (r *labResultRepository) Create(ctx context.Context, result *model.LabResult) error {
	return r.doc.insert(ctx, result)
}

func (r *labResultRepository) Get(ctx context.Context, id uuid.UUID) (*model.LabResult, error) {
	return r.doc.get(ctx, id)
}

func (r *labResultRepository) Update(ctx context.Context, result *model.LabResult) error {
	return r.doc.update(ctx, result)
}

func (r *labResultRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.doc.remove(ctx, id)
}

func (r *labResultRepository) List(ctx context.Context) ([]*model.LabResult, error) {
	return r.doc.list(ctx, "")
}
