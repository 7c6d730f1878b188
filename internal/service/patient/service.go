package patient

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
)

// MaxPortalAppointments caps the upcoming list on the owner portal.
const MaxPortalAppointments = 3

type Service struct {
	repo         repository.PatientRepository
	appointments repository.AppointmentRepository
	bills        repository.BillRepository
	loc          *time.Location
	now          func() time.Time
}

func NewService(repo repository.PatientRepository, appointments repository.AppointmentRepository, bills repository.BillRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:         repo,
		appointments: appointments,
		bills:        bills,
		loc:          loc,
		now:          time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	patient := &model.Patient{
		Name:           strings.TrimSpace(req.Name),
		Species:        strings.TrimSpace(req.Species),
		Breed:          req.Breed,
		Age:            req.Age,
		Weight:         req.Weight,
		Owner:          req.Owner,
		MedicalHistory: []model.MedicalRecord{},
		Vaccinations:   []model.Vaccination{},
		VitalSigns:     []model.VitalSigns{},
		Prescriptions:  []model.Prescription{},
	}
	if patient.Name == "" || patient.Species == "" {
		return nil, apperrors.BadRequest("name and species are required", nil)
	}

	patient.Touch(s.now())
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = strings.TrimSpace(*req.Name)
	}
	if req.Species != nil {
		patient.Species = strings.TrimSpace(*req.Species)
	}
	if req.Breed != nil {
		patient.Breed = *req.Breed
	}
	if req.Age != nil {
		patient.Age = *req.Age
	}
	if req.Weight != nil {
		patient.Weight = *req.Weight
	}
	if req.Owner != nil {
		patient.Owner = *req.Owner
	}
	if patient.Name == "" || patient.Species == "" {
		return nil, apperrors.BadRequest("name and species are required", nil)
	}

	return s.save(ctx, patient)
}

func (s *Service) save(ctx context.Context, patient *model.Patient) (*model.Patient, error) {
	patient.Touch(s.now())
	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NotFound("patient", err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

// List returns patients sorted by name. search matches the patient or the
// owner name, case-insensitively.
func (s *Service) List(ctx context.Context, search string) ([]*model.Patient, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]*model.Patient, 0, len(all))
	for _, p := range all {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Owner.Name), q) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// Details adds the billing-derived account status to the patient.
func (s *Service) Details(ctx context.Context, id uuid.UUID) (*model.PatientDetails, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	bills, err := s.bills.ListByPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	details := &model.PatientDetails{
		Patient:       patient,
		AccountStatus: model.AccountStatusActive,
	}
	now := s.now()
	for _, b := range bills {
		if b.Status != model.BillStatusPaid {
			details.OutstandingBills++
		}
		if b.IsOverdue(now) {
			details.AccountStatus = model.AccountStatusPaymentOverdue
		}
	}
	return details, nil
}

// Portal is the owner-facing summary of a patient.
func (s *Service) Portal(ctx context.Context, id uuid.UUID) (*model.PatientPortal, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	apts, err := s.appointments.ListByPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	now := s.now()
	type timed struct {
		apt   *model.Appointment
		start time.Time
	}
	var future []timed
	for _, apt := range apts {
		if !apt.Status.Active() {
			continue
		}
		start, _, err := apt.Window(s.loc)
		if err != nil || !start.After(now) {
			continue
		}
		future = append(future, timed{apt: apt, start: start})
	}
	sort.SliceStable(future, func(i, j int) bool { return future[i].start.Before(future[j].start) })

	portal := &model.PatientPortal{
		Patient:              patient,
		UpcomingAppointments: []*model.Appointment{},
		ActivePrescriptions:  ActivePrescriptions(patient),
		LastVisit:            patient.LastVisit,
	}
	for i, f := range future {
		if i == MaxPortalAppointments {
			break
		}
		portal.UpcomingAppointments = append(portal.UpcomingAppointments, f.apt)
	}
	if len(future) > 0 {
		portal.NextAppointment = future[0].apt
	}
	return portal, nil
}
