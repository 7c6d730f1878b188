package appointment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
)

// Business rules
const (
	MinAppointmentDuration = 15 * time.Minute
	MaxAppointmentDuration = 4 * time.Hour
	SlotStep               = 30 * time.Minute

	DefaultStartTime = "09:00"
	DefaultEndTime   = "10:00"
)

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	staff    repository.StaffRepository
	loc      *time.Location
	now      func() time.Time
}

func NewService(repo repository.AppointmentRepository, patients repository.PatientRepository, staff repository.StaffRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:     repo,
		patients: patients,
		staff:    staff,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *Service) today() time.Time {
	return model.StartOfDay(s.now().In(s.loc))
}

func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if req.PatientID == uuid.Nil {
		return nil, apperrors.BadRequest("Patient is required", nil)
	}
	if req.VeterinarianID == uuid.Nil {
		return nil, apperrors.BadRequest("Veterinarian is required", nil)
	}

	patient, err := s.getPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	vet, err := s.getVeterinarian(ctx, req.VeterinarianID)
	if err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		PatientID:        patient.ID,
		PatientName:      patient.Name,
		OwnerName:        patient.Owner.Name,
		VeterinarianID:   vet.ID,
		VeterinarianName: vet.Name,
		Date:             req.Date,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Type:             req.Type,
		Status:           model.AppointmentStatusScheduled,
		Reason:           req.Reason,
		Notes:            req.Notes,
	}
	applyDefaultTimes(apt)

	if err := s.validateTime(apt, true); err != nil {
		return nil, err
	}
	if err := s.checkOverlap(ctx, apt); err != nil {
		return nil, err
	}

	apt.Touch(s.now())
	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return apt, nil
}

// applyDefaultTimes fills a missing start with 09:00 and a missing end with
// one hour after the start.
func applyDefaultTimes(apt *model.Appointment) {
	if apt.StartTime == "" {
		apt.StartTime = DefaultStartTime
	}
	if apt.EndTime == "" {
		if minutes, err := model.ParseClock(apt.StartTime); err == nil && minutes+60 < 24*60 {
			apt.EndTime = fmt.Sprintf("%02d:%02d", (minutes+60)/60, (minutes+60)%60)
		} else {
			apt.EndTime = DefaultEndTime
		}
	}
}

func (s *Service) validateTime(apt *model.Appointment, checkPast bool) error {
	day, err := model.ParseDate(apt.Date, s.loc)
	if err != nil {
		return apperrors.BadRequest("invalid appointment date", err)
	}
	if checkPast && day.Before(s.today()) {
		return apperrors.BadRequest("appointment cannot be scheduled in the past", nil)
	}

	start, end, err := apt.Window(s.loc)
	if err != nil {
		return apperrors.BadRequest("invalid appointment time", err)
	}
	if !start.Before(end) {
		return apperrors.BadRequest("end time must be after start time", nil)
	}

	duration := end.Sub(start)
	if duration < MinAppointmentDuration {
		return apperrors.BadRequest(fmt.Sprintf("appointment duration must be at least %v", MinAppointmentDuration), nil)
	}
	if duration > MaxAppointmentDuration {
		return apperrors.BadRequest(fmt.Sprintf("appointment duration cannot exceed %v", MaxAppointmentDuration), nil)
	}
	return nil
}

// checkOverlap rejects apt when its veterinarian already has an active
// appointment that intersects it. apt itself is ignored.
func (s *Service) checkOverlap(ctx context.Context, apt *model.Appointment) error {
	if !apt.Status.Active() {
		return nil
	}

	sameDay, err := s.repo.ListByVeterinarianAndDate(ctx, apt.VeterinarianID, apt.Date)
	if err != nil {
		return fmt.Errorf("failed to list appointments: %w", err)
	}

	start, end, err := apt.Window(s.loc)
	if err != nil {
		return apperrors.BadRequest("invalid appointment time", err)
	}
	for _, other := range sameDay {
		if other.ID == apt.ID || !other.Status.Active() {
			continue
		}
		oStart, oEnd, err := other.Window(s.loc)
		if err != nil {
			continue
		}
		if start.Before(oEnd) && oStart.Before(end) {
			return apperrors.Conflict(fmt.Sprintf("veterinarian already has an appointment from %s to %s",
				other.StartTime, other.EndTime), nil)
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rescheduled := false
	if req.VeterinarianID != nil && *req.VeterinarianID != apt.VeterinarianID {
		vet, err := s.getVeterinarian(ctx, *req.VeterinarianID)
		if err != nil {
			return nil, err
		}
		apt.VeterinarianID = vet.ID
		apt.VeterinarianName = vet.Name
		rescheduled = true
	}
	if req.Date != nil && *req.Date != apt.Date {
		apt.Date = *req.Date
		rescheduled = true
	}
	if req.StartTime != nil && *req.StartTime != apt.StartTime {
		apt.StartTime = *req.StartTime
		rescheduled = true
	}
	if req.EndTime != nil && *req.EndTime != apt.EndTime {
		apt.EndTime = *req.EndTime
		rescheduled = true
	}
	if req.Type != nil {
		apt.Type = *req.Type
	}
	if req.Reason != nil {
		apt.Reason = *req.Reason
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	if rescheduled {
		if err := s.validateTime(apt, true); err != nil {
			return nil, err
		}
		if err := s.checkOverlap(ctx, apt); err != nil {
			return nil, err
		}
	}

	apt.Touch(s.now())
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

// ChangeStatus moves the appointment to any status. Completing it stamps the
// patient's last visit; reactivating it re-checks the veterinarian's calendar.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.Status == status {
		return apt, nil
	}

	wasActive := apt.Status.Active()
	apt.Status = status
	if status.Active() && !wasActive {
		if err := s.checkOverlap(ctx, apt); err != nil {
			return nil, err
		}
	}

	apt.Touch(s.now())
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	if status == model.AppointmentStatusCompleted {
		if err := s.stampLastVisit(ctx, apt); err != nil {
			return nil, err
		}
	}
	return apt, nil
}

func (s *Service) stampLastVisit(ctx context.Context, apt *model.Appointment) error {
	patient, err := s.patients.Get(ctx, apt.PatientID)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get patient: %w", err)
	}

	visit, _, err := apt.Window(s.loc)
	if err != nil {
		visit = s.now()
	}
	if patient.LastVisit != nil && patient.LastVisit.After(visit) {
		return nil
	}
	patient.LastVisit = &visit
	patient.Touch(s.now())
	if err := s.patients.Update(ctx, patient); err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

// List returns matching appointments ordered by date then start time.
func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	out := make([]*model.Appointment, 0, len(all))
	for _, apt := range all {
		if filters != nil && !matches(apt, filters) {
			continue
		}
		out = append(out, apt)
	}
	sortAppointments(out)
	return out, nil
}

func matches(apt *model.Appointment, f *model.AppointmentFilters) bool {
	switch {
	case f.PatientID != uuid.Nil && apt.PatientID != f.PatientID:
		return false
	case f.VeterinarianID != uuid.Nil && apt.VeterinarianID != f.VeterinarianID:
		return false
	case f.Status != "" && apt.Status != f.Status:
		return false
	case f.Type != "" && apt.Type != f.Type:
		return false
	case f.From != "" && apt.Date < f.From:
		return false
	case f.To != "" && apt.Date > f.To:
		return false
	}
	return true
}

// Dates and clock strings are fixed-width, so string order is time order.
func sortAppointments(apts []*model.Appointment) {
	sort.SliceStable(apts, func(i, j int) bool {
		if apts[i].Date != apts[j].Date {
			return apts[i].Date < apts[j].Date
		}
		return apts[i].StartTime < apts[j].StartTime
	})
}

func (s *Service) getPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, err := s.patients.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

func (s *Service) getVeterinarian(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	vet, err := s.staff.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.NotFound("veterinarian", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get veterinarian: %w", err)
	}
	if vet.Role != model.StaffRoleVeterinarian {
		return nil, apperrors.BadRequest(fmt.Sprintf("%s is not a veterinarian", vet.Name), nil)
	}
	return vet, nil
}
