package staff

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
	"github.com/jwalitptl/vet-admin-api/pkg/security"
)

type Service struct {
	repo   repository.StaffRepository
	hasher security.PasswordHasher
	loc    *time.Location
	now    func() time.Time
}

func NewService(repo repository.StaffRepository, hasher security.PasswordHasher, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:   repo,
		hasher: hasher,
		loc:    loc,
		now:    time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateStaffRequest) (*model.Staff, error) {
	member := &model.Staff{
		Name:           strings.TrimSpace(req.Name),
		Role:           req.Role,
		Specialties:    req.Specialties,
		Schedule:       map[model.Weekday]model.WorkingHours{},
		Contact:        req.Contact,
		Qualifications: req.Qualifications,
		Status:         req.Status,
		ProfileImage:   req.ProfileImage,
	}
	if member.Name == "" {
		return nil, apperrors.BadRequest("name is required", nil)
	}
	if member.Status == "" {
		member.Status = model.StaffStatusActive
	}
	for day, hours := range req.Schedule {
		day = normalizeDay(day)
		if err := validateDay(day, hours); err != nil {
			return nil, err
		}
		member.Schedule[day] = hours
	}

	member.StartDate = model.StartOfDay(s.now().In(s.loc))
	if req.StartDate != "" {
		d, err := model.ParseDate(req.StartDate, s.loc)
		if err != nil {
			return nil, apperrors.BadRequest("invalid start date", err)
		}
		member.StartDate = d
	}

	if req.Password != "" {
		if err := s.setPassword(member, req.Password); err != nil {
			return nil, err
		}
	}

	member.Touch(s.now())
	if err := s.repo.Create(ctx, member); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return nil, apperrors.Conflict("a staff member with this email already exists", err)
		}
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}
	return member, nil
}

func (s *Service) setPassword(member *model.Staff, password string) error {
	hash, err := s.hasher.Hash(password)
	switch {
	case errors.Is(err, security.ErrPasswordTooShort), errors.Is(err, security.ErrPasswordTooLong):
		return apperrors.BadRequest(err.Error(), err)
	case err != nil:
		return fmt.Errorf("failed to hash password: %w", err)
	}
	member.PasswordHash = hash
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	member, err := s.repo.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.NotFound("staff member", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return member, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateStaffRequest) (*model.Staff, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		member.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.Specialties != nil {
		member.Specialties = req.Specialties
	}
	if req.Contact != nil {
		member.Contact = *req.Contact
	}
	if req.Qualifications != nil {
		member.Qualifications = req.Qualifications
	}
	if req.Status != nil {
		member.Status = *req.Status
	}
	if req.ProfileImage != nil {
		member.ProfileImage = *req.ProfileImage
	}
	if req.Password != nil {
		if err := s.setPassword(member, *req.Password); err != nil {
			return nil, err
		}
	}
	if member.Name == "" {
		return nil, apperrors.BadRequest("name is required", nil)
	}

	return s.save(ctx, member)
}

func (s *Service) save(ctx context.Context, member *model.Staff) (*model.Staff, error) {
	member.Touch(s.now())
	if err := s.repo.Update(ctx, member); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return nil, apperrors.Conflict("a staff member with this email already exists", err)
		}
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}
	return member, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NotFound("staff member", err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete staff member: %w", err)
	}
	return nil
}

// List returns staff sorted by name, filtered by role, status and a name or
// email search. "all" matches every role or status.
func (s *Service) List(ctx context.Context, filters *model.StaffFilters) ([]*model.Staff, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(filters.Search))
	out := make([]*model.Staff, 0, len(all))
	for _, m := range all {
		if filters.Role != "" && filters.Role != "all" && string(m.Role) != filters.Role {
			continue
		}
		if filters.Status != "" && filters.Status != "all" && string(m.Status) != filters.Status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(m.Name), q) &&
			!strings.Contains(strings.ToLower(m.Contact.Email), q) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func normalizeDay(day model.Weekday) model.Weekday {
	return model.Weekday(strings.ToLower(strings.TrimSpace(string(day))))
}

func validateDay(day model.Weekday, hours model.WorkingHours) error {
	if _, ok := day.TimeWeekday(); !ok {
		return apperrors.BadRequest(fmt.Sprintf("unknown weekday %q", day), nil)
	}
	start, err := model.ParseClock(hours.Start)
	if err != nil {
		return apperrors.BadRequest("start must be a time in HH:MM format", err)
	}
	end, err := model.ParseClock(hours.End)
	if err != nil {
		return apperrors.BadRequest("end must be a time in HH:MM format", err)
	}
	if end <= start {
		return apperrors.BadRequest("end time must be after start time", nil)
	}
	return nil
}

// SetScheduleDay sets the working hours of one weekday.
func (s *Service) SetScheduleDay(ctx context.Context, id uuid.UUID, day model.Weekday, hours model.WorkingHours) (*model.Staff, error) {
	day = normalizeDay(day)
	if err := validateDay(day, hours); err != nil {
		return nil, err
	}
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if member.Schedule == nil {
		member.Schedule = map[model.Weekday]model.WorkingHours{}
	}
	member.Schedule[day] = hours
	return s.save(ctx, member)
}

// RemoveScheduleDay clears one weekday from the schedule.
func (s *Service) RemoveScheduleDay(ctx context.Context, id uuid.UUID, day model.Weekday) (*model.Staff, error) {
	day = normalizeDay(day)
	if _, ok := day.TimeWeekday(); !ok {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown weekday %q", day), nil)
	}
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	delete(member.Schedule, day)
	return s.save(ctx, member)
}

// ScheduleEvents expands the weekly schedule into events for the Sunday-based
// week containing anchor (YYYY-MM-DD, defaults to today).
func (s *Service) ScheduleEvents(ctx context.Context, id uuid.UUID, anchor string) ([]model.ScheduleEvent, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	day := model.StartOfDay(s.now().In(s.loc))
	if anchor != "" {
		d, err := model.ParseDate(anchor, s.loc)
		if err != nil {
			return nil, apperrors.BadRequest("invalid anchor date", err)
		}
		day = d
	}
	return WeekEvents(member, day, s.loc), nil
}

// WeekEvents builds one event per scheduled weekday of the week containing day.
func WeekEvents(member *model.Staff, day time.Time, loc *time.Location) []model.ScheduleEvent {
	weekStart := day.AddDate(0, 0, -int(day.Weekday()))
	events := []model.ScheduleEvent{}
	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i)
		key := model.WeekdayOf(date.Weekday())
		hours, ok := member.Schedule[key]
		if !ok {
			continue
		}
		ds := date.Format(model.DateLayout)
		start, err := model.CombineDateClock(ds, hours.Start, loc)
		if err != nil {
			continue
		}
		end, err := model.CombineDateClock(ds, hours.End, loc)
		if err != nil {
			continue
		}
		events = append(events, model.ScheduleEvent{
			Title:   fmt.Sprintf("%s - %s", member.Name, key.Title()),
			Start:   start,
			End:     end,
			StaffID: member.ID.String(),
			Day:     key,
		})
	}
	return events
}
