package appointment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
)

// VisibleRange returns the first and last day shown by a calendar view.
// Weeks start on Sunday; a month view spans whole weeks.
func VisibleRange(view model.CalendarView, anchor time.Time) (time.Time, time.Time, error) {
	day := model.StartOfDay(anchor)
	weekStart := func(t time.Time) time.Time { return t.AddDate(0, 0, -int(t.Weekday())) }

	switch view {
	case model.CalendarViewDay:
		return day, day, nil
	case model.CalendarViewWeek:
		start := weekStart(day)
		return start, start.AddDate(0, 0, 6), nil
	case model.CalendarViewMonth, "":
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		last := first.AddDate(0, 1, -1)
		end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))
		return weekStart(first), end, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown calendar view %q", view)
	}
}

// Calendar returns the events visible in view around anchor (YYYY-MM-DD,
// defaults to today). vetID narrows the calendar to one veterinarian.
func (s *Service) Calendar(ctx context.Context, view model.CalendarView, anchor string, vetID uuid.UUID) ([]model.CalendarEvent, error) {
	anchorDay := s.today()
	if anchor != "" {
		d, err := model.ParseDate(anchor, s.loc)
		if err != nil {
			return nil, apperrors.BadRequest("invalid anchor date", err)
		}
		anchorDay = d
	}

	first, last, err := VisibleRange(view, anchorDay)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	apts, err := s.List(ctx, &model.AppointmentFilters{
		VeterinarianID: vetID,
		From:           first.Format(model.DateLayout),
		To:             last.Format(model.DateLayout),
	})
	if err != nil {
		return nil, err
	}

	events := make([]model.CalendarEvent, 0, len(apts))
	for _, apt := range apts {
		start, end, err := apt.Window(s.loc)
		if err != nil {
			continue
		}
		events = append(events, model.CalendarEvent{
			ID:          apt.ID,
			Title:       fmt.Sprintf("%s - %s", apt.PatientName, apt.Type),
			Start:       start,
			End:         end,
			Color:       apt.Status.Color(),
			Appointment: apt,
		})
	}
	return events, nil
}

// Availability returns the free 30-minute slots of a veterinarian on date,
// inside their working hours for that weekday. Slots already in the past are
// left out.
func (s *Service) Availability(ctx context.Context, vetID uuid.UUID, date string) ([]model.TimeSlot, error) {
	vet, err := s.getVeterinarian(ctx, vetID)
	if err != nil {
		return nil, err
	}
	day, err := model.ParseDate(date, s.loc)
	if err != nil {
		return nil, apperrors.BadRequest("invalid date", err)
	}

	slots := []model.TimeSlot{}
	if vet.Status != model.StaffStatusActive {
		return slots, nil
	}
	hours, ok := vet.Schedule[model.WeekdayOf(day.Weekday())]
	if !ok {
		return slots, nil
	}
	open, err := model.CombineDateClock(date, hours.Start, s.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid working hours for %s: %w", vet.Name, err)
	}
	closing, err := model.CombineDateClock(date, hours.End, s.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid working hours for %s: %w", vet.Name, err)
	}

	booked, err := s.repo.ListByVeterinarianAndDate(ctx, vetID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	var busy []model.TimeSlot
	for _, apt := range booked {
		if !apt.Status.Active() {
			continue
		}
		start, end, err := apt.Window(s.loc)
		if err != nil {
			continue
		}
		busy = append(busy, model.TimeSlot{Start: start, End: end})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

	now := s.now()
	for start := open; !start.Add(SlotStep).After(closing); start = start.Add(SlotStep) {
		end := start.Add(SlotStep)
		if start.Before(now) {
			continue
		}
		free := true
		for _, b := range busy {
			if start.Before(b.End) && b.Start.Before(end) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, model.TimeSlot{Start: start, End: end})
		}
	}
	return slots, nil
}
