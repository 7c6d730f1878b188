package appointment

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
)

func TestVisibleRange(t *testing.T) {
	anchor := time.Date(2024, 5, 15, 13, 0, 0, 0, time.UTC)
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		view        model.CalendarView
		first, last time.Time
	}{
		{model.CalendarViewDay, day(5, 15), day(5, 15)},
		{model.CalendarViewWeek, day(5, 12), day(5, 18)},
		// May 2024 starts on a Wednesday and ends on a Friday
		{model.CalendarViewMonth, day(4, 28), day(6, 1)},
	}
	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			first, last, err := VisibleRange(tt.view, anchor)
			require.NoError(t, err)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}

	_, _, err := VisibleRange("year", anchor)
	assert.Error(t, err)
}

func TestCalendarEvents(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, f.request("2024-05-16", "09:00", "09:30"))
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, apt.ID, model.AppointmentStatusConfirmed)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.request("2024-05-25", "09:00", "09:30"))
	require.NoError(t, err)

	week, err := f.svc.Calendar(ctx, model.CalendarViewWeek, "2024-05-15", uuid.Nil)
	require.NoError(t, err)
	require.Len(t, week, 1)
	ev := week[0]
	assert.Equal(t, apt.ID, ev.ID)
	assert.Equal(t, "Max - check-up", ev.Title)
	assert.Equal(t, "#34D399", ev.Color)
	assert.Equal(t, time.Date(2024, 5, 16, 9, 0, 0, 0, time.UTC), ev.Start)
	assert.Equal(t, time.Date(2024, 5, 16, 9, 30, 0, 0, time.UTC), ev.End)

	month, err := f.svc.Calendar(ctx, model.CalendarViewMonth, "", uuid.Nil)
	require.NoError(t, err)
	assert.Len(t, month, 2)

	other, err := f.svc.Calendar(ctx, model.CalendarViewMonth, "", uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = f.svc.Calendar(ctx, model.CalendarViewDay, "15-05-2024", uuid.Nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestAvailability(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// Wednesday 22 May, hours 09:00-12:00 -> six slots
	slots, err := f.svc.Availability(ctx, f.vet.ID, "2024-05-22")
	require.NoError(t, err)
	assert.Len(t, slots, 6)

	_, err = f.svc.Create(ctx, f.request("2024-05-22", "10:00", "11:00"))
	require.NoError(t, err)

	slots, err = f.svc.Availability(ctx, f.vet.ID, "2024-05-22")
	require.NoError(t, err)
	require.Len(t, slots, 4)
	var starts []string
	for _, s := range slots {
		starts = append(starts, s.Start.Format(model.ClockLayout))
	}
	assert.Equal(t, []string{"09:00", "09:30", "11:00", "11:30"}, starts)

	// no working hours on Thursday
	slots, err = f.svc.Availability(ctx, f.vet.ID, "2024-05-23")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailabilitySkipsPastSlots(t *testing.T) {
	f := setup(t)
	f.svc.now = func() time.Time { return time.Date(2024, 5, 15, 10, 15, 0, 0, time.UTC) }

	slots, err := f.svc.Availability(context.Background(), f.vet.ID, "2024-05-15")
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, "10:30", slots[0].Start.Format(model.ClockLayout))
}

func TestCalendarKeepsWallClockOnDSTDays(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	f.vet.Schedule[model.Sunday] = model.WorkingHours{Start: "09:00", End: "10:00"}
	require.NoError(t, f.store.Staff.Update(ctx, f.vet))

	svc := NewService(f.store.Appointments, f.store.Patients, f.store.Staff, ny)
	svc.now = func() time.Time { return testNow }

	// spring forward and fall back, both Sundays
	for _, date := range []string{"2026-03-08", "2026-11-01"} {
		t.Run(date, func(t *testing.T) {
			_, err := svc.Create(ctx, f.request(date, "09:00", "09:30"))
			require.NoError(t, err)

			events, err := svc.Calendar(ctx, model.CalendarViewDay, date, uuid.Nil)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, "09:00", events[0].Start.In(ny).Format(model.ClockLayout))
			assert.Equal(t, "09:30", events[0].End.In(ny).Format(model.ClockLayout))

			slots, err := svc.Availability(ctx, f.vet.ID, date)
			require.NoError(t, err)
			require.Len(t, slots, 1)
			assert.Equal(t, "09:30", slots[0].Start.In(ny).Format(model.ClockLayout))
			assert.Equal(t, "10:00", slots[0].End.In(ny).Format(model.ClockLayout))
		})
	}
}
