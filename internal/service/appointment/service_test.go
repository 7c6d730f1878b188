package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	"github.com/jwalitptl/vet-admin-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
)

// Wednesday 15 May 2024, 08:00 UTC
var testNow = time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *Service
	store   *repository.Store
	patient *model.Patient
	vet     *model.Staff
	tech    *model.Staff
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	patient := &model.Patient{Name: "Max", Species: "dog", Owner: model.Owner{Name: "John Smith"}}
	patient.Touch(testNow)
	require.NoError(t, store.Patients.Create(ctx, patient))

	vet := &model.Staff{
		Name:    "Dr. Sarah Chen",
		Role:    model.StaffRoleVeterinarian,
		Status:  model.StaffStatusActive,
		Contact: model.Contact{Email: "sarah@example.test"},
		Schedule: map[model.Weekday]model.WorkingHours{
			model.Wednesday: {Start: "09:00", End: "12:00"},
		},
	}
	vet.Touch(testNow)
	require.NoError(t, store.Staff.Create(ctx, vet))

	tech := &model.Staff{Name: "Priya", Role: model.StaffRoleTechnician, Contact: model.Contact{Email: "priya@example.test"}}
	tech.Touch(testNow)
	require.NoError(t, store.Staff.Create(ctx, tech))

	svc := NewService(store.Appointments, store.Patients, store.Staff, time.UTC)
	svc.now = func() time.Time { return testNow }
	return &fixture{svc: svc, store: store, patient: patient, vet: vet, tech: tech}
}

func (f *fixture) request(date, start, end string) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		PatientID:      f.patient.ID,
		VeterinarianID: f.vet.ID,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		Type:           model.AppointmentTypeCheckUp,
	}
}

func TestCreateAppointment(t *testing.T) {
	f := setup(t)

	apt, err := f.svc.Create(context.Background(), f.request("2024-05-15", "09:00", "09:30"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, apt.ID)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, "Max", apt.PatientName)
	assert.Equal(t, "John Smith", apt.OwnerName)
	assert.Equal(t, "Dr. Sarah Chen", apt.VeterinarianName)
}

func TestCreateAppointmentDefaultsTimes(t *testing.T) {
	f := setup(t)

	apt, err := f.svc.Create(context.Background(), f.request("2024-05-16", "", ""))
	require.NoError(t, err)
	assert.Equal(t, "09:00", apt.StartTime)
	assert.Equal(t, "10:00", apt.EndTime)

	apt, err = f.svc.Create(context.Background(), f.request("2024-05-16", "14:30", ""))
	require.NoError(t, err)
	assert.Equal(t, "15:30", apt.EndTime)
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(r *model.CreateAppointmentRequest)
		code    apperrors.ErrorCode
		message string
	}{
		{"missing patient", func(r *model.CreateAppointmentRequest) { r.PatientID = uuid.Nil }, apperrors.ErrBadRequest, "Patient is required"},
		{"missing vet", func(r *model.CreateAppointmentRequest) { r.VeterinarianID = uuid.Nil }, apperrors.ErrBadRequest, "Veterinarian is required"},
		{"unknown patient", func(r *model.CreateAppointmentRequest) { r.PatientID = uuid.New() }, apperrors.ErrNotFound, "patient not found"},
		{"not a vet", func(r *model.CreateAppointmentRequest) { r.VeterinarianID = f.tech.ID }, apperrors.ErrBadRequest, "Priya is not a veterinarian"},
		{"past date", func(r *model.CreateAppointmentRequest) { r.Date = "2024-05-14" }, apperrors.ErrBadRequest, "appointment cannot be scheduled in the past"},
		{"end before start", func(r *model.CreateAppointmentRequest) { r.StartTime, r.EndTime = "10:00", "09:00" }, apperrors.ErrBadRequest, "end time must be after start time"},
		{"too short", func(r *model.CreateAppointmentRequest) { r.StartTime, r.EndTime = "10:00", "10:10" }, apperrors.ErrBadRequest, "appointment duration must be at least 15m0s"},
		{"too long", func(r *model.CreateAppointmentRequest) { r.StartTime, r.EndTime = "08:00", "12:30" }, apperrors.ErrBadRequest, "appointment duration cannot exceed 4h0m0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request("2024-05-20", "10:00", "10:30")
			tt.mutate(req)
			_, err := f.svc.Create(ctx, req)
			require.Error(t, err)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestCreateAppointmentRejectsOverlap(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.request("2024-05-20", "10:00", "11:00"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.request("2024-05-20", "10:30", "11:30"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	// touching intervals do not overlap
	_, err = f.svc.Create(ctx, f.request("2024-05-20", "11:00", "11:30"))
	assert.NoError(t, err)

	// a cancelled appointment frees its slot
	_, err = f.svc.ChangeStatus(ctx, first.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.request("2024-05-20", "10:00", "10:45"))
	assert.NoError(t, err)

	// reactivating the cancelled one now conflicts
	_, err = f.svc.ChangeStatus(ctx, first.ID, model.AppointmentStatusScheduled)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestUpdateAppointment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, f.request("2024-05-20", "10:00", "10:30"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.request("2024-05-20", "11:00", "11:30"))
	require.NoError(t, err)

	notes := "bring records"
	updated, err := f.svc.Update(ctx, apt.ID, &model.UpdateAppointmentRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "bring records", updated.Notes)

	start, end := "11:15", "11:45"
	_, err = f.svc.Update(ctx, apt.ID, &model.UpdateAppointmentRequest{StartTime: &start, EndTime: &end})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	start, end = "10:00", "10:45"
	updated, err = f.svc.Update(ctx, apt.ID, &model.UpdateAppointmentRequest{StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, "10:45", updated.EndTime)

	_, err = f.svc.Update(ctx, uuid.New(), &model.UpdateAppointmentRequest{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestCompletingAppointmentStampsLastVisit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, f.request("2024-05-15", "09:00", "09:30"))
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, apt.ID, model.AppointmentStatusCompleted)
	require.NoError(t, err)

	patient, err := f.store.Patients.Get(ctx, f.patient.ID)
	require.NoError(t, err)
	require.NotNil(t, patient.LastVisit)
	assert.Equal(t, time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC), *patient.LastVisit)
}

func TestListSortedAndFiltered(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, r := range [][3]string{
		{"2024-05-21", "09:00", "09:30"},
		{"2024-05-20", "14:00", "14:30"},
		{"2024-05-20", "09:00", "09:30"},
	} {
		_, err := f.svc.Create(ctx, f.request(r[0], r[1], r[2]))
		require.NoError(t, err)
	}

	all, err := f.svc.List(ctx, &model.AppointmentFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-05-20 09:00", all[0].Date+" "+all[0].StartTime)
	assert.Equal(t, "2024-05-20 14:00", all[1].Date+" "+all[1].StartTime)
	assert.Equal(t, "2024-05-21 09:00", all[2].Date+" "+all[2].StartTime)

	ranged, err := f.svc.List(ctx, &model.AppointmentFilters{From: "2024-05-21"})
	require.NoError(t, err)
	assert.Len(t, ranged, 1)

	none, err := f.svc.List(ctx, &model.AppointmentFilters{Status: model.AppointmentStatusCompleted})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteAppointment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, f.request("2024-05-20", "09:00", "09:30"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, apt.ID))

	err = f.svc.Delete(ctx, apt.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
