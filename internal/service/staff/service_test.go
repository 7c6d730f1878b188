package staff

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
	"github.com/jwalitptl/vet-admin-api/pkg/security"
)

var testNow = time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T) *Service {
	t.Helper()
	svc := NewService(memory.NewStore().Staff, security.NewBcryptHasher(bcrypt.MinCost), time.UTC)
	svc.now = func() time.Time { return testNow }
	return svc
}

func createVet(t *testing.T, svc *Service) *model.Staff {
	t.Helper()
	member, err := svc.Create(context.Background(), &model.CreateStaffRequest{
		Name:     "Dr. Sarah Chen",
		Role:     model.StaffRoleVeterinarian,
		Contact:  model.Contact{Email: "sarah@example.test"},
		Password: "correct horse",
		Schedule: map[model.Weekday]model.WorkingHours{
			model.Monday:    {Start: "09:00", End: "17:00"},
			model.Wednesday: {Start: "08:30", End: "12:00"},
		},
	})
	require.NoError(t, err)
	return member
}

func TestCreateStaffHashesPassword(t *testing.T) {
	svc := setup(t)
	member := createVet(t, svc)

	assert.Equal(t, model.StaffStatusActive, member.Status)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), member.StartDate)
	require.NotEmpty(t, member.PasswordHash)
	assert.NoError(t, svc.hasher.Compare(member.PasswordHash, "correct horse"))

	_, err := svc.Create(context.Background(), &model.CreateStaffRequest{
		Name: "Copy", Role: model.StaffRoleAssistant, Contact: model.Contact{Email: "SARAH@example.test"},
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	_, err = svc.Create(context.Background(), &model.CreateStaffRequest{
		Name: "Short", Role: model.StaffRoleAssistant, Contact: model.Contact{Email: "s@example.test"}, Password: "abc",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestCreateNormalizesScheduleDays(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	member, err := svc.Create(ctx, &model.CreateStaffRequest{
		Name:    "Dr. Omar Haddad",
		Role:    model.StaffRoleVeterinarian,
		Contact: model.Contact{Email: "omar@example.test"},
		Schedule: map[model.Weekday]model.WorkingHours{
			"Monday":  {Start: "09:00", End: "17:00"},
			"FRIDAY ": {Start: "10:00", End: "14:00"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, member.Schedule, 2)
	assert.Equal(t, "17:00", member.Schedule[model.Monday].End)
	assert.Equal(t, "10:00", member.Schedule[model.Friday].Start)

	stored, err := svc.Get(ctx, member.ID)
	require.NoError(t, err)
	_, ok := stored.Schedule["Monday"]
	assert.False(t, ok)

	_, err = svc.Create(ctx, &model.CreateStaffRequest{
		Name:     "Dr. Nobody",
		Role:     model.StaffRoleVeterinarian,
		Contact:  model.Contact{Email: "nobody@example.test"},
		Schedule: map[model.Weekday]model.WorkingHours{"Funday": {Start: "09:00", End: "17:00"}},
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestListFilters(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	createVet(t, svc)
	_, err := svc.Create(ctx, &model.CreateStaffRequest{
		Name: "Alex Kim", Role: model.StaffRoleTechnician, Contact: model.Contact{Email: "alex@example.test"},
		Status: model.StaffStatusOnLeave,
	})
	require.NoError(t, err)

	all, err := svc.List(ctx, &model.StaffFilters{Role: "all"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alex Kim", all[0].Name)

	vets, err := svc.List(ctx, &model.StaffFilters{Role: string(model.StaffRoleVeterinarian)})
	require.NoError(t, err)
	assert.Len(t, vets, 1)

	onLeave, err := svc.List(ctx, &model.StaffFilters{Status: string(model.StaffStatusOnLeave), Search: "ALEX"})
	require.NoError(t, err)
	assert.Len(t, onLeave, 1)
}

func TestScheduleDays(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	member := createVet(t, svc)

	updated, err := svc.SetScheduleDay(ctx, member.ID, "Friday", model.WorkingHours{Start: "10:00", End: "14:00"})
	require.NoError(t, err)
	assert.Equal(t, "14:00", updated.Schedule[model.Friday].End)

	_, err = svc.SetScheduleDay(ctx, member.ID, model.Friday, model.WorkingHours{Start: "14:00", End: "10:00"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	_, err = svc.SetScheduleDay(ctx, member.ID, "funday", model.WorkingHours{Start: "10:00", End: "14:00"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

	updated, err = svc.RemoveScheduleDay(ctx, member.ID, model.Monday)
	require.NoError(t, err)
	_, ok := updated.Schedule[model.Monday]
	assert.False(t, ok)

	_, err = svc.SetScheduleDay(ctx, uuid.New(), model.Friday, model.WorkingHours{Start: "10:00", End: "14:00"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestScheduleEvents(t *testing.T) {
	svc := setup(t)
	member := createVet(t, svc)

	events, err := svc.ScheduleEvents(context.Background(), member.ID, "2024-05-18")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Dr. Sarah Chen - Monday", events[0].Title)
	assert.Equal(t, time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC), events[0].Start)
	assert.Equal(t, time.Date(2024, 5, 13, 17, 0, 0, 0, time.UTC), events[0].End)
	assert.Equal(t, "Dr. Sarah Chen - Wednesday", events[1].Title)
	assert.Equal(t, model.Wednesday, events[1].Day)
	assert.Equal(t, member.ID.String(), events[1].StaffID)

	_, err = svc.ScheduleEvents(context.Background(), member.ID, "May 18")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}
