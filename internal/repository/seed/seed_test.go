package seed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vet-admin-api/internal/repository/memory"
)

var seedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func plainHash(password string) (string, error) {
	return "hashed:" + password, nil
}

func TestParseResolvesRelativeDates(t *testing.T) {
	data := []byte(`
patients:
  - name: Rex
    last_visit: today-30
  - name: Misty
    last_visit: today
  - name: Bo
    last_visit: today+2
`)
	f, err := Parse(data, seedNow)
	require.NoError(t, err)
	require.Len(t, f.Patients, 3)

	want := []time.Time{
		time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC),
	}
	for i, p := range f.Patients {
		require.NotNil(t, p.LastVisit, p.Name)
		assert.True(t, want[i].Equal(*p.LastVisit), "%s: got %s", p.Name, p.LastVisit)
	}
}

func TestParseLeavesOtherScalars(t *testing.T) {
	f, err := Parse([]byte("patients:\n  - name: today is fine\n"), seedNow)
	require.NoError(t, err)
	assert.Equal(t, "today is fine", f.Patients[0].Name)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("patients: [\n"), seedNow)
	assert.Error(t, err)
}

func TestLoadEmbeddedFixture(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, Load(ctx, store, plainHash, seedNow))

	staff, err := store.Staff.List(ctx)
	require.NoError(t, err)
	assert.Len(t, staff, 5)
	for _, s := range staff {
		if s.Contact.Email == "admin@pawsclinic.test" {
			assert.Equal(t, "hashed:clinic-admin-1", s.PasswordHash)
		}
	}

	patients, err := store.Patients.List(ctx)
	require.NoError(t, err)
	assert.Len(t, patients, 4)

	maxDog, err := store.Patients.Get(ctx, uuid.MustParse("0b7c1d1e-8a4f-4bb0-9d7e-5a2f6c3b0001"))
	require.NoError(t, err)
	assert.Equal(t, "Max", maxDog.Name)
	require.NotNil(t, maxDog.LastVisit)
	assert.Equal(t, "2024-05-16", maxDog.LastVisit.Format("2006-01-02"))

	appointments, err := store.Appointments.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, appointments)
	for _, a := range appointments {
		assert.NotEmpty(t, a.PatientName)
		assert.NotEmpty(t, a.VeterinarianName)
	}

	items, err := store.Inventory.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestLoadStopsOnHashError(t *testing.T) {
	failing := func(string) (string, error) { return "", errors.New("hash failed") }
	err := Load(context.Background(), memory.NewStore(), failing, seedNow)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "hash failed"))
}

func TestRawIsTheEmbeddedFixture(t *testing.T) {
	assert.Contains(t, string(Raw()), "staff:")
}
