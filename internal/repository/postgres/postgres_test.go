package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vet-admin-api/internal/model"
)

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.ErrorIs(t, mapError(sql.ErrNoRows), model.ErrNotFound)
	assert.ErrorIs(t, mapError(fmt.Errorf("wrapped: %w", sql.ErrNoRows)), model.ErrNotFound)
	assert.ErrorIs(t, mapError(&pq.Error{Code: uniqueViolation}), model.ErrDuplicate)

	other := &pq.Error{Code: "42P01"}
	assert.Equal(t, other, mapError(other))
}

// openTestDB connects to the database named by VETCLINIC_TEST_DATABASE_DSN
// and migrates it. Tests are skipped when it is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("VETCLINIC_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("VETCLINIC_TEST_DATABASE_DSN not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, MigrateUp(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStaffRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewStaffRepository(NewBaseRepository(db))
	ctx := context.Background()

	staff := &model.Staff{
		Name:         "Dr. Round Trip",
		Role:         model.StaffRoleVeterinarian,
		Contact:      model.Contact{Email: uuid.NewString() + "@Example.test"},
		Status:       model.StaffStatusActive,
		PasswordHash: "$2a$10$hash",
	}
	staff.Touch(time.Now())
	require.NoError(t, repo.Create(ctx, staff))
	t.Cleanup(func() { _ = repo.Delete(ctx, staff.ID) })

	got, err := repo.GetByEmail(ctx, staff.Contact.Email)
	require.NoError(t, err)
	assert.Equal(t, staff.ID, got.ID)
	assert.Equal(t, "$2a$10$hash", got.PasswordHash)

	dup := *staff
	dup.ID = uuid.New()
	assert.ErrorIs(t, repo.Create(ctx, &dup), model.ErrDuplicate)

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestOutboxRepositoryLifecycle(t *testing.T) {
	db := openTestDB(t)
	repo := NewOutboxRepository(NewBaseRepository(db))
	ctx := context.Background()

	evt := &model.OutboxEvent{EventType: "PATIENT_CREATE", Payload: []byte(`{"id":"x"}`)}
	require.NoError(t, repo.Create(ctx, evt))

	pending, err := repo.GetPendingEventsWithLock(ctx, 100)
	require.NoError(t, err)
	var found bool
	for _, p := range pending {
		found = found || p.ID == evt.ID
	}
	assert.True(t, found)

	require.NoError(t, repo.UpdateStatus(ctx, evt.ID, model.OutboxStatusProcessed, nil))
	n, err := repo.DeleteProcessedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
}
