package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLogAndList(t *testing.T) {
	svc := NewService(memory.NewAuditRepository())
	ctx := context.Background()
	staffID, patientID := uuid.New(), uuid.New()

	base := time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)
	for i, action := range []string{model.AuditActionCreate, model.AuditActionUpdate, model.AuditActionDelete} {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		require.NoError(t, svc.Log(ctx, staffID, action, model.AuditEntityPatient, patientID, &LogOptions{
			Changes:   map[string]interface{}{"name": map[string]string{"old": "Max", "new": "Maximus"}},
			IPAddress: "10.0.0.1",
		}))
	}
	require.NoError(t, svc.Log(ctx, uuid.New(), model.AuditActionLogin, model.AuditEntityStaff, uuid.New(), nil))

	logs, total, err := svc.List(ctx, &model.AuditFilters{EntityType: model.AuditEntityPatient})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, logs, 3)
	assert.Equal(t, model.AuditActionDelete, logs[0].Action)
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress)

	var changes map[string]map[string]string
	require.NoError(t, json.Unmarshal(logs[0].Changes, &changes))
	assert.Equal(t, "Maximus", changes["name"]["new"])

	paged, total, err := svc.List(ctx, &model.AuditFilters{StaffID: staffID, Pagination: model.Pagination{Page: 2, PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, paged, 1)

	from, to := base, base.AddDate(0, 0, -1)
	_, _, err = svc.List(ctx, &model.AuditFilters{From: &from, To: &to})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestCleanup(t *testing.T) {
	repo := memory.NewAuditRepository()
	svc := NewService(repo)
	ctx := context.Background()
	now := time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)

	svc.now = func() time.Time { return now.AddDate(-2, 0, 0) }
	require.NoError(t, svc.Log(ctx, uuid.New(), model.AuditActionCreate, model.AuditEntityBill, uuid.New(), nil))
	svc.now = func() time.Time { return now.AddDate(0, -1, 0) }
	require.NoError(t, svc.Log(ctx, uuid.New(), model.AuditActionCreate, model.AuditEntityBill, uuid.New(), nil))

	svc.now = func() time.Time { return now }
	n, err := svc.Cleanup(ctx, 365)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Cleanup(ctx, 0)
	assert.Error(t, err)
}

func TestAuditLoggerCapturesRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := memory.NewAuditRepository()
	auditLogger := NewAuditLogger(NewService(repo), logger.Nop())
	staffID := uuid.New()

	r := gin.New()
	r.POST("/patients", func(c *gin.Context) {
		auditLogger.Log(c, staffID, model.AuditActionCreate, model.AuditEntityPatient, uuid.New(), nil)
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/patients", nil)
	req.Header.Set("User-Agent", "vet-test")
	req.RemoteAddr = "192.0.2.10:5000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	auditLogger.Wait()

	logs, total, err := repo.List(context.Background(), &model.AuditFilters{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, staffID, logs[0].StaffID)
	assert.Equal(t, "vet-test", logs[0].UserAgent)
	assert.Equal(t, "192.0.2.10", logs[0].IPAddress)
}
