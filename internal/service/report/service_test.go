package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	"github.com/jwalitptl/vet-admin-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
	"github.com/jwalitptl/vet-admin-api/pkg/metrics"
)

var testNow = time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *repository.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewService(store, time.Minute, logger.Nop(), metrics.New("test"), time.UTC)
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func seed(t *testing.T, store *repository.Store) {
	t.Helper()
	ctx := context.Background()

	patient := &model.Patient{Name: "Max", Species: "dog"}
	patient.Touch(testNow)
	require.NoError(t, store.Patients.Create(ctx, patient))

	vet := &model.Staff{Name: "Dr. Sarah Chen", Role: model.StaffRoleVeterinarian, Status: model.StaffStatusActive, Contact: model.Contact{Email: "sarah@example.test"}}
	vet.Touch(testNow)
	require.NoError(t, store.Staff.Create(ctx, vet))

	for _, b := range []struct {
		date   time.Time
		total  string
		status model.BillStatus
	}{
		{time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), "108.00", model.BillStatusPaid},
		{time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), "54.00", model.BillStatusPending},
		{time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC), "999.00", model.BillStatusPaid},
	} {
		bill := &model.Bill{PatientID: patient.ID, Date: b.date, DueDate: b.date.AddDate(0, 0, 30), Total: decimal.RequireFromString(b.total), Status: b.status}
		bill.Touch(testNow)
		require.NoError(t, store.Bills.Create(ctx, bill))
	}

	for _, a := range []struct {
		date   string
		status model.AppointmentStatus
	}{
		{"2024-05-03", model.AppointmentStatusCompleted},
		{"2024-05-06", model.AppointmentStatusCompleted},
		{"2024-05-14", model.AppointmentStatusCancelled},
		{"2024-04-01", model.AppointmentStatusCompleted},
	} {
		apt := &model.Appointment{PatientID: patient.ID, VeterinarianID: vet.ID, Date: a.date, StartTime: "09:00", EndTime: "09:30", Type: model.AppointmentTypeCheckUp, Status: a.status}
		apt.Touch(testNow)
		require.NoError(t, store.Appointments.Create(ctx, apt))
	}
}

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestResolvePeriod(t *testing.T) {
	svc, _ := setup(t)

	p, err := svc.ResolvePeriod("", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), p.End)

	_, err = svc.ResolvePeriod("2024-05-10", "2024-05-01")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestFinancialCSV(t *testing.T) {
	svc, store := setup(t)
	seed(t, store)

	report, err := svc.Generate(context.Background(), &model.GenerateReportRequest{Type: model.ReportTypeFinancial, Format: model.ReportFormatCSV}, "admin@example.test")
	require.NoError(t, err)
	assert.Equal(t, "Financial Report", report.Title)
	assert.Equal(t, "financial-2024-05-01-2024-05-15.csv", report.Filename())

	_, body, err := svc.Download(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Size, len(body))

	records := readCSV(t, body)
	assert.Equal(t, []string{"Financial Report"}, records[0])
	assert.Contains(t, records, []string{"paid", "1", "108.00"})
	assert.Contains(t, records, []string{"pending", "1", "54.00"})
	assert.Contains(t, records, []string{"total", "2", "162.00"})
}

func TestStaffCompletionRate(t *testing.T) {
	svc, store := setup(t)
	seed(t, store)

	report, err := svc.Generate(context.Background(), &model.GenerateReportRequest{Type: model.ReportTypeStaff, Format: model.ReportFormatCSV}, "")
	require.NoError(t, err)
	_, body, err := svc.Download(context.Background(), report.ID)
	require.NoError(t, err)

	assert.Contains(t, readCSV(t, body), []string{"Dr. Sarah Chen", "veterinarian", "active", "3", "2", "66.7%"})
	assert.Equal(t, "0.0%", CompletionRate(0, 0))
}

func TestClinicalAndInventoryPDF(t *testing.T) {
	svc, store := setup(t)
	seed(t, store)
	ctx := context.Background()

	for _, typ := range []model.ReportType{model.ReportTypeClinical, model.ReportTypeInventory} {
		report, err := svc.Generate(ctx, &model.GenerateReportRequest{Type: typ, Format: model.ReportFormatPDF, Start: "2024-04-01"}, "")
		require.NoError(t, err)
		_, body, err := svc.Download(ctx, report.ID)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
	}

	reports, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestDownloadFallsBackToStore(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	report, err := svc.Generate(ctx, &model.GenerateReportRequest{Type: model.ReportTypeInventory, Format: model.ReportFormatCSV}, "")
	require.NoError(t, err)
	svc.cache.Flush()

	_, body, err := svc.Download(ctx, report.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
	assert.Zero(t, testutil.ToFloat64(svc.metrics.ReportCacheHits))

	_, cached, err := svc.Download(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, body, cached)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.ReportCacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.ReportsGenerated.WithLabelValues("inventory", "csv")))

	_, _, err = svc.Download(ctx, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
