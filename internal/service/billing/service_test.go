package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
)

var testNow = time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *model.Patient) {
	t.Helper()
	store := memory.NewStore()
	patient := &model.Patient{Name: "Max", Species: "dog"}
	patient.Touch(testNow)
	require.NoError(t, store.Patients.Create(context.Background(), patient))

	svc := NewService(store.Bills, store.Patients, 0.08, 30, time.UTC)
	svc.now = func() time.Time { return testNow }
	return svc, patient
}

func item(desc string, qty int, price string) model.BillItemRequest {
	return model.BillItemRequest{Description: desc, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func TestCreateBillTotals(t *testing.T) {
	svc, patient := setup(t)

	bill, err := svc.Create(context.Background(), &model.CreateBillRequest{
		PatientID: patient.ID,
		Items: []model.BillItemRequest{
			item("Examination", 1, "55.00"),
			item("Rabies vaccine", 2, "24.99"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "49.98", bill.Items[1].Total.StringFixed(2))
	assert.Equal(t, "104.98", bill.Subtotal.StringFixed(2))
	// 104.98 * 0.08 = 8.3984
	assert.Equal(t, "8.40", bill.Tax.StringFixed(2))
	assert.Equal(t, "113.38", bill.Total.StringFixed(2))
	assert.Equal(t, model.BillStatusPending, bill.Status)
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), bill.DueDate)
}

func TestCreateBillValidation(t *testing.T) {
	svc, patient := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.CreateBillRequest{Items: []model.BillItemRequest{item("x", 1, "1")}})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

	_, err = svc.Create(ctx, &model.CreateBillRequest{PatientID: uuid.New(), Items: []model.BillItemRequest{item("x", 1, "1")}})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	_, err = svc.Create(ctx, &model.CreateBillRequest{PatientID: patient.ID, Items: []model.BillItemRequest{item("x", 1, "-1")}})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

	_, err = svc.Create(ctx, &model.CreateBillRequest{
		PatientID: patient.ID, Date: "2024-05-10", DueDate: "2024-05-01",
		Items: []model.BillItemRequest{item("x", 1, "1")},
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestListMarkPaidAndOverdue(t *testing.T) {
	svc, patient := setup(t)
	ctx := context.Background()

	old, err := svc.Create(ctx, &model.CreateBillRequest{PatientID: patient.ID, Date: "2024-03-01", Items: []model.BillItemRequest{item("Exam", 1, "50")}})
	require.NoError(t, err)
	recent, err := svc.Create(ctx, &model.CreateBillRequest{PatientID: patient.ID, Date: "2024-05-01", Items: []model.BillItemRequest{item("Exam", 1, "50")}})
	require.NoError(t, err)

	bills, err := svc.List(ctx, &model.BillFilters{PatientID: patient.ID})
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, recent.ID, bills[0].ID)

	changed, err := svc.MarkOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, old.ID, changed[0].ID)

	overdue, err := svc.List(ctx, &model.BillFilters{Status: string(model.BillStatusOverdue)})
	require.NoError(t, err)
	assert.Len(t, overdue, 1)

	paid, err := svc.MarkPaid(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BillStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = svc.MarkPaid(ctx, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
