package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	"github.com/jwalitptl/vet-admin-api/internal/repository/memory"
	"github.com/jwalitptl/vet-admin-api/internal/service/billing"
	"github.com/jwalitptl/vet-admin-api/pkg/event"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
	"github.com/jwalitptl/vet-admin-api/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.RegisterGin()
}

type recorded struct {
	eventType string
	payload   interface{}
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []recorded
}

func (r *fakeRecorder) Record(_ context.Context, eventType string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recorded{eventType, payload})
	return nil
}

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*gin.Engine, *repository.Store, *fakeRecorder) {
	t.Helper()
	store := memory.NewStore()
	svc := billing.NewService(store.Bills, store.Patients, 0.08, 30, time.UTC)
	rec := &fakeRecorder{}

	engine := gin.New()
	NewHandler(svc).RegisterRoutesWithEvents(engine.Group("/api/v1"), event.NewEventTrackerMiddleware(rec, logger.Nop()))
	return engine, store, rec
}

func addPatient(t *testing.T, store *repository.Store) *model.Patient {
	t.Helper()
	p := &model.Patient{Name: "Rex", Species: "Dog"}
	p.Touch(time.Now())
	require.NoError(t, store.Patients.Create(context.Background(), p))
	return p
}

func do(engine *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, response) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestCreateBill(t *testing.T) {
	engine, store, rec := setup(t)
	p := addPatient(t, store)

	w, resp := do(engine, http.MethodPost, "/api/v1/bills", map[string]interface{}{
		"patient_id": p.ID,
		"date":       "2024-05-01",
		"items": []map[string]interface{}{
			{"description": "Consultation", "quantity": 1, "unit_price": "50.00"},
			{"description": "Vaccine", "quantity": 2, "unit_price": "25"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var bill model.Bill
	require.NoError(t, json.Unmarshal(resp.Data, &bill))
	assert.Equal(t, "100", bill.Subtotal.String())
	assert.Equal(t, "8", bill.Tax.String())
	assert.Equal(t, "108", bill.Total.String())
	assert.Equal(t, model.BillStatusPending, bill.Status)
	assert.Equal(t, "2024-05-31", bill.DueDate.Format(model.DateLayout))

	require.Len(t, rec.events, 1)
	assert.Equal(t, "BILL_CREATE", rec.events[0].eventType)
	payload := rec.events[0].payload.(map[string]interface{})
	assert.Equal(t, p.ID, payload["patient_id"])
	assert.Equal(t, bill.ID, payload["entity_id"])
}

func TestCreateBillRejected(t *testing.T) {
	engine, store, rec := setup(t)
	p := addPatient(t, store)

	tests := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"no items", map[string]interface{}{"patient_id": p.ID}, http.StatusBadRequest},
		{"bad date", map[string]interface{}{
			"patient_id": p.ID, "date": "05/01/2024",
			"items": []map[string]interface{}{{"description": "X", "quantity": 1, "unit_price": "1"}},
		}, http.StatusBadRequest},
		{"unknown patient", map[string]interface{}{
			"patient_id": uuid.New(),
			"items":      []map[string]interface{}{{"description": "X", "quantity": 1, "unit_price": "1"}},
		}, http.StatusNotFound},
		{"due before date", map[string]interface{}{
			"patient_id": p.ID, "date": "2024-05-10", "due_date": "2024-05-01",
			"items": []map[string]interface{}{{"description": "X", "quantity": 1, "unit_price": "1"}},
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := do(engine, http.MethodPost, "/api/v1/bills", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, rec.events)
}

func TestListAndPayBills(t *testing.T) {
	engine, store, rec := setup(t)
	rex := addPatient(t, store)
	other := addPatient(t, store)

	for _, pid := range []uuid.UUID{rex.ID, rex.ID, other.ID} {
		w, _ := do(engine, http.MethodPost, "/api/v1/bills", map[string]interface{}{
			"patient_id": pid,
			"items":      []map[string]interface{}{{"description": "Exam", "quantity": 1, "unit_price": "40"}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, resp := do(engine, http.MethodGet, "/api/v1/bills?patient_id="+rex.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bills []model.Bill
	require.NoError(t, json.Unmarshal(resp.Data, &bills))
	require.Len(t, bills, 2)

	w, _ = do(engine, http.MethodGet, "/api/v1/bills?patient_id=not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = do(engine, http.MethodPost, "/api/v1/bills/"+bills[0].ID.String()+"/pay", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid model.Bill
	require.NoError(t, json.Unmarshal(resp.Data, &paid))
	assert.Equal(t, model.BillStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)
	assert.Equal(t, "BILL_PAID", rec.events[len(rec.events)-1].eventType)

	w, resp = do(engine, http.MethodGet, "/api/v1/bills?status=paid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &bills))
	assert.Len(t, bills, 1)

	w, _ = do(engine, http.MethodGet, "/api/v1/bills/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(engine, http.MethodGet, "/api/v1/bills/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
