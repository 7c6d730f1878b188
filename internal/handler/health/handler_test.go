package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type body struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func get(t *testing.T, h *Handler, path string) (int, body) {
	t.Helper()
	engine := gin.New()
	h.RegisterRoutes(engine)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var b body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return w.Code, b
}

func TestLiveness(t *testing.T) {
	code, b := get(t, NewHandler(nil), "/health/live")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "UP", b.Status)
}

func TestReadiness(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	code, b := get(t, NewHandler(map[string]Check{"database": up, "redis": up}), "/health/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "UP", b.Status)
	assert.Equal(t, map[string]string{"database": "UP", "redis": "UP"}, b.Checks)

	code, b = get(t, NewHandler(map[string]Check{"database": up, "redis": down}), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "DOWN", b.Status)
	assert.Equal(t, "DOWN: connection refused", b.Checks["redis"])
	assert.Equal(t, "UP", b.Checks["database"])
}

func TestReadinessHonoursDeadline(t *testing.T) {
	check := func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		if !ok {
			return errors.New("no deadline")
		}
		return nil
	}
	code, _ := get(t, NewHandler(map[string]Check{"database": check}), "/health/ready")
	assert.Equal(t, http.StatusOK, code)
}
