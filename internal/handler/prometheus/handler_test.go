package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(prometheus.NewRegistry(), "test")

	engine := gin.New()
	engine.Use(h.Middleware())
	engine.GET("/patients/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	engine.GET("/metrics", h.Handler())

	for _, path := range []string{"/patients/a", "/patients/b", "/boom", "/nowhere"} {
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(h.requestTotal.WithLabelValues("GET", "/patients/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.requestTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.errorTotal.WithLabelValues("GET", "/boom", "500")))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="GET",path="/patients/:id",status="200"} 2`)
}
