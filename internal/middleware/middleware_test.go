package middleware

import (
	"bytes"
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/pkg/auth"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() auth.JWTService {
	return auth.NewJWTService(auth.Config{
		Secret:     "middleware-test-secret-0123456789abcdef",
		Issuer:     "vet-admin-api",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
}

func token(t *testing.T, jwtSvc auth.JWTService, role model.StaffRole) string {
	t.Helper()
	staff := &model.Staff{Name: "Test", Role: role}
	staff.ID = uuid.New()
	tok, err := jwtSvc.GenerateAccessToken(staff)
	require.NoError(t, err)
	return tok
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	jwtSvc := newJWT()
	m := NewAuthMiddleware(jwtSvc)

	engine := gin.New()
	engine.GET("/me", m.Authenticate(), func(c *gin.Context) {
		c.String(http.StatusOK, "%v", c.MustGet("staffID"))
	})
	engine.GET("/admin", m.Authenticate(), m.RequireRole(model.StaffRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	refresh, err := jwtSvc.GenerateRefreshToken(&model.Staff{Role: model.StaffRoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer not-a-token", http.StatusUnauthorized},
		{"refresh token", "/me", "Bearer " + refresh, http.StatusUnauthorized},
		{"valid token", "/me", "Bearer " + token(t, jwtSvc, model.StaffRoleVeterinarian), http.StatusOK},
		{"lowercase scheme", "/me", "bearer " + token(t, jwtSvc, model.StaffRoleVeterinarian), http.StatusOK},
		{"role denied", "/admin", "Bearer " + token(t, jwtSvc, model.StaffRoleReceptionist), http.StatusForbidden},
		{"role allowed", "/admin", "Bearer " + token(t, jwtSvc, model.StaffRoleAdmin), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(engine, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	m := NewAuthMiddleware(newJWT())
	engine := gin.New()
	engine.GET("/", m.RequireRole(model.StaffRoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2})
	engine := gin.New()
	engine.Use(rl.RateLimit())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(engine, req)
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, request("10.0.0.1").Code)

	w := request("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// buckets are per client
	assert.Equal(t, http.StatusOK, request("10.0.0.2").Code)
}

func TestTimeout(t *testing.T) {
	engine := gin.New()
	engine.Use(Timeout(20 * time.Millisecond))
	engine.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	engine.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "request timeout")

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSizeLimit(t *testing.T) {
	engine := gin.New()
	engine.Use(SizeLimit(8))
	engine.POST("/", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"too long"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// undeclared length is capped while reading
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"too long"}`))
	req.ContentLength = -1
	w = serve(engine, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderXRequestID)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w = serve(engine, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))

	for _, bad := range []string{strings.Repeat("x", 200), "abc\r\nSet-Cookie: x=1", "<script>", "id with spaces"} {
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header[HeaderXRequestID] = []string{bad}
		w = serve(engine, req)
		rid := w.Header().Get(HeaderXRequestID)
		assert.NotEqual(t, bad, rid)
		_, err := uuid.Parse(rid)
		assert.NoError(t, err, bad)
	}
}

func TestRequestIDReachesRequestContext(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		ctx := c.Request.Context()
		LoggerFrom(ctx).Info().Msg("in handler")
		c.String(http.StatusOK, RequestIDFrom(ctx))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "visit-42.a:b")
	w := serve(engine, req)
	assert.Equal(t, "visit-42.a:b", w.Body.String())
	assert.Contains(t, buf.String(), `"request_id":"visit-42.a:b"`)
	assert.Empty(t, RequestIDFrom(context.Background()))
}

func TestErrorHandlerAnswersUnwrittenErrors(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID(), ErrorHandler())
	engine.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("patient", nil))
	})
	engine.GET("/boom", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
	})

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "patient not found")

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecoveryAndSecurityHeaders(t *testing.T) {
	engine := gin.New()
	engine.Use(Recovery(), SecurityHeaders(DefaultSecurityConfig()))
	engine.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Header().Get("Permissions-Policy"), "camera=()")
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
}

func TestSecurityHeadersHSTS(t *testing.T) {
	tests := []struct {
		name   string
		config SecurityConfig
		tls    bool
		proto  string
		want   string
	}{
		{"plain http", SecurityConfig{}, false, "", ""},
		{"direct tls", SecurityConfig{HSTSMaxAge: time.Hour}, true, "", "max-age=3600; includeSubDomains"},
		{"untrusted proxy", SecurityConfig{}, false, "https", ""},
		{"trusted proxy", SecurityConfig{TrustForwardedTLS: true}, false, "https", "max-age=31536000; includeSubDomains"},
		{"disabled", SecurityConfig{HSTSMaxAge: -1}, true, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.Use(SecurityHeaders(tt.config))
			engine.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			w := serve(engine, req)
			assert.Equal(t, tt.want, w.Header().Get("Strict-Transport-Security"))
			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		})
	}
}
