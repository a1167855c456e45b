package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	middleware "github.com/tripfund/payment-backend/pkg/middlewares"
	"github.com/tripfund/payment-backend/services/payment-api/internal/services"
	"go.uber.org/zap/zaptest"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	r := gin.New()
	NewBaseHandler(zaptest.NewLogger(t), map[string]HealthChecker{"postgres": up, "redis": up}).RegisterRoutes(r)
	w := doJSON(r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	r = gin.New()
	NewBaseHandler(zaptest.NewLogger(t), map[string]HealthChecker{"postgres": up, "redis": down}).RegisterRoutes(r)
	w = doJSON(r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"down"`)
	assert.NotContains(t, w.Body.String(), "refused")
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewBaseHandler(zaptest.NewLogger(t), nil).RegisterRoutes(r)

	w := doJSON(r, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	svc, err := services.NewUploadService(zaptest.NewLogger(t), dir, 1<<20)
	require.NoError(t, err)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	NewUploadHandler(zaptest.NewLogger(t), svc, 1<<20).RegisterRoutes(api)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("profilePic", "me.gif")
	require.NoError(t, err)
	_, _ = part.Write([]byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"imageUrl":"uploads/`)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/upload", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
