package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tripfund/payment-backend/pkg"
	middleware "github.com/tripfund/payment-backend/pkg/middlewares"
	"github.com/tripfund/payment-backend/pkg/models"
	"go.uber.org/zap/zaptest"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Signup(ctx context.Context, traceID, email, password string) (models.User, error) {
	args := m.Called(ctx, traceID, email, password)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, traceID, email, password string) (models.User, error) {
	args := m.Called(ctx, traceID, email, password)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, traceID, email, password, profilePic string) error {
	return m.Called(ctx, traceID, email, password, profilePic).Error(0)
}

func newAuthRouter(t *testing.T, svc *mockAuthService, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	NewAuthHandler(zaptest.NewLogger(t), svc, guard).RegisterRoutes(api)
	return r
}

func TestSignup(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Signup", mock.Anything, mock.Anything, "a@example.com", "password1").Return(models.User{ID: uuid.New()}, nil).Once()
	svc.On("Signup", mock.Anything, mock.Anything, "b@example.com", "password1").
		Return(models.User{}, pkg.NewAppError(pkg.ErrEmailTakenCode, "email already registered", nil)).Once()

	r := newAuthRouter(t, svc, nil)
	assert.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/api/v1/signup", map[string]string{"email": "a@example.com", "password": "password1"}, nil).Code)
	assert.Equal(t, http.StatusConflict, doJSON(r, http.MethodPost, "/api/v1/signup", map[string]string{"email": "b@example.com", "password": "password1"}, nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/api/v1/signup", map[string]string{"email": "not-an-email", "password": "password1"}, nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/api/v1/signup", map[string]string{"email": "c@example.com", "password": "short"}, nil).Code)
}

func TestLogin_InvalidCredentialsIs401(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.Anything, "a@example.com", "wrongpass").
		Return(models.User{}, pkg.NewAppError(pkg.ErrInvalidCredentialsCode, pkg.ErrInvalidCredentialsCode.Message, nil)).Once()

	w := doJSON(newAuthRouter(t, svc, nil), http.MethodPost, "/api/v1/login", map[string]string{"email": "a@example.com", "password": "wrongpass"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "wrongpass")
}

func TestLogin_RateLimitedPerClient(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	logger := zaptest.NewLogger(t)
	limiter := pkg.NewDistributedLimiter(rdb, "ratelimit:login", 0, 0, 3, time.Minute, logger)

	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(models.User{ID: uuid.New()}, nil)

	r := newAuthRouter(t, svc, middleware.RateLimit(logger, limiter))
	body := map[string]string{"email": "a@example.com", "password": "password1"}
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/api/v1/login", body, nil).Code)
	}
	w := doJSON(r, http.MethodPost, "/api/v1/login", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), pkg.ErrRateLimitedCode.Code)
	svc.AssertNumberOfCalls(t, "Login", 3)
}

func TestUpdateProfile(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("UpdateProfile", mock.Anything, mock.Anything, "a@example.com", "", "uploads/x.png").Return(nil).Once()
	svc.On("UpdateProfile", mock.Anything, mock.Anything, "ghost@example.com", "", "").
		Return(pkg.NewAppError(pkg.ErrRecordNotFoundCode, "user not found", nil)).Once()

	r := newAuthRouter(t, svc, nil)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPut, "/api/v1/update-profile", map[string]string{"email": "a@example.com", "profilePic": "uploads/x.png"}, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodPut, "/api/v1/update-profile", map[string]string{"email": "ghost@example.com"}, nil).Code)
}
