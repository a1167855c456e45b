package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/utils"
	"go.uber.org/zap"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type BaseHandler struct {
	logger *zap.Logger
	checks map[string]HealthChecker
}

func NewBaseHandler(logger *zap.Logger, checks map[string]HealthChecker) *BaseHandler {
	return &BaseHandler{logger: logger, checks: checks}
}

func (b *BaseHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", b.GetRoot)
	r.GET("/health", b.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (b *BaseHandler) GetRoot(c *gin.Context) {
	c.String(http.StatusOK, "payment backend is running")
}

// GetHealth godoc
// @Summary Liveness and dependency health
// @Tags base
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (b *BaseHandler) GetHealth(c *gin.Context) {
	status := http.StatusOK
	deps := gin.H{}
	for name, check := range b.checks {
		if err := check.Ping(c.Request.Context()); err != nil {
			b.logger.Warn("health_check_failed", zap.String("dependency", name), zap.Error(err))
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "dependencies": deps})
}

// traceID returns the request trace id, aborting with 500 when the middleware did not run.
func traceID(c *gin.Context, logger *zap.Logger) (string, bool) {
	id, err := utils.GetTraceID(c)
	if err != nil {
		respondError(c, logger, "", pkg.NewAppError(pkg.ErrServerCode, "missing trace id", err))
		return "", false
	}
	return id, true
}

func respondError(c *gin.Context, logger *zap.Logger, traceID string, err error) {
	resp := pkg.ToErrorResponse(logger, traceID, err)
	c.AbortWithStatusJSON(resp.Status, resp)
}

func badRequest(c *gin.Context, logger *zap.Logger, traceID string, err error) {
	respondError(c, logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
}
