package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/tripfund/payment-backend/pkg"
	"go.uber.org/zap"
)

// Limiter is satisfied by *pkg.DistributedLimiter.
type Limiter interface {
	Allow(ctx context.Context, subject string) bool
}

// RateLimit rejects requests with 429 once the client IP exhausts its budget.
func RateLimit(logger *zap.Logger, limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Allow(c.Request.Context(), c.ClientIP()) {
			c.Next()
			return
		}
		resp := pkg.ToErrorResponse(logger, c.GetString(pkg.TraceId),
			pkg.NewAppError(pkg.ErrRateLimitedCode, "too many requests, retry later", pkg.ErrRateLimitExceeded))
		c.AbortWithStatusJSON(resp.Status, resp)
	}
}
