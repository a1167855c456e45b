package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/utils"
)

// TraceID returns Gin middleware to handle trace IDs for observability.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.Request.Header.Get(pkg.HeaderTraceId)
		if utils.IsEmpty(traceID) {
			traceID = uuid.New().String()
		}
		c.Set(pkg.TraceId, traceID)
		if requestID := c.Request.Header.Get(pkg.HeaderRequestId); !utils.IsEmpty(requestID) {
			c.Set(pkg.RequestId, requestID)
		}
		c.Writer.Header().Set(pkg.HeaderTraceId, traceID)
		c.Next()
	}
}
