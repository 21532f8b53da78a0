package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/logging"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID propagates the caller's X-Request-ID, or assigns a new one, and
// logs each request with it at debug level.
func RequestID(log *logging.Logger) gin.HandlerFunc {
	log = logging.OrNop(log)
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(RequestIDHeader, rid)

		start := time.Now()
		c.Next()

		log.Debug("control request",
			zap.String("request_id", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// GetRequestID returns the ID RequestID assigned to c
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
