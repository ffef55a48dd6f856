package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/tourvia/commission-service/pkg/resilience"
)

// RequestTimeout bounds each request with the handler deadline so a slow
// downstream cannot hold a connection open indefinitely. Handlers observe the
// deadline through the request context.
func RequestTimeout(timeouts *resilience.TimeoutConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := timeouts.HandlerContext(c.Request.Context())
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
