package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger prints one line per request, correlated by request_id. Webhook
// deliveries and customer calls land in the same stream.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		log.Printf("[HTTP] request_id=%s method=%s path=%s status=%d size=%d latency_ms=%.3f ip=%s",
			GetRequestID(c),
			c.Request.Method,
			path,
			c.Writer.Status(),
			c.Writer.Size(),
			float64(time.Since(start).Microseconds())/1000.0,
			c.ClientIP(),
		)
	}
}
