package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rendis/esigncore/internal/logging"
)

const operationIDHeader = "X-Operation-ID"

// Operation assigns (or propagates) a request id, attaches it to the
// request's context so every log line emitted underneath carries it, and
// logs the request's start and outcome.
func Operation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(operationIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(operationIDHeader, id)

		ctx := logging.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		slog.InfoContext(ctx, "request started",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("client_ip", resolveClientIP(c)),
		)

		c.Next()

		slog.InfoContext(ctx, "request completed",
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
}

// GetOperationID returns the request id Operation assigned.
func GetOperationID(c *gin.Context) string {
	return c.Writer.Header().Get(operationIDHeader)
}
