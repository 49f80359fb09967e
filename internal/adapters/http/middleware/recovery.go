package middleware

import (
	"errors"
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/tarot-service/internal/adapters/http/dto"
)

// errPanic is mapped to the generic internal error response.
var errPanic = errors.New("handler panicked")

// Recovery returns middleware that turns a panic into a logged 500 with the
// standard error envelope. It must be first in the chain.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			ctx := c.Request.Context()
			traceID := dto.GetTraceID(c)

			logger.ErrorContext(ctx, "panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String("request_id", GetRequestID(c)),
				slog.String("trace_id", traceID),
			)

			// An open event stream cannot take a JSON body.
			if c.Writer.Written() {
				c.Abort()
				return
			}

			dto.AbortWithError(c, errPanic)
		}()

		c.Next()
	}
}
