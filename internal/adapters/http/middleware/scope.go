package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	reqctx "github.com/jsamuelsen/tarot-service/internal/app/context"
	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
)

// RequestScope attaches a request-scoped cache and action stage to the request
// context. Actions still staged when the handler returns were never committed
// and are dropped.
func RequestScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, rc := reqctx.Ensure(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if pending := rc.Pending(); pending > 0 {
			rc.Discard()
			logging.FromContext(ctx).DebugContext(ctx, "discarded uncommitted actions",
				slog.Int("count", pending))
		}
	}
}
