package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/knapsack/contextx"
)

// Logger 访问日志中间件。5xx 记为 Error，4xx 记为 Warn，超过 slow 阈值的请求记为 Warn。
func Logger(logger *slog.Logger, slow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		cost := time.Since(start)
		status := c.Writer.Status()
		ctx := c.Request.Context()

		attrs := append(contextx.LogAttrs(ctx),
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"query", c.Request.URL.RawQuery,
			"cost", cost,
			"bytes", c.Writer.Size(),
			"user_agent", c.Request.UserAgent(),
		)
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			logger.ErrorContext(ctx, "http request", attrs...)
		case status >= 400:
			logger.WarnContext(ctx, "http request", attrs...)
		case slow > 0 && cost > slow:
			logger.WarnContext(ctx, "slow http request", attrs...)
		default:
			logger.InfoContext(ctx, "http request", attrs...)
		}
	}
}
