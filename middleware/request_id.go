package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/knapsack/contextx"
	"github.com/wyfcoding/knapsack/idgen"
)

// HeaderXRequestID 请求 ID 头。
const HeaderXRequestID = "X-Request-ID"

// maxRequestIDLen 客户端传入的请求 ID 超过此长度时重新生成。
const maxRequestIDLen = 128

// RequestID 透传或生成请求 ID，并连同客户端 IP 注入请求 Context。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = idgen.GenRequestID()
		}

		ctx := contextx.WithRequestID(c.Request.Context(), requestID)
		ctx = contextx.WithIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderXRequestID, requestID)

		c.Next()
	}
}
