package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Tracing 为每个请求创建服务端 Span，并从请求头提取上游追踪上下文。
// 追踪未启用时全局 Provider 为 no-op，中间件开销可以忽略。
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}
