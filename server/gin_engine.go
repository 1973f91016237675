package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/knapsack/config"
	"github.com/wyfcoding/knapsack/metrics"
	"github.com/wyfcoding/knapsack/middleware"
	"github.com/wyfcoding/knapsack/solver"
)

// slowRequest 访问日志中慢请求的阈值。
const slowRequest = 5 * time.Second

// NewDefaultGinEngine 创建一个不带默认中间件的 Gin 引擎，中间件顺序与集合由调用方决定。
func NewDefaultGinEngine(middlewares ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(middlewares...)
	return engine
}

// NewEngine 装配完整的求解服务：治理中间件、健康检查、指标与求解路由。
// m 为 nil 时不暴露 /metrics，也不采集请求指标。
func NewEngine(conf *config.Config, s *solver.Solver, m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	if conf.Server.Mode != "" {
		gin.SetMode(conf.Server.Mode)
	}

	engine := NewDefaultGinEngine(
		middleware.Recovery(logger),
		middleware.Tracing(conf.Server.Name),
		middleware.TraceIDHeader(),
		middleware.RequestID(),
		middleware.Logger(logger, slowRequest),
		middleware.Metrics(m, "/healthz", "/metrics"),
		middleware.ErrorHandler(),
	)

	h := NewHandler(conf, s, logger)
	engine.NoRoute(h.NotFound)
	engine.GET("/healthz", h.Health)
	if m != nil {
		engine.GET(metricsPath(conf), gin.WrapH(m.Handler()))
	}

	v1 := engine.Group("/v1", middleware.MaxBodyBytes(conf.Server.MaxBodyBytes))
	if conf.RateLimit.Enabled {
		v1.Use(middleware.RateLimit(middleware.NewLocalLimiter(conf.RateLimit.Rate, conf.RateLimit.Burst)))
	}
	v1.POST("/solve", h.Solve)
	v1.POST("/catalogue", h.GenerateCatalogue)
	return engine
}

func metricsPath(conf *config.Config) string {
	if conf.Metrics.Path != "" {
		return conf.Metrics.Path
	}
	return "/metrics"
}
