// Package metrics 封装了基于 Prometheus 的指标注册表，以及求解服务的标准 HTTP 指标与进化过程指标。
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 封装了独立的 Prometheus 注册中心及预定义指标。
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec   // 维度: method, path, status
	HTTPRequestDuration  *prometheus.HistogramVec // 维度: method, path
	HTTPRequestSizeBytes *prometheus.HistogramVec // 维度: method, path

	SolvesTotal   *prometheus.CounterVec   // 求解次数，维度: replacement, status
	SolveDuration *prometheus.HistogramVec // 单次求解（含全部重启）耗时，维度: replacement
	Generations   *prometheus.CounterVec   // 已推进的代数，维度: replacement
	Offspring     *prometheus.CounterVec   // 进入种群的子代数，维度: replacement
	BestQuality   *prometheus.GaugeVec     // 最近一次快照的最优质量，维度: replacement
	MeanQuality   *prometheus.GaugeVec     // 最近一次快照的平均质量，维度: replacement
	OptimalityGap *prometheus.GaugeVec     // 与动态规划最优解的相对差距，维度: replacement
	BuildInfo     *prometheus.GaugeVec
}

// NewMetrics 初始化并返回一个新的指标采集器，自动注册 Go 运行时指标和进程指标。
func NewMetrics(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name: "http_server_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	m.HTTPRequestDuration = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_server_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	m.HTTPRequestSizeBytes = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_server_request_size_bytes",
		Help:    "HTTP request body size in bytes",
		Buckets: prometheus.ExponentialBuckets(128, 2, 14),
	}, []string{"method", "path"})

	m.SolvesTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name: "knapsack_solves_total",
		Help: "Total number of solve requests",
	}, []string{"replacement", "status"})

	m.SolveDuration = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "knapsack_solve_duration_seconds",
		Help:    "Wall time of a solve including all restarts",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"replacement"})

	m.Generations = m.NewCounterVec(prometheus.CounterOpts{
		Name: "knapsack_generations_total",
		Help: "Generations advanced across all runs",
	}, []string{"replacement"})

	m.Offspring = m.NewCounterVec(prometheus.CounterOpts{
		Name: "knapsack_offspring_accepted_total",
		Help: "Offspring that entered a population at reported generations",
	}, []string{"replacement"})

	m.BestQuality = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "knapsack_best_quality",
		Help: "Best quality of the latest progress snapshot",
	}, []string{"replacement"})

	m.MeanQuality = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "knapsack_mean_quality",
		Help: "Mean quality of the latest progress snapshot",
	}, []string{"replacement"})

	m.OptimalityGap = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "knapsack_optimality_gap_ratio",
		Help: "Relative gap between the heuristic result and the exact optimum",
	}, []string{"replacement"})

	slog.Info("unified metrics registry initialized", "service", serviceName)
	return m
}

// NewCounterVec 创建并注册一个新的计数器指标。
func (m *Metrics) NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(opts, labelNames)
	m.registry.MustRegister(cv)
	return cv
}

// NewGaugeVec 创建并注册一个新的仪表盘指标。
func (m *Metrics) NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(opts, labelNames)
	m.registry.MustRegister(gv)
	return gv
}

// NewHistogramVec 创建并注册一个新的直方图指标。
func (m *Metrics) NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec {
	hv := prometheus.NewHistogramVec(opts, labelNames)
	m.registry.MustRegister(hv)
	return hv
}

// Registry 返回底层注册中心，供测试收集指标。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回用于暴露指标的 HTTP 处理器。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ExposeHTTP 在指定端口启动一个独立的 HTTP 服务器用于暴露指标数据。
// 返回一个清理函数用于优雅关闭该服务器。
func (m *Metrics) ExposeHTTP(port, path string) func() {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown metrics server", "error", err)
		}
	}
}
