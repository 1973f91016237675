package metrics

import (
	"context"

	"github.com/wyfcoding/knapsack/algorithm/evolution"
)

// progressReporter 把进度快照写入进化指标。
type progressReporter struct {
	m           *Metrics
	replacement string
	interval    int
}

// Reporter 返回一个 evolution.Reporter：每个快照代表 interval 代。
// m 为 nil 时返回空实现，调用方无需判断是否启用了指标。
func (m *Metrics) Reporter(replacement string, interval int) evolution.Reporter {
	if m == nil {
		return evolution.ReporterFunc(func(context.Context, evolution.Snapshot) {})
	}
	if interval <= 0 {
		interval = evolution.DefaultReportInterval
	}
	return &progressReporter{m: m, replacement: replacement, interval: interval}
}

// Report 实现 evolution.Reporter。
func (r *progressReporter) Report(_ context.Context, s evolution.Snapshot) {
	r.m.Generations.WithLabelValues(r.replacement).Add(float64(r.interval))
	r.m.Offspring.WithLabelValues(r.replacement).Add(float64(s.Accepted))
	r.m.BestQuality.WithLabelValues(r.replacement).Set(float64(s.Best))
	r.m.MeanQuality.WithLabelValues(r.replacement).Set(s.Mean)
}

// ObserveSolve 记录一次求解的结果与耗时。
func (m *Metrics) ObserveSolve(replacement string, seconds float64, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SolvesTotal.WithLabelValues(replacement, status).Inc()
	if err == nil {
		m.SolveDuration.WithLabelValues(replacement).Observe(seconds)
	}
}

// ObserveGap 记录与精确最优解的相对差距。
func (m *Metrics) ObserveGap(replacement string, gap float64) {
	if m == nil {
		return
	}
	m.OptimalityGap.WithLabelValues(replacement).Set(gap)
}
