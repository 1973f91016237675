package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wyfcoding/knapsack/algorithm/evolution"
)

// RegisterBuildInfo 登记构建与默认求解策略信息，恒为 1 的仪表盘。
// 仅首次调用生效，热更新后的配置不会改写该指标。
func (m *Metrics) RegisterBuildInfo(serviceName, version string, solver evolution.Config) {
	if m == nil || m.BuildInfo != nil {
		return
	}

	d := evolution.DefaultConfig()
	m.BuildInfo = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "knapsack_build_info",
		Help: "Build version and default evolution strategies of the solver",
	}, []string{"service", "version", "selection", "crossover", "mutation", "replacement"})

	m.BuildInfo.WithLabelValues(
		orDefault(serviceName, "unknown"),
		orDefault(version, "unknown"),
		orDefault(solver.Selection, d.Selection),
		orDefault(solver.Crossover, d.Crossover),
		orDefault(solver.Mutation, d.Mutation),
		orDefault(solver.Replacement, d.Replacement),
	).Set(1)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
