package evolution

import "context"

// DefaultReportInterval 进度快照的默认间隔代数。
const DefaultReportInterval = 10

// Snapshot 是某一代结束时的进度快照，仅供观察，不影响算法状态。
type Snapshot struct {
	Generation int     `json:"generation"`
	Best       int     `json:"best_quality"`
	Worst      int     `json:"worst_quality"`
	Mean       float64 `json:"mean_quality"`
	Feasible   int     `json:"feasible"`
	Accepted   int     `json:"accepted"` // 本代进入种群的子代数
}

// Reporter 接收进度快照。
type Reporter interface {
	Report(ctx context.Context, s Snapshot)
}

// ReporterFunc 让普通函数满足 Reporter。
type ReporterFunc func(ctx context.Context, s Snapshot)

// Report 实现 Reporter。
func (f ReporterFunc) Report(ctx context.Context, s Snapshot) { f(ctx, s) }

// MultiReporter 依次转发给多个 Reporter。
type MultiReporter []Reporter

// Report 实现 Reporter。
func (m MultiReporter) Report(ctx context.Context, s Snapshot) {
	for _, r := range m {
		if r != nil {
			r.Report(ctx, s)
		}
	}
}

type nopReporter struct{}

func (nopReporter) Report(context.Context, Snapshot) {}
