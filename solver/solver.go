// Package solver 是求解的应用服务层：按配置装配进化引擎，执行一次或多次独立重启，
// 取最优结果并负责运行号、日志、链路追踪与指标。
package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/knapsack/algorithm/evolution"
	"github.com/wyfcoding/knapsack/algorithm/optimization"
	"github.com/wyfcoding/knapsack/idgen"
	"github.com/wyfcoding/knapsack/metrics"
	"github.com/wyfcoding/knapsack/tracing"
	"github.com/wyfcoding/knapsack/xerrors"
)

// MaxRuns 单次求解允许的最大重启次数。
const MaxRuns = 64

// Request 一次求解的参数。
type Request struct {
	Config   evolution.Config `json:"config"`
	Runs     int              `json:"runs"`     // 独立重启次数，0 视为 1
	Parallel int              `json:"parallel"` // 同时执行的重启数上限，0 表示不限
	Verify   bool             `json:"verify"`   // 额外计算精确最优值
	History  bool             `json:"history"`  // 在结果中保留逐代快照
}

// RunSummary 单次重启的概要。
type RunSummary struct {
	Index    int           `json:"index"`
	Seed     uint64        `json:"seed"`
	Quality  int           `json:"quality"`
	Weight   int           `json:"weight"`
	Duration time.Duration `json:"duration"`
}

// Solution 多次重启后的最终答案。
type Solution struct {
	RunID    string            `json:"run_id"`
	Seed     uint64            `json:"seed"` // 基础种子，各次重启的种子由它派生
	Best     *evolution.Result `json:"best"`
	BestRun  int               `json:"best_run"`
	Runs     []RunSummary      `json:"runs"`
	Optimum  *int              `json:"optimum,omitempty"`
	Gap      *float64          `json:"gap,omitempty"` // (optimum - quality) / optimum
	Duration time.Duration     `json:"duration"`
}

// Solver 无状态，可并发使用。
type Solver struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	progress evolution.Reporter
	runID    func() string
}

// Option 配置 Solver。
type Option func(*Solver)

// WithLogger 指定日志记录器。
func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics 启用进化过程指标。
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Solver) { s.metrics = m }
}

// WithProgress 额外接收每次重启的进度快照，例如命令行的逐代输出。
func WithProgress(r evolution.Reporter) Option {
	return func(s *Solver) { s.progress = r }
}

// WithRunID 替换运行号生成函数。
func WithRunID(fn func() string) Option {
	return func(s *Solver) {
		if fn != nil {
			s.runID = fn
		}
	}
}

// New 创建 Solver。
func New(opts ...Option) *Solver {
	s := &Solver{
		logger: slog.Default(),
		runID:  idgen.GenRunID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunSeed 返回第 i 次重启使用的种子：第 0 次沿用基础种子，其余由基础种子派生。
func RunSeed(base uint64, i int) uint64 {
	if i == 0 {
		return base
	}
	return evolution.DeriveSeed(base, uint64(i))
}

// Solve 执行求解。各次重启彼此独立且各自确定，结果只取决于基础种子：
// 质量最高者胜出，并列时取编号最小的重启。
func (s *Solver) Solve(ctx context.Context, problem *evolution.Problem, req Request) (*Solution, error) {
	start := time.Now()
	runs := req.Runs
	if runs == 0 {
		runs = 1
	}
	replacement := req.Config.Replacement
	if replacement == "" {
		replacement = evolution.ReplacementSteadyState
	}

	sol, err := s.solve(ctx, problem, req, runs, replacement)
	s.metrics.ObserveSolve(replacement, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	sol.Duration = time.Since(start)
	return sol, nil
}

func (s *Solver) solve(ctx context.Context, problem *evolution.Problem, req Request, runs int, replacement string) (*Solution, error) {
	if problem == nil {
		return nil, xerrors.ErrEmptyCatalogue.Derive("problem is nil")
	}
	if runs < 0 || runs > MaxRuns {
		return nil, xerrors.ErrInvalidRuns.Derive("runs=%d, allowed 1..%d", runs, MaxRuns)
	}
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}

	runID := s.runID()
	base := evolution.ResolveSeed(req.Config.Seed)
	logger := s.logger.With("run_id", runID)

	ctx, span := tracing.StartSpan(ctx, "knapsack.solve")
	defer span.End()
	tracing.AddTag(ctx, "run_id", runID)
	tracing.AddTag(ctx, "items", problem.Len())
	tracing.AddTag(ctx, "capacity", problem.Capacity())
	tracing.AddTag(ctx, "runs", runs)
	tracing.AddTag(ctx, "seed", base)

	logger.InfoContext(ctx, "solve started",
		"items", problem.Len(), "capacity", problem.Capacity(), "runs", runs,
		"seed", base, "replacement", replacement)

	results := make([]*evolution.Result, runs)
	g, gctx := errgroup.WithContext(ctx)
	if req.Parallel > 0 {
		g.SetLimit(req.Parallel)
	}
	for i := range runs {
		g.Go(func() (err error) {
			// 重启运行在独立 goroutine 中，panic 不会经过 HTTP 层的 Recovery，必须就地转为错误
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(gctx, "restart panicked", "restart", i, "panic", r, "stack", string(debug.Stack()))
					err = xerrors.Internal("evolution restart failed", fmt.Errorf("restart %d panicked: %v", i, r))
				}
			}()

			res, err := s.run(gctx, problem, req, i, RunSeed(base, i), replacement, logger)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracing.SetError(ctx, err)
		logger.ErrorContext(ctx, "solve failed", "error", err)
		return nil, err
	}

	sol := &Solution{RunID: runID, Seed: base, Runs: make([]RunSummary, runs)}
	for i, res := range results {
		sol.Runs[i] = RunSummary{Index: i, Seed: res.Seed, Quality: res.Quality, Weight: res.Weight, Duration: res.Duration}
		if sol.Best == nil || res.Quality > sol.Best.Quality {
			sol.Best, sol.BestRun = res, i
		}
	}
	if !req.History {
		sol.Best.History = nil
	}

	if req.Verify {
		s.verify(ctx, logger, problem, sol, replacement)
	}

	tracing.AddTag(ctx, "best_quality", sol.Best.Quality)
	tracing.AddTag(ctx, "best_run", sol.BestRun)
	logger.InfoContext(ctx, "solve completed",
		"best_quality", sol.Best.Quality, "weight", sol.Best.Weight, "best_run", sol.BestRun)
	return sol, nil
}

// run 执行一次独立重启。引擎本身是单线程的，重启之间不共享任何可变状态。
func (s *Solver) run(ctx context.Context, problem *evolution.Problem, req Request, i int, seed uint64, replacement string, logger *slog.Logger) (*evolution.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "knapsack.run")
	defer span.End()
	tracing.AddTag(ctx, "index", i)
	tracing.AddTag(ctx, "seed", seed)

	cfg := req.Config
	cfg.Seed = seed

	reporter := evolution.MultiReporter{
		s.metrics.Reporter(replacement, cfg.ReportInterval),
		evolution.ReporterFunc(func(ctx context.Context, snap evolution.Snapshot) {
			tracing.AddEvent(ctx, "generation", map[string]int{
				"generation":   snap.Generation,
				"best_quality": snap.Best,
				"feasible":     snap.Feasible,
			})
		}),
	}
	if s.progress != nil {
		reporter = append(reporter, s.progress)
	}

	engine, err := evolution.New(problem, cfg,
		evolution.WithLogger(logger.With("restart", i)),
		evolution.WithReporter(reporter),
	)
	if err != nil {
		tracing.SetError(ctx, err)
		return nil, err
	}

	res, err := engine.Run(ctx)
	if err != nil {
		tracing.SetError(ctx, err)
		return nil, err
	}
	tracing.AddTag(ctx, "best_quality", res.Quality)
	return res, nil
}

// verify 用动态规划计算精确最优值；实例过大时只记录告警，不影响求解结果。
func (s *Solver) verify(ctx context.Context, logger *slog.Logger, problem *evolution.Problem, sol *Solution, replacement string) {
	optimum, _, err := optimization.ExactKnapsack(problem.Items(), problem.Capacity())
	if err != nil {
		if errors.Is(err, optimization.ErrProblemTooLarge) {
			logger.WarnContext(ctx, "exact verification skipped", "error", err)
			return
		}
		logger.ErrorContext(ctx, "exact verification failed", "error", err)
		return
	}

	gap := 0.0
	if optimum > 0 {
		gap = float64(optimum-sol.Best.Quality) / float64(optimum)
	}
	sol.Optimum = &optimum
	sol.Gap = &gap
	s.metrics.ObserveGap(replacement, gap)
	tracing.AddTag(ctx, "optimum", optimum)
	logger.InfoContext(ctx, "exact verification", "optimum", optimum, "gap", gap)
}
