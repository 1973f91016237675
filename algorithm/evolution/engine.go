// Package evolution 实现 0/1 背包问题的遗传算法求解引擎。
//
// 引擎由可插拔的策略组成：初始化、选择、交叉、变异、贪心局部改进、门控与替换。
// 两种典型组合分别是“轮盘赌 + 单子代交叉 + 稳态替换”与“精英偏置 + 双子代交叉 + 整代替换”，
// 都由同一个 Engine 按 Config 装配，而不是两套并行代码。
//
// 引擎是单线程的：给定同一随机种子、同一配置和同一目录，两次运行得到完全相同的种群。
package evolution

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/wyfcoding/knapsack/xerrors"
)

// Result 是一次运行的最终结果：终态种群中质量最高的个体及运行信息。
type Result struct {
	Genes       []bool        `json:"genes"`
	Items       []int         `json:"items"`
	Quality     int           `json:"quality"`
	Value       int           `json:"value"`
	Weight      int           `json:"weight"`
	Capacity    int           `json:"capacity"`
	Generations int           `json:"generations"`
	Seed        uint64        `json:"seed"`
	Duration    time.Duration `json:"duration"`
	Initial     Stats         `json:"initial"`
	Final       Stats         `json:"final"`
	History     []Snapshot    `json:"history,omitempty"`
}

// Engine 遗传算法执行引擎。不可并发使用。
type Engine struct {
	problem *Problem
	cfg     Config
	rng     *rand.Rand
	seed    uint64

	initializer Initializer
	selector    Selector
	crossover   Crossover
	mutator     Mutator
	improver    Improver
	gate        Gate
	replacement Replacement
	reporter    Reporter
	logger      *slog.Logger

	population Population
}

// New 校验配置并按配置装配各策略，opts 可覆盖任一策略。
func New(problem *Problem, cfg Config, opts ...Option) (*Engine, error) {
	if problem == nil {
		return nil, xerrors.ErrEmptyCatalogue.Derive("problem is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	e := &Engine{
		problem:  problem,
		cfg:      cfg,
		improver: GreedyImprover{},
		reporter: nopReporter{},
		logger:   slog.Default(),
	}
	if err := e.assemble(); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.rng == nil {
		e.seed = ResolveSeed(cfg.Seed)
		e.rng = NewRand(e.seed)
	} else {
		e.seed = cfg.Seed
	}
	return e, nil
}

// assemble 把配置中的策略名称翻译为具体实现。名称已在 Validate 中校验过。
func (e *Engine) assemble() error {
	cfg := e.cfg

	switch cfg.Initialization {
	case InitGreedy:
		e.initializer = GreedyInitializer{}
	default:
		e.initializer = SparseInitializer{}
	}

	switch cfg.Selection {
	case SelectionElitist:
		e.selector = &ElitistSelector{TopK: cfg.TopK}
	default:
		e.selector = RouletteSelector{}
	}

	switch cfg.Crossover {
	case CrossoverAlternating:
		e.crossover = AlternatingCrossover{}
	default:
		e.crossover = SegmentCrossover{Attempts: DefaultCrossoverAttempts}
	}

	switch cfg.Mutation {
	case MutationInPlace:
		e.mutator = InPlaceMutator{Rate: cfg.MutationRate}
	default:
		e.mutator = RollbackMutator{Rate: cfg.MutationRate}
	}

	switch cfg.Replacement {
	case ReplacementGenerational:
		e.replacement = Generational{Elite: cfg.Elite}
	default:
		e.replacement = SteadyState{}
	}

	switch {
	case cfg.ImproveWhen != "":
		gate, err := NewExprGate(cfg.ImproveWhen)
		if err != nil {
			return err
		}
		e.gate = gate
	case cfg.ImproveAfter > 0:
		e.gate = AfterGeneration(cfg.ImproveAfter)
	default:
		e.gate = Always{}
	}
	return nil
}

// Seed 返回本次运行实际使用的种子。
func (e *Engine) Seed() uint64 { return e.seed }

// Population 返回当前种群的深拷贝。
func (e *Engine) Population() Population { return e.population.Clone() }

// Run 从初始化开始执行固定代数的进化并返回最优个体。
// ctx 只用于日志与上报的上下文传递：运行总会完成配置的全部代数。
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	cfg := e.cfg

	e.population = e.initializer.Initialize(e.problem, cfg.PopulationSize, e.rng)
	initial := e.population.Stats()
	e.logger.InfoContext(ctx, "evolution started",
		"items", e.problem.Len(), "capacity", e.problem.Capacity(),
		"population", cfg.PopulationSize, "generations", cfg.Generations,
		"seed", e.seed, "initial_best", initial.Best)

	history := make([]Snapshot, 0, cfg.Generations/cfg.ReportInterval)
	for gen := 1; gen <= cfg.Generations; gen++ {
		accepted := e.step(gen)

		if gen%cfg.ReportInterval == 0 {
			st := e.population.Stats()
			snap := Snapshot{
				Generation: gen,
				Best:       st.Best,
				Worst:      st.Worst,
				Mean:       st.Mean,
				Feasible:   st.Feasible,
				Accepted:   accepted,
			}
			history = append(history, snap)
			e.reporter.Report(ctx, snap)
			e.logger.DebugContext(ctx, "generation progress", "generation", gen, "best_quality", st.Best)
		}
	}

	best := e.population.Best()
	res := &Result{
		Genes:       best.Genes(),
		Items:       best.Items(),
		Quality:     best.Quality(),
		Value:       best.Value(),
		Weight:      best.Weight(),
		Capacity:    e.problem.Capacity(),
		Generations: cfg.Generations,
		Seed:        e.seed,
		Duration:    time.Since(start),
		Initial:     initial,
		Final:       e.population.Stats(),
		History:     history,
	}

	e.logger.InfoContext(ctx, "evolution completed",
		"best_quality", res.Quality, "weight", res.Weight, "seed", e.seed, "duration", res.Duration)
	return res, nil
}

// step 推进一代，返回进入种群的子代数。
func (e *Engine) step(gen int) int {
	// Stats 会刷新所有过期缓存，之后的选择读到的都是最新质量
	st := e.population.Stats()
	improve := e.gate.Allow(GateState{
		Generation:  gen,
		Generations: e.cfg.Generations,
		Best:        st.Best,
		Mean:        st.Mean,
	})

	if p, ok := e.selector.(Preparer); ok {
		p.Prepare(e.population)
	}

	breed := func(asexual bool) []*Individual {
		p1, p2 := e.selector.SelectPair(e.population, e.rng)

		var children []*Individual
		switch {
		case e.rng.Float64() < e.cfg.CrossoverRate:
			children = e.crossover.Cross(p1, p2, e.rng)
		case asexual:
			children = []*Individual{p1.Clone(), p2.Clone()}
		default:
			return nil
		}

		for _, child := range children {
			e.mutator.Mutate(child, e.rng)
			if improve {
				e.improver.Improve(child)
			}
		}
		return children
	}

	var accepted int
	e.population, accepted = e.replacement.Replace(e.population, breed)
	return accepted
}
