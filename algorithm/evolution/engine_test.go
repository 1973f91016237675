package evolution_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/knapsack/algorithm/evolution"
	"github.com/wyfcoding/knapsack/algorithm/optimization"
	"github.com/wyfcoding/knapsack/xerrors"
)

func smallProblem(t *testing.T) *evolution.Problem {
	t.Helper()
	p, err := evolution.NewProblem([]evolution.Item{{Value: 10, Weight: 5}, {Value: 8, Weight: 4}, {Value: 6, Weight: 3}, {Value: 4, Weight: 2}, {Value: 2, Weight: 1}}, 10)
	require.NoError(t, err)
	return p
}

func randomProblem(t *testing.T, n int, capacity int, seed uint64) *evolution.Problem {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed))
	items := make([]evolution.Item, n)
	for i := range items {
		items[i] = evolution.Item{Value: 2 + rng.IntN(29), Weight: 1 + rng.IntN(25)}
	}
	p, err := evolution.NewProblem(items, capacity)
	require.NoError(t, err)
	return p
}

func testConfig() evolution.Config {
	cfg := evolution.DefaultConfig()
	cfg.PopulationSize = 20
	cfg.Generations = 150
	cfg.ImproveAfter = 0
	cfg.Seed = 42
	return cfg
}

func runEngine(t *testing.T, p *evolution.Problem, cfg evolution.Config, opts ...evolution.Option) (*evolution.Engine, *evolution.Result) {
	t.Helper()
	e, err := evolution.New(p, cfg, opts...)
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	return e, res
}

func requireFeasiblePopulation(t *testing.T, p *evolution.Problem, pop evolution.Population) {
	t.Helper()
	for _, ind := range pop {
		value, weight := p.Evaluate(ind.Genes())
		if weight > p.Capacity() {
			require.Equal(t, 0, ind.Quality())
		} else {
			require.Equal(t, value, ind.Quality())
		}
	}
}

func TestEngine_SmallInstanceReachesOptimum(t *testing.T) {
	p := smallProblem(t)
	optimum, _, err := optimization.ExactKnapsack(p.Items(), p.Capacity())
	require.NoError(t, err)
	require.Equal(t, 20, optimum)

	variants := map[string]func(*evolution.Config){
		"steady state": func(*evolution.Config) {},
		"generational": func(c *evolution.Config) {
			c.Selection = evolution.SelectionElitist
			c.Crossover = evolution.CrossoverAlternating
			c.Replacement = evolution.ReplacementGenerational
			c.Mutation = evolution.MutationInPlace
		},
	}
	for name, tweak := range variants {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			tweak(&cfg)
			e, res := runEngine(t, p, cfg)

			assert.Equal(t, optimum, res.Quality)
			assert.LessOrEqual(t, res.Weight, p.Capacity())
			assert.Equal(t, res.Quality, res.Value)
			requireFeasiblePopulation(t, p, e.Population())
		})
	}
}

func TestEngine_SameSeedSamePopulation(t *testing.T) {
	p := randomProblem(t, 40, 120, 3)
	for _, replacement := range []string{evolution.ReplacementSteadyState, evolution.ReplacementGenerational} {
		t.Run(replacement, func(t *testing.T) {
			cfg := testConfig()
			cfg.Generations = 60
			cfg.Replacement = replacement

			e1, r1 := runEngine(t, p, cfg)
			e2, r2 := runEngine(t, p, cfg)

			pop1, pop2 := e1.Population(), e2.Population()
			require.Len(t, pop2, len(pop1))
			for i := range pop1 {
				require.Equal(t, pop1[i].String(), pop2[i].String(), "individual %d", i)
			}
			assert.Equal(t, r1.Quality, r2.Quality)
			assert.Equal(t, r1.Items, r2.Items)
		})
	}
}

func TestEngine_RandomSeedIsRecorded(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 0
	cfg.Generations = 5
	e, res := runEngine(t, smallProblem(t), cfg)
	assert.NotZero(t, e.Seed())
	assert.Equal(t, e.Seed(), res.Seed)

	// 用记录下来的种子可以复现
	cfg.Seed = res.Seed
	_, again := runEngine(t, smallProblem(t), cfg)
	assert.Equal(t, res.Genes, again.Genes)
}

func TestEngine_BestNeverDropsWithoutVariation(t *testing.T) {
	p := randomProblem(t, 50, 200, 11)
	for _, replacement := range []string{evolution.ReplacementSteadyState, evolution.ReplacementGenerational} {
		t.Run(replacement, func(t *testing.T) {
			cfg := testConfig()
			cfg.CrossoverRate = 0
			cfg.MutationRate = 0
			cfg.Elite = 1
			cfg.Replacement = replacement

			_, res := runEngine(t, p, cfg)
			assert.GreaterOrEqual(t, res.Final.Best, res.Initial.Best)
			assert.Equal(t, res.Final.Best, res.Quality)
		})
	}
}

func TestEngine_SteadyStateBestIsMonotonic(t *testing.T) {
	p := randomProblem(t, 60, 250, 5)
	cfg := testConfig()
	cfg.Generations = 200
	cfg.ReportInterval = 1

	_, res := runEngine(t, p, cfg)
	require.Len(t, res.History, 200)
	prev := res.Initial.Best
	for _, snap := range res.History {
		require.GreaterOrEqual(t, snap.Best, prev, "generation %d", snap.Generation)
		prev = snap.Best
	}
}

func TestEngine_ReportsEveryInterval(t *testing.T) {
	cfg := testConfig()
	cfg.Generations = 35

	var generations []int
	reporter := evolution.ReporterFunc(func(_ context.Context, s evolution.Snapshot) {
		generations = append(generations, s.Generation)
	})
	_, res := runEngine(t, smallProblem(t), cfg, evolution.WithReporter(reporter))

	assert.Equal(t, []int{10, 20, 30}, generations)
	require.Len(t, res.History, 3)
	assert.Equal(t, 30, res.History[2].Generation)
}

func TestEngine_CustomStrategies(t *testing.T) {
	p := smallProblem(t)
	improved := 0
	improver := improverFunc(func(*evolution.Individual) { improved++ })

	cfg := testConfig()
	cfg.Generations = 20
	cfg.Replacement = evolution.ReplacementGenerational
	_, res := runEngine(t, p, cfg,
		evolution.WithImprover(improver),
		evolution.WithGate(evolution.AfterGeneration(10)),
		evolution.WithRand(rand.New(rand.NewPCG(1, 2))),
	)
	assert.Positive(t, improved)
	assert.LessOrEqual(t, res.Quality, 20)
}

type improverFunc func(*evolution.Individual)

func (f improverFunc) Improve(ind *evolution.Individual) { f(ind) }

func TestEngine_ExprGate(t *testing.T) {
	cfg := testConfig()
	cfg.ImproveWhen = "generation > 5 && best < 100"
	_, res := runEngine(t, smallProblem(t), cfg)
	assert.Equal(t, 20, res.Quality)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	p := smallProblem(t)
	cases := []struct {
		name   string
		tweak  func(*evolution.Config)
		target error
	}{
		{"zero population", func(c *evolution.Config) { c.PopulationSize = 0 }, xerrors.ErrInvalidPopulation},
		{"zero generations", func(c *evolution.Config) { c.Generations = 0 }, xerrors.ErrInvalidGenerations},
		{"crossover above one", func(c *evolution.Config) { c.CrossoverRate = 1.5 }, xerrors.ErrInvalidRate},
		{"negative mutation", func(c *evolution.Config) { c.MutationRate = -0.1 }, xerrors.ErrInvalidRate},
		{"unknown selection", func(c *evolution.Config) { c.Selection = "tournament" }, xerrors.ErrUnknownStrategy},
		{"elite fills population", func(c *evolution.Config) { c.Elite = c.PopulationSize }, xerrors.ErrInvalidParameter},
		{"bad gate", func(c *evolution.Config) { c.ImproveWhen = "generation >" }, xerrors.ErrInvalidGate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.tweak(&cfg)
			_, err := evolution.New(p, cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.target), "got %v", err)
		})
	}

	_, err := evolution.New(nil, testConfig())
	assert.True(t, errors.Is(err, xerrors.ErrEmptyCatalogue))
}

func TestEngine_RandomInstanceNearOptimum(t *testing.T) {
	p := randomProblem(t, 30, 100, 2024)
	optimum, _, err := optimization.ExactKnapsack(p.Items(), p.Capacity())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.PopulationSize = 60
	cfg.Generations = 300
	cfg.Selection = evolution.SelectionElitist
	cfg.Crossover = evolution.CrossoverAlternating
	cfg.Replacement = evolution.ReplacementGenerational
	cfg.Elite = 2
	e, res := runEngine(t, p, cfg)

	assert.GreaterOrEqual(t, float64(res.Quality), 0.85*float64(optimum))
	assert.LessOrEqual(t, res.Quality, optimum)
	requireFeasiblePopulation(t, p, e.Population())
}
