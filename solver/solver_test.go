package solver

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/knapsack/algorithm/evolution"
	"github.com/wyfcoding/knapsack/catalog"
	"github.com/wyfcoding/knapsack/config"
	"github.com/wyfcoding/knapsack/metrics"
	"github.com/wyfcoding/knapsack/xerrors"
)

func smallProblem(t *testing.T) *evolution.Problem {
	t.Helper()
	p, err := evolution.NewProblem([]evolution.Item{{Value: 10, Weight: 5}, {Value: 8, Weight: 4}, {Value: 6, Weight: 3}, {Value: 4, Weight: 2}, {Value: 2, Weight: 1}}, 10)
	require.NoError(t, err)
	return p
}

func generated(t *testing.T, n, capacity int, seed uint64) *evolution.Problem {
	t.Helper()
	spec := catalog.DefaultSpec()
	spec.Items, spec.Capacity, spec.Seed = n, capacity, seed
	c, err := catalog.Generate(spec)
	require.NoError(t, err)
	p, err := c.Problem()
	require.NoError(t, err)
	return p
}

func quickConfig(seed uint64) evolution.Config {
	cfg := evolution.DefaultConfig()
	cfg.PopulationSize = 20
	cfg.Generations = 150
	cfg.ImproveAfter = 0
	cfg.Seed = seed
	return cfg
}

func fixedID(id string) Option {
	return WithRunID(func() string { return id })
}

func TestSolve_MultiStartFindsOptimum(t *testing.T) {
	m := metrics.NewMetrics("solver-test")
	s := New(WithMetrics(m), fixedID("run-1"))

	sol, err := s.Solve(context.Background(), smallProblem(t), Request{Config: quickConfig(7), Runs: 4, Verify: true})
	require.NoError(t, err)

	assert.Equal(t, "run-1", sol.RunID)
	assert.Equal(t, uint64(7), sol.Seed)
	require.Len(t, sol.Runs, 4)
	assert.Equal(t, 20, sol.Best.Quality)
	require.NotNil(t, sol.Optimum)
	assert.Equal(t, 20, *sol.Optimum)
	assert.InDelta(t, 0, *sol.Gap, 1e-9)
	assert.Nil(t, sol.Best.History)

	seeds := make(map[uint64]bool)
	for i, r := range sol.Runs {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, RunSeed(7, i), r.Seed)
		seeds[r.Seed] = true
		assert.LessOrEqual(t, r.Quality, sol.Best.Quality)
	}
	assert.Len(t, seeds, 4)
	assert.Equal(t, uint64(7), sol.Runs[0].Seed)

	assert.InDelta(t, 1, testutil.ToFloat64(m.SolvesTotal.WithLabelValues("steady", "ok")), 1e-9)
	assert.InDelta(t, 4*150, testutil.ToFloat64(m.Generations.WithLabelValues("steady")), 1e-9)
}

func TestSolve_DeterministicAcrossParallelism(t *testing.T) {
	p := generated(t, 60, 150, 3)
	req := Request{Config: quickConfig(99), Runs: 5, History: true}
	req.Config.Generations = 80

	a, err := New(fixedID("a")).Solve(context.Background(), p, req)
	require.NoError(t, err)

	req.Parallel = 1
	b, err := New(fixedID("b")).Solve(context.Background(), p, req)
	require.NoError(t, err)

	assert.Equal(t, a.BestRun, b.BestRun)
	assert.Equal(t, a.Best.Genes, b.Best.Genes)
	for i := range a.Runs {
		assert.Equal(t, a.Runs[i].Quality, b.Runs[i].Quality)
	}
	assert.Len(t, a.Best.History, 8)
}

func TestSolve_TiesPickLowestRun(t *testing.T) {
	sol, err := New(fixedID("t")).Solve(context.Background(), smallProblem(t), Request{Config: quickConfig(1), Runs: 6})
	require.NoError(t, err)
	for i := 0; i < sol.BestRun; i++ {
		assert.Less(t, sol.Runs[i].Quality, sol.Best.Quality)
	}
}

func TestSolve_Errors(t *testing.T) {
	s := New(fixedID("e"))
	ctx := context.Background()

	_, err := s.Solve(ctx, nil, Request{Config: quickConfig(1)})
	assert.True(t, errors.Is(err, xerrors.ErrEmptyCatalogue))

	_, err = s.Solve(ctx, smallProblem(t), Request{Config: quickConfig(1), Runs: MaxRuns + 1})
	assert.True(t, errors.Is(err, xerrors.ErrInvalidRuns))

	bad := quickConfig(1)
	bad.MutationRate = 2
	_, err = s.Solve(ctx, smallProblem(t), Request{Config: bad})
	assert.True(t, errors.Is(err, xerrors.ErrInvalidRate))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Solve(cancelled, smallProblem(t), Request{Config: quickConfig(1), Runs: 2})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoadCatalogue(t *testing.T) {
	pc := config.Default().Problem
	pc.Items = 15
	pc.Seed = 11
	pc.Save = filepath.Join(t.TempDir(), "cat.json")

	generatedCat, err := LoadCatalogue(pc)
	require.NoError(t, err)
	require.Len(t, generatedCat.Items, 15)
	assert.Equal(t, 250, generatedCat.Capacity)

	kept, err := LoadCatalogue(config.ProblemConfig{Catalog: pc.Save})
	require.NoError(t, err)
	assert.Equal(t, 250, kept.Capacity)

	loaded, err := LoadCatalogue(config.ProblemConfig{Catalog: pc.Save, Capacity: 33})
	require.NoError(t, err)
	assert.Equal(t, generatedCat.Items, loaded.Items)
	assert.Equal(t, 33, loaded.Capacity)
}

func TestRequestFromConfig(t *testing.T) {
	conf := config.Default()
	conf.Run.Runs = 3
	conf.Run.Verify = true
	req := RequestFromConfig(&conf)
	assert.Equal(t, 3, req.Runs)
	assert.True(t, req.Verify)
	assert.Equal(t, conf.Solver, req.Config)
}

func TestSolve_ProgressReporterSeesEveryRestart(t *testing.T) {
	var reports atomic.Int32
	progress := evolution.ReporterFunc(func(context.Context, evolution.Snapshot) { reports.Add(1) })
	s := New(WithProgress(progress), fixedID("run-p"))

	cfg := quickConfig(11)
	cfg.Generations = 35
	_, err := s.Solve(context.Background(), smallProblem(t), Request{Config: cfg, Runs: 2})
	require.NoError(t, err)
	// 每次重启在第 10、20、30 代各上报一次
	assert.Equal(t, int32(6), reports.Load())
}

func TestSolve_RestartPanicBecomesInternalError(t *testing.T) {
	m := metrics.NewMetrics("solver-panic-test")
	boom := evolution.ReporterFunc(func(context.Context, evolution.Snapshot) { panic("reporter exploded") })
	s := New(WithProgress(boom), WithMetrics(m), fixedID("run-panic"))

	cfg := quickConfig(5)
	cfg.Generations = 20
	_, err := s.Solve(context.Background(), smallProblem(t), Request{Config: cfg, Runs: 3})
	require.Error(t, err)

	var xe *xerrors.Error
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, xerrors.ErrInternal, xe.Type)
	assert.Equal(t, 500, xe.HTTPStatus())
	assert.Contains(t, err.Error(), "reporter exploded")
	assert.InDelta(t, 1, testutil.ToFloat64(m.SolvesTotal.WithLabelValues("steady", "error")), 1e-9)
}
