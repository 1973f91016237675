package evolution

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// smallItems 五件物品，单位重量价值均为 2，容量 10 时最优价值为 20。
func smallItems() []Item {
	return []Item{{10, 5}, {8, 4}, {6, 3}, {4, 2}, {2, 1}}
}

func mustProblem(t *testing.T, items []Item, capacity int) *Problem {
	t.Helper()
	p, err := NewProblem(items, capacity)
	require.NoError(t, err)
	return p
}

// randomItems 与 catalog 包同样的取值范围，避免测试依赖外部包。
func randomItems(n int, seed uint64) []Item {
	rng := NewRand(seed)
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{Value: 2 + rng.IntN(29), Weight: 1 + rng.IntN(25)}
	}
	return items
}

func randomIndividual(p *Problem, seed uint64, density float64) *Individual {
	rng := NewRand(seed)
	genes := make([]bool, p.Len())
	for i := range genes {
		genes[i] = rng.Float64() < density
	}
	return p.individualFrom(genes)
}

// requireInvariants 校验可行性与价值两条不变量。
func requireInvariants(t *testing.T, ind *Individual) {
	t.Helper()
	value, weight := ind.problem.Evaluate(ind.genes)
	if weight > ind.problem.Capacity() {
		require.Equal(t, 0, ind.Quality(), "overweight individual must score 0")
	} else {
		require.Equal(t, value, ind.Quality(), "feasible individual must score its total value")
	}
	require.Len(t, ind.genes, ind.problem.Len())
}
