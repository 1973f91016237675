package evolution

import "math/rand/v2"

// Selector 从种群中挑选一对父代。
type Selector interface {
	SelectPair(pop Population, rng *rand.Rand) (*Individual, *Individual)
}

// Preparer 由需要代内预计算的 Selector 实现。引擎在每代繁殖前调用一次 Prepare，
// 同一代内用于选择的种群不再变化。
type Preparer interface {
	Prepare(pop Population)
}

// RouletteSelector 轮盘赌选择：被选概率与质量成正比。
type RouletteSelector struct{}

// SelectPair 独立转两次轮盘。
func (s RouletteSelector) SelectPair(pop Population, rng *rand.Rand) (*Individual, *Individual) {
	return s.Pick(pop, rng), s.Pick(pop, rng)
}

// Pick 转一次轮盘。
// 总质量为 0（全体不可行）时退化为均匀随机，避免除零；
// 浮点累计误差导致走完仍未越过抽样值时返回最后一个个体，保证终止。
func (RouletteSelector) Pick(pop Population, rng *rand.Rand) *Individual {
	total := pop.TotalQuality()
	if total <= 0 {
		return pop[rng.IntN(len(pop))]
	}

	draw := rng.Float64()
	cumulative := 0.0
	for _, ind := range pop {
		cumulative += float64(ind.Quality()) / float64(total)
		if draw < cumulative {
			return ind
		}
	}
	return pop[len(pop)-1]
}

// DefaultTopK 精英偏置选择默认的精英池大小。
const DefaultTopK = 10

// ElitistSelector 精英偏置选择：一个父代从整个种群均匀抽取，另一个从前 TopK 名中均匀抽取。
// 排名在 Prepare 时计算一次并在本代内复用；未经 Prepare 的种群每次选择都重新排名。
type ElitistSelector struct {
	TopK int

	prepared Population
	ranked   Population
}

// Prepare 实现 Preparer。
func (s *ElitistSelector) Prepare(pop Population) {
	s.prepared = pop
	s.ranked = pop.Ranked()
}

// SelectPair 实现 Selector。
func (s *ElitistSelector) SelectPair(pop Population, rng *rand.Rand) (*Individual, *Individual) {
	k := s.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	k = min(k, len(pop))

	return pop[rng.IntN(len(pop))], s.ranking(pop)[rng.IntN(k)]
}

func (s *ElitistSelector) ranking(pop Population) Population {
	if len(pop) > 0 && len(pop) == len(s.prepared) && &pop[0] == &s.prepared[0] {
		return s.ranked
	}
	return pop.Ranked()
}
