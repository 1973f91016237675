package evolution

import (
	"math/rand/v2"
	"slices"
)

// Population 固定规模的个体序列。顺序本身没有语义，仅在排名时才有意义。
type Population []*Individual

// Stats 是种群在某一时刻的统计信息。
type Stats struct {
	Best     int     `json:"best"`
	Worst    int     `json:"worst"`
	Mean     float64 `json:"mean"`
	Feasible int     `json:"feasible"`
}

// BestIndex 返回质量最高个体的下标，并列时取最靠前者；空种群返回 -1。
func (p Population) BestIndex() int {
	best := -1
	for i, ind := range p {
		if best < 0 || ind.Quality() > p[best].Quality() {
			best = i
		}
	}
	return best
}

// Best 返回质量最高的个体。
func (p Population) Best() *Individual {
	if i := p.BestIndex(); i >= 0 {
		return p[i]
	}
	return nil
}

// WorstIndex 返回质量最低个体的下标，并列时取最靠前者。
func (p Population) WorstIndex() int {
	worst := -1
	for i, ind := range p {
		if worst < 0 || ind.Quality() < p[worst].Quality() {
			worst = i
		}
	}
	return worst
}

// TotalQuality 返回种群质量之和。
func (p Population) TotalQuality() int {
	total := 0
	for _, ind := range p {
		total += ind.Quality()
	}
	return total
}

// Ranked 返回按质量降序稳定排序后的新切片，个体本身不被复制。
func (p Population) Ranked() Population {
	ranked := slices.Clone(p)
	slices.SortStableFunc(ranked, func(a, b *Individual) int {
		return b.Quality() - a.Quality()
	})
	return ranked
}

// Clone 深拷贝整个种群。
func (p Population) Clone() Population {
	out := make(Population, len(p))
	for i, ind := range p {
		out[i] = ind.Clone()
	}
	return out
}

// Stats 计算当前统计信息。
func (p Population) Stats() Stats {
	if len(p) == 0 {
		return Stats{}
	}
	s := Stats{Best: p[0].Quality(), Worst: p[0].Quality()}
	total := 0
	for _, ind := range p {
		q := ind.Quality()
		total += q
		s.Best = max(s.Best, q)
		s.Worst = min(s.Worst, q)
		if ind.Feasible() {
			s.Feasible++
		}
	}
	s.Mean = float64(total) / float64(len(p))
	return s
}

// Initializer 负责生成初始种群，保证每个初始个体都可行。
type Initializer interface {
	Initialize(problem *Problem, size int, rng *rand.Rand) Population
}

// SparseInitializer 稀疏随机初始化：每个个体只选中一件随机物品。
// 只在单件即可放入背包的物品中抽取；若没有任何物品放得下，个体保持为空。
type SparseInitializer struct{}

// Initialize 实现 Initializer。
func (SparseInitializer) Initialize(problem *Problem, size int, rng *rand.Rand) Population {
	fitting := make([]int, 0, problem.Len())
	for i, it := range problem.items {
		if problem.Fits(it.Weight) {
			fitting = append(fitting, i)
		}
	}

	pop := make(Population, size)
	for k := range pop {
		genes := make([]bool, problem.Len())
		if len(fitting) > 0 {
			genes[fitting[rng.IntN(len(fitting))]] = true
		}
		pop[k] = problem.individualFrom(genes)
	}
	return pop
}

// GreedyInitializer 贪心随机填充：每个个体按一份独立的随机物品顺序，能放则放。
type GreedyInitializer struct{}

// Initialize 实现 Initializer。
func (GreedyInitializer) Initialize(problem *Problem, size int, rng *rand.Rand) Population {
	pop := make(Population, size)
	for k := range pop {
		genes := make([]bool, problem.Len())
		weight := 0
		for _, i := range rng.Perm(problem.Len()) {
			if w := problem.items[i].Weight; problem.Fits(weight + w) {
				genes[i] = true
				weight += w
			}
		}
		pop[k] = problem.individualFrom(genes)
	}
	return pop
}
