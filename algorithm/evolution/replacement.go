package evolution

// Breeder 产生一批经过交叉、变异与（按门控）局部改进的子代。
// asexual 为 true 时，未命中交叉概率的父代会被复制后继续变异与改进；
// 为 false 时未命中交叉则本次不产生子代。
type Breeder func(asexual bool) []*Individual

// Replacement 决定子代如何进入种群，返回新种群以及进入种群的子代数量。
// 新种群规模始终等于原种群规模。
type Replacement interface {
	Replace(pop Population, breed Breeder) (Population, int)
}

// SteadyState 稳态替换：子代质量严格高于当前最差个体时替换之，否则丢弃。
type SteadyState struct{}

// Replace 实现 Replacement。
func (SteadyState) Replace(pop Population, breed Breeder) (Population, int) {
	accepted := 0
	for _, child := range breed(false) {
		worst := pop.WorstIndex()
		if child.Quality() > pop[worst].Quality() {
			pop[worst] = child
			accepted++
		}
	}
	return pop, accepted
}

// Generational 整代替换：反复选择与繁殖直到填满一个同规模的新种群，旧种群整体丢弃。
// Elite 大于 0 时先把旧种群中最好的 Elite 个复制进新种群。
type Generational struct {
	Elite int
}

// Replace 实现 Replacement。
func (g Generational) Replace(pop Population, breed Breeder) (Population, int) {
	size := len(pop)
	next := make(Population, 0, size)

	if g.Elite > 0 {
		for _, ind := range pop.Ranked()[:min(g.Elite, size)] {
			next = append(next, ind.Clone())
		}
	}
	elite := len(next)

	for len(next) < size {
		children := breed(true)
		if len(children) == 0 {
			// 正常情况下 asexual 繁殖总有产出，这里防止死循环
			next = append(next, pop[len(next)%size].Clone())
			continue
		}
		for _, child := range children {
			if len(next) == size {
				break
			}
			next = append(next, child)
		}
	}
	return next, size - elite
}
