package evolution

import "slices"

// Improver 对个体做确定性的局部改进，不消耗随机数。
type Improver interface {
	Improve(ind *Individual)
}

// GreedyImprover 贪心修补：按目录顺序单趟扫描，复杂度 O(n²)。
//   - 未选中的物品若放得下就放入；
//   - 已选中的物品，在所有未选中且替换后不超重的物品中找单位重量价值最高者，
//     若高于当前物品则互换。
//
// 质量在处理完每个下标后按增量总量更新，不回头重扫。
// 对起始可行的个体，若整趟下来质量反而下降，则恢复起始基因，因此改进从不使质量变差。
type GreedyImprover struct{}

// Improve 实现 Improver。
func (GreedyImprover) Improve(ind *Individual) {
	problem := ind.problem
	items := problem.items

	value, weight := ind.Value(), ind.Weight()
	startQuality := ind.Quality()
	startFeasible := problem.Fits(weight)
	var snapshot []bool
	if startFeasible {
		snapshot = slices.Clone(ind.genes)
	}

	for i, it := range items {
		if !ind.genes[i] {
			if problem.Fits(weight + it.Weight) {
				ind.genes[i] = true
				weight += it.Weight
				value += it.Value
			}
		} else {
			best := i
			bestRatio := it.Ratio()
			without := weight - it.Weight

			for j, cand := range items {
				if ind.genes[j] || !problem.Fits(without+cand.Weight) {
					continue
				}
				if r := cand.Ratio(); r > bestRatio {
					best, bestRatio = j, r
				}
			}

			if best != i {
				ind.genes[i] = false
				ind.genes[best] = true
				weight += items[best].Weight - it.Weight
				value += items[best].Value - it.Value
			}
		}

		ind.record(value, weight)
	}

	if startFeasible && ind.quality < startQuality {
		copy(ind.genes, snapshot)
		ind.evaluate()
	}
}
