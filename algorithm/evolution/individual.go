package evolution

import (
	"slices"
	"strings"
)

// Individual 是一个候选解：长度等于目录长度的位向量，外加缓存的质量。
//
// 基因只能通过本包内的方法修改；任何修改要么立即重新评估，要么将缓存标记为过期，
// 读取 Quality/Value/Weight 时会先刷新过期缓存，因此外部永远读不到陈旧的质量。
type Individual struct {
	problem *Problem
	genes   []bool
	value   int
	weight  int
	quality int
	stale   bool
}

// evaluate 依据当前基因重新计算价值、重量与质量。
func (ind *Individual) evaluate() {
	ind.value, ind.weight = ind.problem.Evaluate(ind.genes)
	ind.quality = ind.problem.Score(ind.value, ind.weight)
	ind.stale = false
}

// record 以增量维护的总量直接写入缓存。
func (ind *Individual) record(value, weight int) {
	ind.value, ind.weight = value, weight
	ind.quality = ind.problem.Score(value, weight)
	ind.stale = false
}

func (ind *Individual) refresh() {
	if ind.stale {
		ind.evaluate()
	}
}

// flip 翻转第 i 位基因并使缓存过期。
func (ind *Individual) flip(i int) {
	ind.genes[i] = !ind.genes[i]
	ind.stale = true
}

// Quality 返回质量：可行时为总价值，超重时为 0。
func (ind *Individual) Quality() int {
	ind.refresh()
	return ind.quality
}

// Value 返回选中物品的总价值（不论是否可行）。
func (ind *Individual) Value() int {
	ind.refresh()
	return ind.value
}

// Weight 返回选中物品的总重量。
func (ind *Individual) Weight() int {
	ind.refresh()
	return ind.weight
}

// Feasible 判断总重量是否不超过容量。
func (ind *Individual) Feasible() bool {
	return ind.problem.Fits(ind.Weight())
}

// Len 返回基因长度。
func (ind *Individual) Len() int { return len(ind.genes) }

// Has 判断第 i 件物品是否被选中。
func (ind *Individual) Has(i int) bool { return ind.genes[i] }

// Genes 返回基因副本。
func (ind *Individual) Genes() []bool { return slices.Clone(ind.genes) }

// Items 返回被选中物品的下标，升序。
func (ind *Individual) Items() []int {
	out := make([]int, 0, len(ind.genes))
	for i, on := range ind.genes {
		if on {
			out = append(out, i)
		}
	}
	return out
}

// Clone 深拷贝个体，包括缓存状态。
func (ind *Individual) Clone() *Individual {
	c := *ind
	c.genes = slices.Clone(ind.genes)
	return &c
}

// String 以 0/1 串表示基因。
func (ind *Individual) String() string {
	var b strings.Builder
	b.Grow(len(ind.genes))
	for _, on := range ind.genes {
		if on {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
