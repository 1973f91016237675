package evolution

import (
	"slices"

	"github.com/wyfcoding/knapsack/xerrors"
)

// Item 背包问题中的一件物品，在目录中的下标即其身份。
type Item struct {
	Value  int `json:"value"`  // 价值，正整数。
	Weight int `json:"weight"` // 重量，正整数。
}

// Ratio 返回单位重量价值。
func (it Item) Ratio() float64 {
	return float64(it.Value) / float64(it.Weight)
}

// Problem 是一次求解的不可变问题实例：物品目录加容量上限。
// 它同时承担适应度评估器的角色。
type Problem struct {
	items    []Item
	capacity int
}

// NewProblem 校验并创建问题实例。目录为空、容量非正或物品价值/重量非正时快速失败。
func NewProblem(items []Item, capacity int) (*Problem, error) {
	if len(items) == 0 {
		return nil, xerrors.ErrEmptyCatalogue.Derive("catalogue has 0 items")
	}
	if capacity <= 0 {
		return nil, xerrors.ErrInvalidCapacity.Derive("capacity=%d", capacity)
	}
	for i, it := range items {
		if it.Value <= 0 || it.Weight <= 0 {
			return nil, xerrors.ErrInvalidItem.Derive("item %d: value=%d weight=%d", i, it.Value, it.Weight)
		}
	}

	return &Problem{items: slices.Clone(items), capacity: capacity}, nil
}

// Len 返回物品数量，即基因长度。
func (p *Problem) Len() int { return len(p.items) }

// Capacity 返回容量上限。
func (p *Problem) Capacity() int { return p.capacity }

// Item 返回第 i 件物品。
func (p *Problem) Item(i int) Item { return p.items[i] }

// Items 返回目录副本。
func (p *Problem) Items() []Item { return slices.Clone(p.items) }

// Evaluate 计算基因向量选中物品的总价值与总重量。
func (p *Problem) Evaluate(genes []bool) (value, weight int) {
	for i, on := range genes {
		if on {
			value += p.items[i].Value
			weight += p.items[i].Weight
		}
	}
	return value, weight
}

// Score 将总价值与总重量折算为质量：超重即为 0（硬约束而非罚函数），否则为总价值。
func (p *Problem) Score(value, weight int) int {
	if weight > p.capacity {
		return 0
	}
	return value
}

// Fits 判断给定重量是否在容量之内。
func (p *Problem) Fits(weight int) bool {
	return weight <= p.capacity
}

// NewIndividual 以给定基因创建个体并立即评估。
func (p *Problem) NewIndividual(genes []bool) (*Individual, error) {
	if len(genes) != len(p.items) {
		return nil, xerrors.ErrGenomeMismatch.Derive("genes=%d items=%d", len(genes), len(p.items))
	}
	return p.individualFrom(slices.Clone(genes)), nil
}

// individualFrom 接管 genes 的所有权，调用方不得再修改它。
func (p *Problem) individualFrom(genes []bool) *Individual {
	ind := &Individual{problem: p, genes: genes}
	ind.evaluate()
	return ind
}

// empty 返回全零基因的个体。
func (p *Problem) empty() *Individual {
	return p.individualFrom(make([]bool, len(p.items)))
}
