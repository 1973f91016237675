package evolution

import "math/rand/v2"

// Mutator 以一定概率对个体做变异，返回基因是否真的发生了改变。
type Mutator interface {
	Mutate(ind *Individual, rng *rand.Rand) bool
}

// RollbackMutator 试探式变异：以 Rate 的概率翻转一位均匀抽取的基因，
// 若翻转后超重则放弃该变异，原个体基因保持不变，但质量仍会重新评估。
type RollbackMutator struct {
	Rate float64
}

// Mutate 实现 Mutator。
func (m RollbackMutator) Mutate(ind *Individual, rng *rand.Rand) bool {
	if rng.Float64() >= m.Rate {
		return false
	}

	gene := rng.IntN(ind.Len())
	trial := ind.Clone()
	trial.flip(gene)
	if !trial.Feasible() {
		ind.evaluate()
		return false
	}

	ind.genes[gene] = trial.genes[gene]
	ind.record(trial.value, trial.weight)
	return true
}

// InPlaceMutator 原地变异：以 Rate 的概率直接翻转一位基因，不做可行性检查也不回滚。
type InPlaceMutator struct {
	Rate float64
}

// Mutate 实现 Mutator。
func (m InPlaceMutator) Mutate(ind *Individual, rng *rand.Rand) bool {
	if rng.Float64() >= m.Rate {
		return false
	}

	ind.flip(rng.IntN(ind.Len()))
	ind.evaluate()
	return true
}
