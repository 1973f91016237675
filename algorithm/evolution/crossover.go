package evolution

import "math/rand/v2"

// Crossover 由两个父代生成一个或多个子代；子代在返回前已完成评估。
type Crossover interface {
	Cross(p1, p2 *Individual, rng *rand.Rand) []*Individual
}

// segments 是三个切点划分出的四段：[0,a) [a,b) [b,c) [c,n)。
type segments struct {
	a, b, c int
}

// drawSegments 依次在剩余区间内均匀抽取三个切点，保证 0 <= a <= b <= c < n。
func drawSegments(n int, rng *rand.Rand) segments {
	a := rng.IntN(n)
	b := a + rng.IntN(n-a)
	c := b + rng.IntN(n-b)
	return segments{a: a, b: b, c: c}
}

// of 返回位置 i 所在段的编号 0..3。
func (s segments) of(i int) int {
	switch {
	case i < s.a:
		return 0
	case i < s.b:
		return 1
	case i < s.c:
		return 2
	default:
		return 3
	}
}

// DefaultCrossoverAttempts 单子代交叉在子代超重时的最大构造次数。
const DefaultCrossoverAttempts = 4

// SegmentCrossover 三点四段交叉，单子代：每段独立掷硬币决定来自哪个父代。
// 子代超重时以同一组切点重新掷硬币，最多 Attempts 次；仍超重则保留最后一次结果，其质量评估为 0。
type SegmentCrossover struct {
	Attempts int
}

// Cross 实现 Crossover。
func (x SegmentCrossover) Cross(p1, p2 *Individual, rng *rand.Rand) []*Individual {
	problem := p1.problem
	n := p1.Len()
	seg := drawSegments(n, rng)

	attempts := x.Attempts
	if attempts <= 0 {
		attempts = DefaultCrossoverAttempts
	}

	genes := make([]bool, n)
	for range attempts {
		var fromSecond [4]bool
		for s := range fromSecond {
			fromSecond[s] = rng.IntN(2) == 0
		}
		for i := range genes {
			if fromSecond[seg.of(i)] {
				genes[i] = p2.genes[i]
			} else {
				genes[i] = p1.genes[i]
			}
		}
		if _, weight := problem.Evaluate(genes); problem.Fits(weight) {
			break
		}
	}

	return []*Individual{problem.individualFrom(genes)}
}

// AlternatingCrossover 三点四段交叉，双子代：子代一取父代一的第 1、3 段与父代二的第 2、4 段，子代二互补。
// 不做可行性修复，交由变异、局部改进与评估环节处理。
type AlternatingCrossover struct{}

// Cross 实现 Crossover。
func (AlternatingCrossover) Cross(p1, p2 *Individual, rng *rand.Rand) []*Individual {
	problem := p1.problem
	n := p1.Len()
	seg := drawSegments(n, rng)

	g1 := make([]bool, n)
	g2 := make([]bool, n)
	for i := range n {
		if seg.of(i)%2 == 0 {
			g1[i], g2[i] = p1.genes[i], p2.genes[i]
		} else {
			g1[i], g2[i] = p2.genes[i], p1.genes[i]
		}
	}

	return []*Individual{problem.individualFrom(g1), problem.individualFrom(g2)}
}
