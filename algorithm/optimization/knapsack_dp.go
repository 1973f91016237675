package optimization

import (
	"log/slog"
	"time"

	"github.com/wyfcoding/knapsack/algorithm/evolution"
	"github.com/wyfcoding/knapsack/xerrors"
)

// MaxDPCells 动态规划表的规模上限（物品数 × (容量+1)）。
// 超过此阈值时精确求解的内存与耗时不可接受，直接拒绝。
const MaxDPCells = 50_000_000

// ErrProblemTooLarge 问题规模超过精确求解上限。
var ErrProblemTooLarge = xerrors.New(xerrors.ErrLimitExceeded, 429101, "problem too large for exact solver", "items × capacity exceeds MaxDPCells", nil)

// ExactKnapsack 使用经典的 0/1 背包动态规划求出最优总价值及对应物品下标。
// 它是遗传算法的基准：用于测试校验以及在小规模实例上报告启发式结果与最优值的差距。
// 复杂度 O(n·C) 时间，O(n·C) 位空间用于回溯。
func ExactKnapsack(items []evolution.Item, capacity int) (best int, chosen []int, err error) {
	start := time.Now()
	n := len(items)
	if n == 0 {
		return 0, nil, xerrors.ErrEmptyCatalogue.Derive("catalogue has 0 items")
	}
	if capacity <= 0 {
		return 0, nil, xerrors.ErrInvalidCapacity.Derive("capacity=%d", capacity)
	}
	if n*(capacity+1) > MaxDPCells {
		return 0, nil, ErrProblemTooLarge.Derive("items=%d capacity=%d", n, capacity)
	}

	// dp[w] 表示容量 w 下的最优价值；take[i][w] 记录第 i 件物品在容量 w 时是否被选中。
	dp := make([]int, capacity+1)
	take := make([][]bool, n)
	for i, it := range items {
		take[i] = make([]bool, capacity+1)
		for w := capacity; w >= it.Weight; w-- {
			if v := dp[w-it.Weight] + it.Value; v > dp[w] {
				dp[w] = v
				take[i][w] = true
			}
		}
	}

	// 回溯选中的物品。
	w := capacity
	for i := n - 1; i >= 0; i-- {
		if take[i][w] {
			chosen = append(chosen, i)
			w -= items[i].Weight
		}
	}
	for l, r := 0, len(chosen)-1; l < r; l, r = l+1, r-1 {
		chosen[l], chosen[r] = chosen[r], chosen[l]
	}

	slog.Debug("ExactKnapsack completed", "items", n, "capacity", capacity, "optimum", dp[capacity], "duration", time.Since(start))
	return dp[capacity], chosen, nil
}
