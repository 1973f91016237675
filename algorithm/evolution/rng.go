package evolution

import "math/rand/v2"

// NewRand 由种子构造确定性的 PCG 随机源；同一种子在任何平台上产生同一序列。
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// DeriveSeed 将父种子与流编号混合为新的 64 位种子（SplitMix64 终结器），
// 用于多次独立重启时派生互不相关的子种子。
func DeriveSeed(parent, stream uint64) uint64 {
	x := parent ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// ResolveSeed 0 表示“随机”，此时取一个新的随机种子并回传，便于复现。
func ResolveSeed(seed uint64) uint64 {
	for seed == 0 {
		seed = rand.Uint64()
	}
	return seed
}
