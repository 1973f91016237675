// Package catalog 负责物品目录的随机生成与 JSON 读写。
//
// 目录文件格式：
//
//	{"capacity": 250, "seed": 42, "items": [{"value": 12, "weight": 7}, ...]}
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wyfcoding/knapsack/algorithm/evolution"
	"github.com/wyfcoding/knapsack/xerrors"
)

// Catalogue 是可序列化的背包实例。
type Catalogue struct {
	Capacity int              `json:"capacity"`
	Seed     uint64           `json:"seed,omitempty"` // 生成时使用的种子，手写的目录为 0
	Items    []evolution.Item `json:"items"`
}

// Spec 描述随机目录的规模与取值范围（闭区间）。
type Spec struct {
	Items     int
	Capacity  int
	Seed      uint64
	MinValue  int
	MaxValue  int
	MinWeight int
	MaxWeight int
}

// DefaultSpec 默认实例：100 件物品，价值 2..30，重量 1..25，容量 250。
func DefaultSpec() Spec {
	return Spec{Items: 100, Capacity: 250, MinValue: 2, MaxValue: 30, MinWeight: 1, MaxWeight: 25}
}

func (s Spec) validate() error {
	if s.Items <= 0 {
		return xerrors.ErrEmptyCatalogue.Derive("items=%d", s.Items)
	}
	if s.Capacity <= 0 {
		return xerrors.ErrInvalidCapacity.Derive("capacity=%d", s.Capacity)
	}
	if s.MinValue <= 0 || s.MaxValue < s.MinValue {
		return xerrors.ErrInvalidItem.Derive("value range [%d, %d]", s.MinValue, s.MaxValue)
	}
	if s.MinWeight <= 0 || s.MaxWeight < s.MinWeight {
		return xerrors.ErrInvalidItem.Derive("weight range [%d, %d]", s.MinWeight, s.MaxWeight)
	}
	return nil
}

// Generate 按 Spec 生成目录。Seed 为 0 时随机选取并记录在返回值中，同一种子总是得到同一目录。
func Generate(spec Spec) (*Catalogue, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	seed := evolution.ResolveSeed(spec.Seed)
	rng := evolution.NewRand(seed)

	items := make([]evolution.Item, spec.Items)
	for i := range items {
		items[i] = evolution.Item{
			Value:  spec.MinValue + rng.IntN(spec.MaxValue-spec.MinValue+1),
			Weight: spec.MinWeight + rng.IntN(spec.MaxWeight-spec.MinWeight+1),
		}
	}
	return &Catalogue{Capacity: spec.Capacity, Seed: seed, Items: items}, nil
}

// Problem 把目录转换为可求解的问题，同时完成物品校验。
func (c *Catalogue) Problem() (*evolution.Problem, error) {
	return evolution.NewProblem(c.Items, c.Capacity)
}

// TotalWeight 返回全部物品的重量之和。
func (c *Catalogue) TotalWeight() int {
	total := 0
	for _, it := range c.Items {
		total += it.Weight
	}
	return total
}

// Load 从 JSON 文件读取目录并校验。
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.ErrNotFound, "read catalogue")
	}

	c := &Catalogue{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, xerrors.ErrMalformedCatalogue.Derive("%s", path).WithCause(err)
	}
	if _, err := c.Problem(); err != nil {
		return nil, fmt.Errorf("catalogue %s: %w", path, err)
	}

	slog.Debug("catalogue loaded", "path", path, "items", len(c.Items), "capacity", c.Capacity)
	return c, nil
}

// Save 把目录写成带缩进的 JSON，必要时创建父目录。
func (c *Catalogue) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return xerrors.WrapInternal(err, "encode catalogue")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return xerrors.WrapInternal(err, "create catalogue directory")
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return xerrors.WrapInternal(err, "write catalogue")
	}

	slog.Debug("catalogue saved", "path", path, "items", len(c.Items))
	return nil
}
