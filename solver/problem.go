package solver

import (
	"log/slog"

	"github.com/wyfcoding/knapsack/catalog"
	"github.com/wyfcoding/knapsack/config"
	"github.com/wyfcoding/knapsack/xerrors"
)

// LoadCatalogue 按配置读取目录文件，或随机生成目录（并按需另存）。
// 配置中非零的容量覆盖目录文件里的容量；随机生成且未配置容量时使用默认容量。
func LoadCatalogue(pc config.ProblemConfig) (*catalog.Catalogue, error) {
	if pc.Catalog != "" {
		c, err := catalog.Load(pc.Catalog)
		if err != nil {
			return nil, err
		}
		if pc.Capacity > 0 && pc.Capacity != c.Capacity {
			slog.Info("catalogue capacity overridden", "file", c.Capacity, "configured", pc.Capacity)
			c.Capacity = pc.Capacity
		}
		return c, nil
	}

	capacity := pc.Capacity
	if capacity == 0 {
		capacity = catalog.DefaultSpec().Capacity
	}
	c, err := catalog.Generate(catalog.Spec{
		Items:     pc.Items,
		Capacity:  capacity,
		Seed:      pc.Seed,
		MinValue:  pc.MinValue,
		MaxValue:  pc.MaxValue,
		MinWeight: pc.MinWeight,
		MaxWeight: pc.MaxWeight,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("catalogue generated", "items", len(c.Items), "capacity", c.Capacity, "seed", c.Seed)

	if pc.Save != "" {
		if err := c.Save(pc.Save); err != nil {
			return nil, xerrors.Wrap(err, xerrors.ErrInternal, "save generated catalogue")
		}
	}
	return c, nil
}

// RequestFromConfig 把全局配置翻译为一次求解请求。
func RequestFromConfig(conf *config.Config) Request {
	return Request{
		Config:   conf.Solver,
		Runs:     conf.Run.Runs,
		Parallel: conf.Run.Parallel,
		Verify:   conf.Run.Verify,
		History:  conf.Run.History,
	}
}
