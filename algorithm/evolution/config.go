package evolution

import (
	"slices"

	"github.com/wyfcoding/knapsack/xerrors"
)

// 策略名称。
const (
	SelectionRoulette = "roulette"
	SelectionElitist  = "elitist"

	CrossoverSegment     = "segment"
	CrossoverAlternating = "alternating"

	MutationRollback = "rollback"
	MutationInPlace  = "inplace"

	ReplacementSteadyState  = "steady"
	ReplacementGenerational = "generational"

	InitSparse = "sparse"
	InitGreedy = "greedy"
)

// Config 一次运行的全部参数，运行期间不会被引擎修改。
type Config struct {
	PopulationSize int     `mapstructure:"population_size" json:"population_size" validate:"gt=0"`
	Generations    int     `mapstructure:"generations"     json:"generations"     validate:"gt=0"`
	CrossoverRate  float64 `mapstructure:"crossover_rate"  json:"crossover_rate"  validate:"gte=0,lte=1"`
	MutationRate   float64 `mapstructure:"mutation_rate"   json:"mutation_rate"   validate:"gte=0,lte=1"`
	Seed           uint64  `mapstructure:"seed"            json:"seed"`            // 0 表示随机种子
	ReportInterval int     `mapstructure:"report_interval" json:"report_interval" validate:"gte=0"`
	TopK           int     `mapstructure:"top_k"           json:"top_k"           validate:"gte=0"`
	Elite          int     `mapstructure:"elite"           json:"elite"           validate:"gte=0"`

	Selection      string `mapstructure:"selection"      json:"selection"      validate:"omitempty,oneof=roulette elitist"`
	Crossover      string `mapstructure:"crossover"      json:"crossover"      validate:"omitempty,oneof=segment alternating"`
	Mutation       string `mapstructure:"mutation"       json:"mutation"       validate:"omitempty,oneof=rollback inplace"`
	Replacement    string `mapstructure:"replacement"    json:"replacement"    validate:"omitempty,oneof=steady generational"`
	Initialization string `mapstructure:"initialization" json:"initialization" validate:"omitempty,oneof=sparse greedy"`

	// ImproveAfter 局部改进仅在代数大于该值后执行，0 表示每代都执行。
	ImproveAfter int `mapstructure:"improve_after" json:"improve_after" validate:"gte=0"`
	// ImproveWhen 非空时以表达式门控局部改进，优先于 ImproveAfter。
	ImproveWhen string `mapstructure:"improve_when" json:"improve_when"`
}

// DefaultConfig 返回默认参数：稳态替换、轮盘赌、单子代交叉、第 200 代后局部改进。
func DefaultConfig() Config {
	return Config{
		PopulationSize: 100,
		Generations:    1000,
		CrossoverRate:  0.25,
		MutationRate:   0.05,
		ReportInterval: DefaultReportInterval,
		TopK:           DefaultTopK,
		Selection:      SelectionRoulette,
		Crossover:      CrossoverSegment,
		Mutation:       MutationRollback,
		Replacement:    ReplacementSteadyState,
		Initialization: InitSparse,
		ImproveAfter:   200,
	}
}

// Validate 启动前快速失败，返回 *xerrors.Error。
func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return xerrors.ErrInvalidPopulation.Derive("population_size=%d", c.PopulationSize)
	}
	if c.Generations <= 0 {
		return xerrors.ErrInvalidGenerations.Derive("generations=%d", c.Generations)
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return xerrors.ErrInvalidRate.Derive("crossover_rate=%v", c.CrossoverRate)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return xerrors.ErrInvalidRate.Derive("mutation_rate=%v", c.MutationRate)
	}
	if c.ReportInterval < 0 || c.TopK < 0 || c.Elite < 0 || c.ImproveAfter < 0 {
		return xerrors.ErrInvalidParameter.Derive("report_interval, top_k, elite and improve_after must be non-negative")
	}
	if c.Elite >= c.PopulationSize && c.Elite > 0 {
		return xerrors.ErrInvalidParameter.Derive("elite=%d must be below population_size=%d", c.Elite, c.PopulationSize)
	}

	checks := []struct {
		field, value string
		allowed      []string
	}{
		{"selection", c.Selection, []string{SelectionRoulette, SelectionElitist}},
		{"crossover", c.Crossover, []string{CrossoverSegment, CrossoverAlternating}},
		{"mutation", c.Mutation, []string{MutationRollback, MutationInPlace}},
		{"replacement", c.Replacement, []string{ReplacementSteadyState, ReplacementGenerational}},
		{"initialization", c.Initialization, []string{InitSparse, InitGreedy}},
	}
	for _, chk := range checks {
		if chk.value == "" {
			continue
		}
		if !slices.Contains(chk.allowed, chk.value) {
			return xerrors.ErrUnknownStrategy.Derive("%s=%q, allowed %v", chk.field, chk.value, chk.allowed)
		}
	}
	return nil
}

// withDefaults 用默认值补齐未填写的策略与间隔。
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ReportInterval == 0 {
		c.ReportInterval = d.ReportInterval
	}
	if c.TopK == 0 {
		c.TopK = d.TopK
	}
	if c.Selection == "" {
		c.Selection = d.Selection
	}
	if c.Crossover == "" {
		c.Crossover = d.Crossover
	}
	if c.Mutation == "" {
		c.Mutation = d.Mutation
	}
	if c.Replacement == "" {
		c.Replacement = d.Replacement
	}
	if c.Initialization == "" {
		c.Initialization = d.Initialization
	}
	return c
}
