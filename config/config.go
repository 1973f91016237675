// Package config 提供了统一的配置加载与管理能力.
// 配置来源按优先级从高到低：命令行参数、KNAPSACK_ 前缀的环境变量、TOML 配置文件、内置默认值。
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wyfcoding/knapsack/algorithm/evolution"
	"github.com/wyfcoding/knapsack/logging"
)

// EnvPrefix 环境变量前缀，例如 KNAPSACK_SOLVER_GENERATIONS。
const EnvPrefix = "KNAPSACK"

// Config 全局顶级配置结构.
type Config struct {
	Version   string           `mapstructure:"version"   toml:"version"   json:"version"`
	Solver    evolution.Config `mapstructure:"solver"    toml:"solver"    json:"solver"`
	Problem   ProblemConfig    `mapstructure:"problem"   toml:"problem"   json:"problem"`
	Run       RunConfig        `mapstructure:"run"       toml:"run"       json:"run"`
	Log       LogConfig        `mapstructure:"log"       toml:"log"       json:"log"`
	Metrics   MetricsConfig    `mapstructure:"metrics"   toml:"metrics"   json:"metrics"`
	Tracing   TracingConfig    `mapstructure:"tracing"   toml:"tracing"   json:"tracing"`
	Snowflake SnowflakeConfig  `mapstructure:"snowflake" toml:"snowflake" json:"snowflake"`
	Server    ServerConfig     `mapstructure:"server"    toml:"server"    json:"server"`
	RateLimit RateLimitConfig  `mapstructure:"ratelimit" toml:"ratelimit" json:"ratelimit"`
}

// ProblemConfig 定义物品目录的来源。
// Catalog 非空时从 JSON 文件读取；否则按 Seed 与取值范围随机生成 Items 件物品。
// Capacity 为 0 时沿用目录文件中的容量，随机生成时取 250。
type ProblemConfig struct {
	Catalog   string `mapstructure:"catalog"    toml:"catalog"    json:"catalog"`
	Save      string `mapstructure:"save"       toml:"save"       json:"save"` // 生成的目录另存为 JSON
	Capacity  int    `mapstructure:"capacity"   toml:"capacity"   json:"capacity"   validate:"gte=0"`
	Items     int    `mapstructure:"items"      toml:"items"      json:"items"      validate:"gt=0"`
	Seed      uint64 `mapstructure:"seed"       toml:"seed"       json:"seed"`
	MinValue  int    `mapstructure:"min_value"  toml:"min_value"  json:"min_value"  validate:"gt=0"`
	MaxValue  int    `mapstructure:"max_value"  toml:"max_value"  json:"max_value"  validate:"gtefield=MinValue"`
	MinWeight int    `mapstructure:"min_weight" toml:"min_weight" json:"min_weight" validate:"gt=0"`
	MaxWeight int    `mapstructure:"max_weight" toml:"max_weight" json:"max_weight" validate:"gtefield=MinWeight"`
}

// RunConfig 定义一次求解的执行方式。
type RunConfig struct {
	Runs     int  `mapstructure:"runs"     toml:"runs"     json:"runs"     validate:"gt=0,lte=64"` // 独立重启次数
	Parallel int  `mapstructure:"parallel" toml:"parallel" json:"parallel" validate:"gte=0"`      // 0 表示不限制
	Verify   bool `mapstructure:"verify"   toml:"verify"   json:"verify"`                          // 用动态规划计算最优解差距
	History  bool `mapstructure:"history"  toml:"history"  json:"history"`                         // 输出逐代进度
}

// LogConfig 定义日志输出、级别与切割策略.
type LogConfig struct {
	Level      string `mapstructure:"level"       toml:"level"       json:"level"       validate:"omitempty,oneof=debug info warn error"`
	Format     string `mapstructure:"format"      toml:"format"      json:"format"      validate:"omitempty,oneof=json text"`
	File       string `mapstructure:"file"        toml:"file"        json:"file"`        // 日志文件路径，为空则只输出到 stderr
	MaxSize    int    `mapstructure:"max_size"    toml:"max_size"    json:"max_size"`    // 单个文件最大大小 (MB)
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups" json:"max_backups"` // 最大备份数
	MaxAge     int    `mapstructure:"max_age"     toml:"max_age"     json:"max_age"`     // 最大保留天数
	Compress   bool   `mapstructure:"compress"    toml:"compress"    json:"compress"`
}

// MetricsConfig 普罗米修斯监控指标暴露配置.
type MetricsConfig struct {
	Port    string `mapstructure:"port"    toml:"port"    json:"port"`
	Path    string `mapstructure:"path"    toml:"path"    json:"path"`
	Enabled bool   `mapstructure:"enabled" toml:"enabled" json:"enabled"`
}

// TracingConfig 分布式链路追踪（OpenTelemetry）配置.
type TracingConfig struct {
	ServiceName  string  `mapstructure:"service_name"  toml:"service_name"  json:"service_name"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" toml:"otlp_endpoint" json:"otlp_endpoint"`
	AuthToken    string  `mapstructure:"auth_token"    toml:"auth_token"    json:"auth_token"`
	SamplerRatio float64 `mapstructure:"sampler_ratio" toml:"sampler_ratio" json:"sampler_ratio" validate:"gte=0,lte=1"`
	Enabled      bool    `mapstructure:"enabled"       toml:"enabled"       json:"enabled"`
}

// SnowflakeConfig 运行 ID 生成器参数.
type SnowflakeConfig struct {
	StartTime string `mapstructure:"start_time" toml:"start_time" json:"start_time"`
	Type      string `mapstructure:"type"       toml:"type"       json:"type"       validate:"omitempty,oneof=snowflake sonyflake"`
	MachineID int64  `mapstructure:"machine_id" toml:"machine_id" json:"machine_id" validate:"gte=0"`
}

// ServerConfig 定义 HTTP 求解服务的网络参数.
type ServerConfig struct {
	Name              string        `mapstructure:"name"                toml:"name"                json:"name"`
	Addr              string        `mapstructure:"addr"                toml:"addr"                json:"addr"`
	Port              int           `mapstructure:"port"                toml:"port"                json:"port"                validate:"min=1,max=65535"`
	Mode              string        `mapstructure:"mode"                toml:"mode"                json:"mode"                validate:"omitempty,oneof=debug release test"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"        toml:"read_timeout"        json:"read_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" toml:"read_header_timeout" json:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"       toml:"write_timeout"       json:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"        toml:"idle_timeout"        json:"idle_timeout"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes"      toml:"max_body_bytes"      json:"max_body_bytes"`
	MaxItems          int           `mapstructure:"max_items"           toml:"max_items"           json:"max_items"           validate:"gte=0"`
	MaxGenerations    int           `mapstructure:"max_generations"     toml:"max_generations"     json:"max_generations"     validate:"gte=0"`
	MaxPopulation     int           `mapstructure:"max_population"      toml:"max_population"      json:"max_population"      validate:"gte=0"`
	MaxGenes          int64         `mapstructure:"max_genes"           toml:"max_genes"           json:"max_genes"           validate:"gte=0"` // runs × population × items 上限
}

// RateLimitConfig 定义令牌桶限流参数.
type RateLimitConfig struct {
	Rate    float64 `mapstructure:"rate"    toml:"rate"    json:"rate"    validate:"gte=0"`
	Burst   int     `mapstructure:"burst"   toml:"burst"   json:"burst"   validate:"gte=0"`
	Enabled bool    `mapstructure:"enabled" toml:"enabled" json:"enabled"`
}

// Default 返回内置默认配置：随机生成 100 件物品、容量 250，进化参数取 evolution.DefaultConfig。
func Default() Config {
	return Config{
		Version: "dev",
		Solver:  evolution.DefaultConfig(),
		Problem: ProblemConfig{
			Items:     100,
			MinValue:  2,
			MaxValue:  30,
			MinWeight: 1,
			MaxWeight: 25,
		},
		Run: RunConfig{Runs: 1},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
		},
		Metrics: MetricsConfig{Port: "9090", Path: "/metrics"},
		Tracing: TracingConfig{ServiceName: "knapsack", OTLPEndpoint: "localhost:4317", SamplerRatio: 1},
		Snowflake: SnowflakeConfig{
			StartTime: "2024-01-01",
			Type:      "snowflake",
			MachineID: 1,
		},
		Server: ServerConfig{
			Name:              "knapsack",
			Port:              8080,
			Mode:              "release",
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      2 * time.Minute,
			IdleTimeout:       time.Minute,
			MaxBodyBytes:      1 << 20,
			MaxItems:          10_000,
			MaxGenerations:    100_000,
			MaxPopulation:     10_000,
			MaxGenes:          50_000_000,
		},
		RateLimit: RateLimitConfig{Rate: 5, Burst: 10, Enabled: true},
	}
}

// Loader 封装 viper 实例、校验器与热更新回调。
type Loader struct {
	v        *viper.Viper
	validate *validator.Validate

	mu       sync.Mutex
	current  *Config
	onReload []func(*Config)
}

// NewLoader 创建加载器并注册全部默认值，使环境变量能覆盖任何键。
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, "", Default())

	return &Loader{v: v, validate: validator.New()}
}

// setDefaults 把默认配置展开为点分键逐个注册。
func setDefaults(v *viper.Viper, prefix string, conf Config) {
	data, err := json.Marshal(conf)
	if err != nil {
		return
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return
	}
	registerTree(v, prefix, tree)
}

func registerTree(v *viper.Viper, prefix string, tree map[string]any) {
	for key, val := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if sub, ok := val.(map[string]any); ok {
			registerTree(v, full, sub)
			continue
		}
		v.SetDefault(full, val)
	}
}

// flagBindings 命令行参数到配置键的映射。
var flagBindings = map[string]string{
	"population":     "solver.population_size",
	"generations":    "solver.generations",
	"crossover-rate": "solver.crossover_rate",
	"mutation-rate":  "solver.mutation_rate",
	"seed":           "solver.seed",
	"selection":      "solver.selection",
	"crossover":      "solver.crossover",
	"mutation":       "solver.mutation",
	"replacement":    "solver.replacement",
	"improve-after":  "solver.improve_after",
	"improve-when":   "solver.improve_when",
	"catalog":        "problem.catalog",
	"save-catalog":   "problem.save",
	"capacity":       "problem.capacity",
	"items":          "problem.items",
	"catalog-seed":   "problem.seed",
	"runs":           "run.runs",
	"verify":         "run.verify",
	"history":        "run.history",
	"log-level":      "log.level",
	"port":           "server.port",
}

// RegisterFlags 在 fs 上声明所有可覆盖配置的命令行参数。
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.Int("population", d.Solver.PopulationSize, "population size")
	fs.Int("generations", d.Solver.Generations, "number of generations")
	fs.Float64("crossover-rate", d.Solver.CrossoverRate, "crossover probability per breeding")
	fs.Float64("mutation-rate", d.Solver.MutationRate, "mutation probability per offspring")
	fs.Uint64("seed", 0, "random seed, 0 picks one and records it")
	fs.String("selection", d.Solver.Selection, "parent selection: roulette | elitist")
	fs.String("crossover", d.Solver.Crossover, "crossover: segment | alternating")
	fs.String("mutation", d.Solver.Mutation, "mutation: rollback | inplace")
	fs.String("replacement", d.Solver.Replacement, "replacement: steady | generational")
	fs.Int("improve-after", d.Solver.ImproveAfter, "apply local improvement after this generation")
	fs.String("improve-when", "", "expression gating local improvement, e.g. \"generation > 200\"")
	fs.String("catalog", "", "JSON catalogue file, empty generates a random one")
	fs.String("save-catalog", "", "write the generated catalogue to this JSON file")
	fs.Int("capacity", d.Problem.Capacity, "knapsack capacity, 0 keeps the catalogue's own")
	fs.Int("items", d.Problem.Items, "number of generated items")
	fs.Uint64("catalog-seed", 0, "seed of the generated catalogue")
	fs.Int("runs", d.Run.Runs, "independent restarts, the best result wins")
	fs.Bool("verify", false, "compare against the exact dynamic-programming optimum")
	fs.Bool("history", false, "print progress snapshots")
	fs.String("log-level", d.Log.Level, "log level: debug | info | warn | error")
	fs.Int("port", d.Server.Port, "HTTP port for serve")
}

// BindFlags 把 fs 中已声明的参数绑定到配置键；仅显式传入的参数会覆盖文件与环境变量。
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagBindings {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load 读取配置文件（path 为空时只使用默认值、环境变量与命令行参数）、反序列化并校验。
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	conf, err := l.decode()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.current = conf
	l.mu.Unlock()
	return conf, nil
}

func (l *Loader) decode() (*Config, error) {
	conf := &Config{}
	if err := l.v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("unmarshal config error: %w", err)
	}
	if err := l.validate.Struct(conf); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := conf.Solver.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return conf, nil
}

// Current 返回最近一次成功加载的配置。
func (l *Loader) Current() *Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// RegisterReloadHook 注册配置热更新回调。
func (l *Loader) RegisterReloadHook(hook func(*Config)) {
	if hook == nil {
		return
	}
	l.mu.Lock()
	l.onReload = append(l.onReload, hook)
	l.mu.Unlock()
}

// Watch 监听配置文件变化，变化后重新加载、更新全局日志级别并依次调用回调。
// 新配置校验失败时保留旧配置。
func (l *Loader) Watch() {
	l.v.OnConfigChange(func(event fsnotify.Event) {
		slog.Info("detecting config change", "file", event.Name, "op", event.Op.String())
		const debounceTimeout = 500 * time.Millisecond
		time.Sleep(debounceTimeout)
		l.reload()
	})
	l.v.WatchConfig()
}

func (l *Loader) reload() {
	if err := l.v.ReadInConfig(); err != nil {
		slog.Error("reload config read failed", "error", err)
		return
	}
	conf, err := l.decode()
	if err != nil {
		slog.Error("reload config failed, keeping previous config", "error", err)
		return
	}

	logging.SetLevel(conf.Log.Level)

	l.mu.Lock()
	l.current = conf
	hooks := append([]func(*Config){}, l.onReload...)
	l.mu.Unlock()

	slog.Info("config hot-reloaded and validated successfully")
	for _, hook := range hooks {
		hook(conf)
	}
}

// PrintWithMask 脱敏打印当前配置.
func PrintWithMask(conf any) {
	masked, err := Masked(conf)
	if err != nil {
		slog.Error("failed to mask config for printing", "error", err)
		return
	}
	slog.Info("current effective configuration", "config", masked)
}

// Masked 返回敏感字段被替换为 ****** 的 JSON 文本。
func Masked(conf any) (string, error) {
	data, err := json.Marshal(conf)
	if err != nil {
		return "", err
	}

	var configMap map[string]any
	if err := json.Unmarshal(data, &configMap); err != nil {
		return "", err
	}

	mask(configMap)

	out, err := json.MarshalIndent(configMap, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func mask(configMap map[string]any) {
	sensitiveKeys := []string{"password", "secret", "dsn", "key", "token"}

	for key, val := range configMap {
		if subMap, ok := val.(map[string]any); ok {
			mask(subMap)
			continue
		}

		if slice, ok := val.([]any); ok {
			for _, item := range slice {
				if itemMap, ok := item.(map[string]any); ok {
					mask(itemMap)
				}
			}
			continue
		}

		for _, sensitiveKey := range sensitiveKeys {
			if strings.Contains(strings.ToLower(key), sensitiveKey) {
				configMap[key] = "******"
				break
			}
		}
	}
}
