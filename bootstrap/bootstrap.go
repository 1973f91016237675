// Package bootstrap 处理命令行、配置、日志、追踪与指标等通用基础设施的初始化。
package bootstrap

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/wyfcoding/knapsack/config"
	"github.com/wyfcoding/knapsack/idgen"
	"github.com/wyfcoding/knapsack/logging"
	"github.com/wyfcoding/knapsack/metrics"
	"github.com/wyfcoding/knapsack/tracing"
)

// App 持有启动后的全部通用组件。
type App struct {
	Name    string
	Version string

	Flags  *pflag.FlagSet
	Loader *config.Loader
	Config *config.Config
	Logger *logging.Logger

	configPath string
	closers    []func()
}

// New 创建引导器并声明通用命令行参数，调用方可在 Initialize 之前继续添加自己的参数。
func New(name, version string) *App {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	a := &App{
		Name:    name,
		Version: version,
		Flags:   fs,
		Loader:  config.NewLoader(),
	}
	fs.StringVarP(&a.configPath, "config", "c", "", "path to TOML config file")
	config.RegisterFlags(fs)
	return a
}

// Initialize 解析命令行参数、加载配置文件，并按配置初始化日志与 ID 生成器。
func (a *App) Initialize(args []string) error {
	// 1. 配置加载前先使用默认 Logger，保证加载失败也有结构化输出。
	logging.SetDefault(logging.NewLogger(a.Name, "bootstrap"))
	a.Logger = logging.Default()

	if err := a.Flags.Parse(args); err != nil {
		return err
	}
	if err := a.Loader.BindFlags(a.Flags); err != nil {
		return err
	}

	// 2. 文件 < 环境变量 < 命令行参数。
	conf, err := a.Loader.Load(a.configPath)
	if err != nil {
		a.Logger.Error("failed to load config", "path", a.configPath, "error", err)
		return err
	}
	if conf.Version == "" || conf.Version == config.Default().Version {
		conf.Version = a.Version
	}
	a.Config = conf

	// 3. 按配置重建 Logger。
	a.Logger = logging.NewFromConfig(logging.Config{
		Service:    a.Name,
		Module:     "main",
		Level:      conf.Log.Level,
		Format:     conf.Log.Format,
		File:       conf.Log.File,
		MaxSize:    conf.Log.MaxSize,
		MaxBackups: conf.Log.MaxBackups,
		MaxAge:     conf.Log.MaxAge,
		Compress:   conf.Log.Compress,
	})
	logging.SetDefault(a.Logger)
	a.closers = append(a.closers, func() { _ = a.Logger.Close() })

	if err := idgen.Init(conf.Snowflake); err != nil {
		return fmt.Errorf("init id generator: %w", err)
	}

	if conf.Log.Level == "debug" {
		config.PrintWithMask(conf)
	}
	return nil
}

// ConfigPath 返回 --config 指定的文件路径，可能为空。
func (a *App) ConfigPath() string {
	return a.configPath
}

// Command 返回第一个位置参数，即子命令名。
func (a *App) Command() string {
	return a.Flags.Arg(0)
}

// SetupTracing 初始化 OpenTelemetry 追踪器，关闭函数由 Close 统一调用。
func (a *App) SetupTracing(ctx context.Context) {
	shutdown, err := tracing.InitTracer(ctx, a.Config.Tracing, a.Version)
	if err != nil {
		a.Logger.Error("failed to init tracer", "error", err)
		return
	}
	a.closers = append(a.closers, func() {
		if err := shutdown(context.Background()); err != nil {
			a.Logger.Error("failed to shutdown tracer", "error", err)
		}
	})
}

// SetupMetrics 在启用指标时创建注册中心并登记构建信息；expose 为 true 时另起端口暴露。
// 未启用时返回 nil，下游组件均对 nil 安全。
func (a *App) SetupMetrics(expose bool) *metrics.Metrics {
	if !a.Config.Metrics.Enabled {
		return nil
	}
	m := metrics.NewMetrics(a.Name)
	m.RegisterBuildInfo(a.Name, a.Version, a.Config.Solver)
	if expose {
		a.closers = append(a.closers, m.ExposeHTTP(a.Config.Metrics.Port, a.Config.Metrics.Path))
	}
	return m
}

// Close 按注册的逆序释放资源。
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
