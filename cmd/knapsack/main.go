// Command knapsack 用遗传算法求解 0/1 背包问题。
//
//	knapsack [solve] [flags]   求解一次，结果以 JSON 写到标准输出
//	knapsack serve [flags]     以 HTTP 服务形式提供求解
//
// 加上 --watch 时，配置文件每次变化都会重新求解（serve 模式下只热更新日志级别）。
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/wyfcoding/knapsack/algorithm/evolution"
	"github.com/wyfcoding/knapsack/bootstrap"
	"github.com/wyfcoding/knapsack/config"
	"github.com/wyfcoding/knapsack/logging"
	"github.com/wyfcoding/knapsack/metrics"
	"github.com/wyfcoding/knapsack/server"
	"github.com/wyfcoding/knapsack/solver"
)

const serviceName = "knapsack"

// version 在构建时通过 -ldflags "-X main.version=..." 注入。
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	app := bootstrap.New(serviceName, version)
	watch := app.Flags.Bool("watch", false, "re-run the solve whenever the config file changes")

	if err := app.Initialize(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.SetupTracing(ctx)

	var err error
	switch cmd := app.Command(); cmd {
	case "", "solve":
		err = runSolve(ctx, app, *watch, stdout)
	case "serve":
		err = runServe(ctx, app, *watch)
	default:
		err = fmt.Errorf("unknown command %q, expected solve or serve", cmd)
	}
	if err != nil {
		app.Logger.Error("knapsack failed", "error", err)
		return 1
	}
	return 0
}

func runSolve(ctx context.Context, app *bootstrap.App, watch bool, stdout io.Writer) error {
	m := app.SetupMetrics(true)

	if !watch {
		return solveOnce(ctx, app.Config, m, app.Logger.WithModule("solver").Logger, stdout)
	}
	if app.ConfigPath() == "" {
		return errors.New("--watch requires --config")
	}

	reloads := make(chan *config.Config, 1)
	app.Loader.RegisterReloadHook(func(c *config.Config) {
		// 只保留最新的一份配置
		select {
		case <-reloads:
		default:
		}
		reloads <- c
	})
	app.Loader.Watch()

	logger := app.Logger.WithModule("solver").Logger
	if err := solveOnce(ctx, app.Config, m, logger, stdout); err != nil {
		logging.Error(ctx, "solve failed, waiting for config change", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case conf := <-reloads:
			logging.Info(ctx, "config changed, solving again", "path", app.ConfigPath())
			if err := solveOnce(ctx, conf, m, logger, stdout); err != nil {
				logging.Error(ctx, "solve failed, waiting for config change", "error", err)
			}
		}
	}
}

func solveOnce(ctx context.Context, conf *config.Config, m *metrics.Metrics, logger *slog.Logger, stdout io.Writer) error {
	defer logging.LogDuration(ctx, "solve", "runs", conf.Run.Runs)()

	cat, err := solver.LoadCatalogue(conf.Problem)
	if err != nil {
		return err
	}
	problem, err := cat.Problem()
	if err != nil {
		return err
	}

	opts := []solver.Option{solver.WithLogger(logger), solver.WithMetrics(m)}
	if conf.Run.History {
		opts = append(opts, solver.WithProgress(progressLogger(logger)))
	}

	sol, err := solver.New(opts...).Solve(ctx, problem, solver.RequestFromConfig(conf))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sol)
}

// progressLogger 逐条输出进度快照，每条包含代数与当前最优质量。
func progressLogger(logger *slog.Logger) evolution.Reporter {
	return evolution.ReporterFunc(func(ctx context.Context, s evolution.Snapshot) {
		logger.InfoContext(ctx, "progress",
			"generation", s.Generation,
			"best_quality", s.Best,
			"mean_quality", s.Mean,
			"feasible", s.Feasible,
		)
	})
}

func runServe(ctx context.Context, app *bootstrap.App, watch bool) error {
	if watch {
		if app.ConfigPath() == "" {
			logging.Warn(ctx, "--watch ignored without --config")
		} else {
			app.Loader.Watch()
		}
	}

	m := app.SetupMetrics(false)
	logger := app.Logger.WithModule("server").Logger
	s := solver.New(solver.WithLogger(logger), solver.WithMetrics(m))

	engine := server.NewEngine(app.Config, s, m, logger)
	return server.NewGinServer(engine, app.Config.Server, logger).Start(ctx)
}
