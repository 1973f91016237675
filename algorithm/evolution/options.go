package evolution

import (
	"log/slog"
	"math/rand/v2"
)

// Option 定义引擎配置选项，用于覆盖由 Config 推导出的默认策略。
type Option func(*Engine)

// WithRand 注入随机源。注入后 Config.Seed 仅作记录之用。
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithSelector 替换选择策略。
func WithSelector(s Selector) Option {
	return func(e *Engine) {
		e.selector = s
	}
}

// WithCrossover 替换交叉策略。
func WithCrossover(x Crossover) Option {
	return func(e *Engine) {
		e.crossover = x
	}
}

// WithMutator 替换变异策略。
func WithMutator(m Mutator) Option {
	return func(e *Engine) {
		e.mutator = m
	}
}

// WithImprover 替换局部改进策略。
func WithImprover(i Improver) Option {
	return func(e *Engine) {
		e.improver = i
	}
}

// WithGate 替换局部改进门控。
func WithGate(g Gate) Option {
	return func(e *Engine) {
		e.gate = g
	}
}

// WithReplacement 替换种群替换策略。
func WithReplacement(r Replacement) Option {
	return func(e *Engine) {
		e.replacement = r
	}
}

// WithInitializer 替换初始化策略。
func WithInitializer(i Initializer) Option {
	return func(e *Engine) {
		e.initializer = i
	}
}

// WithReporter 设置进度回调。
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

// WithLogger 设置日志记录器。
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}
