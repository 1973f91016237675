package evolution

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/wyfcoding/knapsack/xerrors"
)

// GateState 是门控判断时可见的进化状态。
type GateState struct {
	Generation  int
	Generations int
	Best        int
	Mean        float64
}

// Gate 决定某一代是否对子代执行局部改进。
type Gate interface {
	Allow(s GateState) bool
}

// Always 每一代都执行局部改进。
type Always struct{}

// Allow 实现 Gate。
func (Always) Allow(GateState) bool { return true }

// AfterGeneration 仅在代数严格大于该值后执行局部改进，前期把算力留给多样性。
type AfterGeneration int

// Allow 实现 Gate。
func (g AfterGeneration) Allow(s GateState) bool { return s.Generation > int(g) }

// ExprGate 用表达式描述门控条件，可用变量：generation、generations、best、mean。
// 例如 "generation > 200 || best < 100"。
type ExprGate struct {
	source  string
	program *vm.Program
}

func gateEnv(s GateState) map[string]any {
	return map[string]any{
		"generation":  s.Generation,
		"generations": s.Generations,
		"best":        s.Best,
		"mean":        s.Mean,
	}
}

// NewExprGate 编译门控表达式，表达式必须返回布尔值。
func NewExprGate(source string) (*ExprGate, error) {
	program, err := expr.Compile(source, expr.Env(gateEnv(GateState{})), expr.AsBool())
	if err != nil {
		return nil, xerrors.ErrInvalidGate.Derive("%q: %v", source, err)
	}
	return &ExprGate{source: source, program: program}, nil
}

// Allow 实现 Gate。运行期出错时视为不放行。
func (g *ExprGate) Allow(s GateState) bool {
	out, err := expr.Run(g.program, gateEnv(s))
	if err != nil {
		return false
	}
	passed, ok := out.(bool)
	return ok && passed
}

// String 返回原始表达式。
func (g *ExprGate) String() string { return g.source }
