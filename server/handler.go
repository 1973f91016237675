package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/knapsack/algorithm/evolution"
	"github.com/wyfcoding/knapsack/catalog"
	"github.com/wyfcoding/knapsack/config"
	"github.com/wyfcoding/knapsack/response"
	"github.com/wyfcoding/knapsack/solver"
	"github.com/wyfcoding/knapsack/xerrors"
)

// SolveRequest POST /v1/solve 的请求体。config 中未出现的字段沿用服务端配置。
type SolveRequest struct {
	Capacity int              `json:"capacity"`
	Items    []evolution.Item `json:"items"`
	Config   evolution.Config `json:"config"`
	Runs     int              `json:"runs"`
	Verify   bool             `json:"verify"`
	History  bool             `json:"history"`
}

// CatalogueRequest POST /v1/catalogue 的请求体，字段缺省时使用 catalog.DefaultSpec 的取值范围。
type CatalogueRequest struct {
	Items     int    `json:"items"`
	Capacity  int    `json:"capacity"`
	Seed      uint64 `json:"seed"`
	MinValue  int    `json:"min_value"`
	MaxValue  int    `json:"max_value"`
	MinWeight int    `json:"min_weight"`
	MaxWeight int    `json:"max_weight"`
}

// Handler 求解服务的 HTTP 处理器。
type Handler struct {
	conf   *config.Config
	solver *solver.Solver
	logger *slog.Logger
}

// NewHandler 创建处理器。
func NewHandler(conf *config.Config, s *solver.Solver, logger *slog.Logger) *Handler {
	return &Handler{conf: conf, solver: s, logger: logger}
}

// Health GET /healthz
func (h *Handler) Health(c *gin.Context) {
	response.SuccessWithRawData(c, gin.H{"status": "ok", "version": h.conf.Version})
}

// NotFound 未匹配的路由。
func (h *Handler) NotFound(c *gin.Context) {
	err := xerrors.NotFound("route not found")
	err.Detail = c.Request.Method + " " + c.Request.URL.Path
	response.Error(c, err)
}

// Solve POST /v1/solve
func (h *Handler) Solve(c *gin.Context) {
	req := SolveRequest{Config: h.conf.Solver, Runs: 1}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	if err := h.checkLimits(&req); err != nil {
		_ = c.Error(err)
		return
	}

	problem, err := evolution.NewProblem(req.Items, req.Capacity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	sol, err := h.solver.Solve(c.Request.Context(), problem, solver.Request{
		Config:  req.Config,
		Runs:    req.Runs,
		Verify:  req.Verify,
		History: req.History,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, sol)
}

// checkLimits 在求解前拒绝超出服务端上限的实例，上限为 0 表示不限制。
// 重启次数的合法性由 solver 校验，这里只在其合法范围内估算总基因数。
func (h *Handler) checkLimits(req *SolveRequest) error {
	limits := h.conf.Server
	if limits.MaxItems > 0 && len(req.Items) > limits.MaxItems {
		return xerrors.ErrRequestTooLarge.Derive("items=%d, max %d", len(req.Items), limits.MaxItems)
	}
	if limits.MaxGenerations > 0 && req.Config.Generations > limits.MaxGenerations {
		return xerrors.ErrRequestTooLarge.Derive("generations=%d, max %d", req.Config.Generations, limits.MaxGenerations)
	}
	if limits.MaxPopulation > 0 && req.Config.PopulationSize > limits.MaxPopulation {
		return xerrors.ErrRequestTooLarge.Derive("population_size=%d, max %d", req.Config.PopulationSize, limits.MaxPopulation)
	}

	runs := max(req.Runs, 1)
	if limits.MaxGenes > 0 && runs <= solver.MaxRuns && len(req.Items) > 0 {
		perIndividual := int64(runs) * int64(len(req.Items))
		// 以除法比较，避免 population_size 极大时乘法溢出
		if int64(req.Config.PopulationSize) > limits.MaxGenes/perIndividual {
			return xerrors.ErrRequestTooLarge.Derive("runs=%d × population_size=%d × items=%d exceeds %d genes",
				runs, req.Config.PopulationSize, len(req.Items), limits.MaxGenes)
		}
	}
	return nil
}

// GenerateCatalogue POST /v1/catalogue
func (h *Handler) GenerateCatalogue(c *gin.Context) {
	d := catalog.DefaultSpec()
	req := CatalogueRequest{
		Items: d.Items, Capacity: d.Capacity,
		MinValue: d.MinValue, MaxValue: d.MaxValue,
		MinWeight: d.MinWeight, MaxWeight: d.MaxWeight,
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}
	if limit := h.conf.Server.MaxItems; limit > 0 && req.Items > limit {
		_ = c.Error(xerrors.ErrRequestTooLarge.Derive("items=%d, max %d", req.Items, limit))
		return
	}

	cat, err := catalog.Generate(catalog.Spec{
		Items:     req.Items,
		Capacity:  req.Capacity,
		Seed:      req.Seed,
		MinValue:  req.MinValue,
		MaxValue:  req.MaxValue,
		MinWeight: req.MinWeight,
		MaxWeight: req.MaxWeight,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, cat)
}

// bindError 请求体超限保留原错误以映射为 413，其余解析错误统一为 400。
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return xerrors.ErrMalformedRequest.Derive("%v", err).WithCause(err)
}
