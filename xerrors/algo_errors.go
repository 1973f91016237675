package xerrors

var (
	// ErrEmptyCatalogue 物品目录为空。
	ErrEmptyCatalogue = New(ErrInvalidArg, 400101, "empty catalogue", "item catalogue must contain at least one item", nil)
	// ErrInvalidItem 物品价值或重量非正。
	ErrInvalidItem = New(ErrInvalidArg, 400102, "invalid item", "item value and weight must be positive", nil)
	// ErrInvalidCapacity 背包容量非正。
	ErrInvalidCapacity = New(ErrInvalidArg, 400103, "invalid capacity", "capacity must be positive", nil)
	// ErrInvalidPopulation 种群规模非法。
	ErrInvalidPopulation = New(ErrInvalidArg, 400104, "invalid population size", "population size must be positive", nil)
	// ErrInvalidGenerations 代数非法。
	ErrInvalidGenerations = New(ErrInvalidArg, 400105, "invalid generations", "generations must be positive", nil)
	// ErrInvalidRate 交叉率或变异率越界。
	ErrInvalidRate = New(ErrInvalidArg, 400106, "invalid rate", "crossover and mutation rates must be in [0, 1]", nil)
	// ErrUnknownStrategy 未知的策略名称。
	ErrUnknownStrategy = New(ErrInvalidArg, 400107, "unknown strategy", "check selection / crossover / mutation / replacement / initialization names", nil)
	// ErrInvalidGate 局部改进门控表达式非法。
	ErrInvalidGate = New(ErrInvalidArg, 400108, "invalid improvement gate", "gate expression must compile to a boolean", nil)
	// ErrGenomeMismatch 基因长度与目录长度不一致。
	ErrGenomeMismatch = New(ErrInvalidArg, 400109, "genome length mismatch", "gene vector length must equal catalogue length", nil)
	// ErrInvalidRuns 重启次数非法。
	ErrInvalidRuns = New(ErrInvalidArg, 400110, "invalid runs", "runs must be positive", nil)
	// ErrInvalidParameter 其他数值参数非法。
	ErrInvalidParameter = New(ErrInvalidArg, 400111, "invalid parameter", "numeric parameters out of range", nil)
	// ErrMalformedCatalogue 目录文件不是合法的 JSON。
	ErrMalformedCatalogue = New(ErrInvalidArg, 400112, "malformed catalogue", "catalogue file must be valid JSON", nil)
	// ErrMalformedRequest 请求体无法解析。
	ErrMalformedRequest = New(ErrInvalidArg, 400113, "malformed request", "request body must be valid JSON", nil)
	// ErrRequestTooLarge 实例规模超过服务端上限。
	ErrRequestTooLarge = New(ErrInvalidArg, 400114, "problem too large", "items or generations exceed the server limit", nil)
	// ErrRateLimited 求解请求被限流。
	ErrRateLimited = New(ErrLimitExceeded, 429001, "too many solve requests", "solve rate limit exceeded", nil)
)
