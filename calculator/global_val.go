package calculator

// 网格与时间步
const (
	DefaultLength   = 5.0
	DefaultNodes    = 50
	DefaultTimeStep = 200.0
	DefaultMaxSteps = 10000

	SecondsPerDay = 24 * 3600

	DefaultMoistureCoupling = 1e-9
)

// 经验速率方程参数
const (
	// 生物产热 Q = 100 * exp(0.05 * T) * (M / 14)
	heatGenerationBase     = 100.0
	heatGenerationExponent = 0.05
	heatReferenceMoisture  = 14.0

	// 霉变速率 rate = factor * 1e-5 * exp(0.06 * T) * (M / 12)
	spoilageBase              = 1e-5
	spoilageExponent          = 0.06
	spoilageReferenceMoisture = 12.0

	// 真菌指数按霉变速率的两倍累积
	fungalMultiplier = 2.0
)
