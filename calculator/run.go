package calculator

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"grainsim/deque"
	"grainsim/model"
	"grainsim/silo"
)

// 一次模拟的运行状态，只在 Run 期间存在
type simulationRun struct {
	cfg     Config
	profile model.CropProfile
	input   model.SimulationInput
	silo    *silo.Silo

	// 派生常数
	alpha        float64 // 热扩散率
	heatCapacity float64 // ρ·Cp
	dx           float64
	dt           float64
	steps        int
	requested    int
	truncated    bool

	field *model.FieldState

	// 每步复用的临时数组
	d2T      []float64
	d2M      []float64
	clippedT []float64

	history *deque.ArrDeque
}

func newSimulationRun(cfg Config, siloCfg silo.Config, profile model.CropProfile, in model.SimulationInput) *simulationRun {
	n := cfg.Nodes
	r := &simulationRun{
		cfg:          cfg,
		profile:      profile,
		input:        in,
		silo:         silo.NewSilo(siloCfg),
		alpha:        profile.ThermalDiffusivity(),
		heatCapacity: profile.HeatCapacity(),
		dx:           cfg.Dx(),
		dt:           cfg.TimeStep,
		field:        model.NewFieldState(n),
		d2T:          make([]float64, n),
		d2M:          make([]float64, n),
		clippedT:     make([]float64, n),
	}
	r.silo.SetWallThickness(in.WallThickness)
	r.silo.SetAmbientTemperature(in.BaseTemperature)
	r.steps, r.requested, r.truncated = stepCount(in.Days, cfg.TimeStep, cfg.MaxSteps)
	if cfg.HistorySize > 0 {
		r.history = deque.NewArrDeque(cfg.HistorySize)
	}
	r.initField()
	return r
}

// 步数 = min(floor(days*86400/dt), maxSteps)
func stepCount(days, dt float64, maxSteps int) (steps, requested int, truncated bool) {
	f := math.Floor(days * SecondsPerDay / dt)
	if f >= float64(math.MaxInt32) {
		requested = math.MaxInt32
	} else {
		requested = int(f)
	}
	if requested > maxSteps {
		return maxSteps, requested, true
	}
	return requested, requested, false
}

// 初始条件：温度为基础温度，热点区域为热点温度；水分均匀；累积量为 0
func (r *simulationRun) initField() {
	f := r.field
	n := f.Len()
	linspace(f.Position, r.cfg.Length)
	start := int(float64(n) * r.cfg.HotspotStart)
	end := int(float64(n) * r.cfg.HotspotEnd)
	for i := 0; i < n; i++ {
		if i >= start && i < end {
			f.Temperature[i] = r.input.HotspotTemperature
		} else {
			f.Temperature[i] = r.input.BaseTemperature
		}
		f.Moisture[i] = r.input.BaseMoisture
	}
}

// 显式欧拉推进一步
func (r *simulationRun) step() {
	f := r.field
	T, M := f.Temperature, f.Moisture

	// 1. 内部节点二阶导数
	secondDerivative(T, r.d2T, r.dx)
	secondDerivative(M, r.d2M, r.dx)

	// 2. 速率方程只用截断后的温度，场本身不截断
	clipTo(r.clippedT, T, r.cfg.ClipLow, r.cfg.ClipHigh)

	// 3-4. 产热 + 扩散
	for i := range T {
		q := heatGeneration(r.clippedT[i], M[i])
		dT := r.alpha*r.d2T[i] + q/r.heatCapacity
		dM := r.profile.MoistureDiffusivity*r.d2M[i] + r.cfg.MoistureCoupling*r.d2T[i]
		T[i] += dT * r.dt
		M[i] += dM * r.dt
	}

	// 5. 边界对流换热
	last := len(T) - 1
	T[0] += r.silo.BoundaryCorrection(T[0], r.heatCapacity, r.dt)
	T[last] += r.silo.BoundaryCorrection(T[last], r.heatCapacity, r.dt)

	// 6. 霉变累积，水分使用本步更新后的值
	for i := range T {
		rate := spoilageRate(r.profile.SpoilageFactor, r.clippedT[i], M[i])
		f.CumulativeSpoilage[i] += rate * r.dt
		f.CumulativeFungalIndex[i] += rate * fungalMultiplier * r.dt
	}
}

// 检查场是否发散
func (r *simulationRun) check(step int) error {
	f := r.field
	for i := range f.Temperature {
		switch {
		case !isFinite(f.Temperature[i]):
			return &model.NumericDivergenceError{Step: step, Node: i, Field: "temperature", Value: f.Temperature[i]}
		case !isFinite(f.Moisture[i]) || f.Moisture[i] < 0:
			return &model.NumericDivergenceError{Step: step, Node: i, Field: "moisture", Value: f.Moisture[i]}
		case !isFinite(f.CumulativeSpoilage[i]):
			return &model.NumericDivergenceError{Step: step, Node: i, Field: "cumulative_spoilage", Value: f.CumulativeSpoilage[i]}
		case !isFinite(f.CumulativeFungalIndex[i]):
			return &model.NumericDivergenceError{Step: step, Node: i, Field: "cumulative_fungal_index", Value: f.CumulativeFungalIndex[i]}
		}
	}
	return nil
}

func (r *simulationRun) snapshot(step int) model.Snapshot {
	f := r.field
	return model.Snapshot{
		Step:                step,
		Elapsed:             float64(step) * r.dt,
		PeakTemperature:     floats.Max(f.Temperature),
		BoundaryTemperature: f.Temperature[0],
		PeakSpoilage:        floats.Max(f.CumulativeSpoilage),
		PeakFungalIndex:     floats.Max(f.CumulativeFungalIndex),
	}
}

func (r *simulationRun) record(step int) {
	if r.history == nil {
		return
	}
	if step%r.cfg.HistoryInterval == 0 || step == r.steps {
		r.history.Push(r.snapshot(step))
	}
}

func (r *simulationRun) result() *model.SimulationResult {
	f := r.field.Clone()
	peakNode := floats.MaxIdx(f.CumulativeSpoilage)
	res := &model.SimulationResult{
		Input:           r.input,
		Profile:         r.profile,
		Field:           f,
		Steps:           r.steps,
		RequestedSteps:  r.requested,
		Truncated:       r.truncated,
		SimulatedDays:   float64(r.steps) * r.dt / SecondsPerDay,
		PeakSpoilage:    f.CumulativeSpoilage[peakNode],
		PeakFungalIndex: floats.Max(f.CumulativeFungalIndex),
		PeakNode:        peakNode,
	}
	if r.history != nil {
		res.History = r.history.Slice()
	}
	return res
}
