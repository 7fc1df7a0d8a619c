package calculator

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"grainsim/crop"
	"grainsim/model"
	"grainsim/silo"
)

// Calculator 计算粮仓截面的一维温度场、水分场和霉变累积量。
// Calculator 本身不保存运行状态，每次 Run 都在独立的数组上计算，可以并发调用。
type Calculator struct {
	cfg      Config
	siloCfg  silo.Config
	registry *crop.Registry

	Log logrus.FieldLogger

	// 每步结束后回调，field 只能读，不能在回调返回后继续持有
	OnStep func(step int, field *model.FieldState)
}

func NewCalculator(registry *crop.Registry, cfg Config, siloCfg silo.Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = crop.Default()
	}
	return &Calculator{
		cfg:      cfg,
		siloCfg:  siloCfg,
		registry: registry,
		Log:      logrus.StandardLogger(),
	}, nil
}

func (c *Calculator) Config() Config {
	return c.cfg
}

func (c *Calculator) Registry() *crop.Registry {
	return c.registry
}

// Steps 返回给定天数实际要计算的步数，以及是否被步数上限截断
func (c *Calculator) Steps(days float64) (int, bool) {
	steps, _, truncated := stepCount(days, c.cfg.TimeStep, c.cfg.MaxSteps)
	return steps, truncated
}

// Run 推进到模拟时长结束，返回最终的场。
// 步数超过上限时只计算上限步数，结果中的 Truncated 和 SimulatedDays 反映实际模拟时长。
func (c *Calculator) Run(in model.SimulationInput) (*model.SimulationResult, error) {
	profile, err := c.registry.Lookup(in.Crop)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	start := time.Now()
	r := newSimulationRun(c.cfg, c.siloCfg, profile, in)
	logger := c.Log.WithFields(logrus.Fields{
		"crop":  in.Crop,
		"days":  in.Days,
		"steps": r.steps,
		"wall":  r.silo.EffectiveWallThickness(),
		"h_env": r.silo.HeatTransferCoefficient(),
		"alpha": r.alpha,
		"dx":    r.dx,
		"dt":    r.dt,
	})
	logger.Debug("开始计算温度场")
	if r.truncated {
		logger.WithField("requested_steps", r.requested).Warn("步数超过上限，模拟时长被截断")
	}

	r.record(0)
	for step := 1; step <= r.steps; step++ {
		r.step()
		if err := r.check(step); err != nil {
			logger.WithError(err).Error("温度场计算发散")
			return nil, err
		}
		r.record(step)
		if c.OnStep != nil {
			c.OnStep(step, r.field)
		}
	}

	res := r.result()
	logger.WithFields(logrus.Fields{
		"peak_spoilage": res.PeakSpoilage,
		"peak_node":     res.PeakNode,
		"cost":          time.Since(start),
	}).Info("温度场计算完成")
	return res, nil
}

func validateInput(in model.SimulationInput) error {
	finite := []struct {
		name  string
		value float64
	}{
		{"days", in.Days},
		{"base_temperature", in.BaseTemperature},
		{"hotspot_temperature", in.HotspotTemperature},
		{"base_moisture", in.BaseMoisture},
		{"wall_thickness", in.WallThickness},
	}
	for _, p := range finite {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return &model.InvalidParameterError{Param: p.name, Value: p.value, Reason: "must be finite"}
		}
	}
	if in.Days < 0 {
		return &model.InvalidParameterError{Param: "days", Value: in.Days, Reason: "must not be negative"}
	}
	if in.BaseMoisture < 0 {
		return &model.InvalidParameterError{Param: "base_moisture", Value: in.BaseMoisture, Reason: "must not be negative"}
	}
	return nil
}
