package calculator

import (
	"fmt"

	"grainsim/model"
	"grainsim/risk"
)

// 温度场 -> 峰值霉变量 -> 风险分布
func (c *Calculator) Simulate(in model.SimulationInput, est *risk.Estimator) (*model.Report, error) {
	res, err := c.Run(in)
	if err != nil {
		return nil, err
	}
	return estimate(res, est)
}

func estimate(res *model.SimulationResult, est *risk.Estimator) (*model.Report, error) {
	r, err := est.Estimate(res.PeakSpoilage)
	if err != nil {
		return nil, fmt.Errorf("estimate risk for %s: %w", res.Input.Crop, err)
	}
	return &model.Report{Simulation: res, Risk: r}, nil
}

// 相同工况下比较注册表中的所有作物
type CropComparison struct {
	Crop   string
	Report *model.Report
	Err    error
}

func (c *Calculator) CompareCrops(in model.SimulationInput, est *risk.Estimator) []CropComparison {
	names := c.registry.Names()
	inputs := make([]model.SimulationInput, len(names))
	for i, name := range names {
		inputs[i] = in
		inputs[i].Crop = name
	}

	batch := c.RunBatch(inputs)
	res := make([]CropComparison, len(names))
	for i, b := range batch {
		res[i].Crop = names[i]
		if b.Err != nil {
			res[i].Err = b.Err
			continue
		}
		res[i].Report, res[i].Err = estimate(b.Result, est)
	}
	return res
}
