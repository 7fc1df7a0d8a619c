package report

import (
	"fmt"
	"strings"

	"grainsim/model"
)

// 风险等级对应的提示
func Status(level model.RiskLevel) string {
	switch level {
	case model.RiskHigh:
		return "HIGH RISK"
	case model.RiskMedium:
		return "MEDIUM RISK"
	default:
		return "LOW RISK"
	}
}

// Summary 生成一次模拟的文字结论
func Summary(r *model.Report) string {
	var b strings.Builder
	sim, risk := r.Simulation, r.Risk
	fmt.Fprintf(&b, "Status: %s\n\n", Status(risk.Level))
	fmt.Fprintf(&b, "Mean Risk: %.2f\n", risk.Mean)
	fmt.Fprintf(&b, "95%% CI: [%.2f, %.2f]\n\n", risk.Low, risk.High)
	fmt.Fprintf(&b, "Crop: %s\n", sim.Input.Crop)
	fmt.Fprintf(&b, "Simulated: %.2f days (%d steps)\n", sim.SimulatedDays, sim.Steps)
	if sim.Truncated {
		fmt.Fprintf(&b, "Warning: %.2f days requested, capped at %d steps\n", sim.Input.Days, sim.Steps)
	}
	fmt.Fprintf(&b, "Peak DML: %.4g at %.2f m\n", sim.PeakSpoilage, sim.Field.Position[sim.PeakNode])
	return b.String()
}
