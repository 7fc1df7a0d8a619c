package server

import (
	"errors"

	"github.com/sirupsen/logrus"

	"grainsim/calculator"
	"grainsim/model"
	"grainsim/risk"
)

// Service 包装计算器和风险估计器，websocket 和 REST 共用
type Service struct {
	calc    *calculator.Calculator
	est     *risk.Estimator
	metrics *Collector
	Log     logrus.FieldLogger
}

func NewService(calc *calculator.Calculator, est *risk.Estimator, metrics *Collector) *Service {
	return &Service{
		calc:    calc,
		est:     est,
		metrics: metrics,
		Log:     logrus.StandardLogger(),
	}
}

// 作物对比的返回结构
type ComparisonReply struct {
	Crop   string        `json:"crop"`
	Report *model.Report `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Simulate 计算一组工况，onStep 不为 nil 时每步回调
func (s *Service) Simulate(in model.SimulationInput, onStep func(step, total int, field *model.FieldState)) (*model.Report, error) {
	calc := *s.calc
	if onStep != nil {
		total, _ := calc.Steps(in.Days)
		calc.OnStep = func(step int, field *model.FieldState) {
			onStep(step, total, field)
		}
	}

	label := s.cropLabel(in.Crop)
	timer := NewTimer(s.metrics.SimulationDuration.WithLabelValues(label))
	rep, err := calc.Simulate(in, s.est)
	timer.ObserveDuration()
	s.record(label, rep, err)
	return rep, err
}

func (s *Service) Compare(in model.SimulationInput) []ComparisonReply {
	res := s.calc.CompareCrops(in, s.est)
	replies := make([]ComparisonReply, len(res))
	for i, r := range res {
		s.record(r.Crop, r.Report, r.Err)
		replies[i] = ComparisonReply{Crop: r.Crop, Report: r.Report}
		if r.Err != nil {
			replies[i].Error = r.Err.Error()
		}
	}
	return replies
}

func (s *Service) Crops() []model.CropProfile {
	registry := s.calc.Registry()
	names := registry.Names()
	profiles := make([]model.CropProfile, 0, len(names))
	for _, name := range names {
		p, err := registry.Lookup(name)
		if err != nil {
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles
}

// 未注册的作物名统一记为 unknown，避免标签无限增长
func (s *Service) cropLabel(name string) string {
	if _, err := s.calc.Registry().Lookup(name); err != nil {
		return "unknown"
	}
	return name
}

func (s *Service) record(crop string, rep *model.Report, err error) {
	if err != nil {
		s.metrics.SimulationsTotal.WithLabelValues(crop, errorLabel(err)).Inc()
		s.Log.WithError(err).WithField("crop", crop).Warn("模拟失败")
		return
	}
	s.metrics.SimulationsTotal.WithLabelValues(crop, "ok").Inc()
	s.metrics.SimulationSteps.Add(float64(rep.Simulation.Steps))
	if rep.Simulation.Truncated {
		s.metrics.TruncatedTotal.Inc()
	}
	s.metrics.RiskMean.WithLabelValues(crop).Set(rep.Risk.Mean)
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, model.ErrUnknownCrop):
		return "unknown_crop"
	case errors.Is(err, model.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, model.ErrNumericDivergence):
		return "divergence"
	default:
		return "error"
	}
}
