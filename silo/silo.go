package silo

import (
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// 仓壁 + 环境换热配置

// 参数解释
// 1. 仓壁导热系数 WallConductivity，W/m·K
// 2. 仓壁最小厚度 MinWallThickness，防止厚度为 0 时换热系数发散
// 3. 环境换热系数 h = WallConductivity / max(壁厚, MinWallThickness)

const (
	DefaultWallConductivity = 0.8
	DefaultMinWallThickness = 0.05
)

type Config struct {
	WallConductivity float64
	MinWallThickness float64
}

func DefaultConfig() Config {
	return Config{
		WallConductivity: DefaultWallConductivity,
		MinWallThickness: DefaultMinWallThickness,
	}
}

func LoadConfig(file *ini.File) Config {
	return Config{
		WallConductivity: file.Section("silo").Key("WallConductivity").MustFloat64(DefaultWallConductivity),
		MinWallThickness: file.Section("silo").Key("MinWallThickness").MustFloat64(DefaultMinWallThickness),
	}
}

type Silo struct {
	cfg                Config
	WallThickness      float64 // 输入的壁厚，未截断
	AmbientTemperature float64 // 环境温度，边界向其冷却
}

func NewSilo(cfg Config) *Silo {
	return &Silo{cfg: cfg}
}

func (s *Silo) SetWallThickness(wallThickness float64) {
	s.WallThickness = wallThickness
	log.WithFields(log.Fields{
		"WallThickness":          wallThickness,
		"EffectiveWallThickness": s.EffectiveWallThickness(),
		"HeatTransfer":           s.HeatTransferCoefficient(),
	}).Debug("设置仓壁厚度")
}

func (s *Silo) SetAmbientTemperature(t float64) {
	s.AmbientTemperature = t
}

// 壁厚下限截断
func (s *Silo) EffectiveWallThickness() float64 {
	if s.WallThickness < s.cfg.MinWallThickness {
		return s.cfg.MinWallThickness
	}
	return s.WallThickness
}

// 仓壁到环境的综合换热系数
func (s *Silo) HeatTransferCoefficient() float64 {
	return s.cfg.WallConductivity / s.EffectiveWallThickness()
}

// 边界节点在一个时间步内的牛顿冷却修正量
func (s *Silo) BoundaryCorrection(t, heatCapacity, deltaT float64) float64 {
	return -s.HeatTransferCoefficient() * (t - s.AmbientTemperature) * deltaT / heatCapacity
}
