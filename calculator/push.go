package calculator

import (
	"grainsim/model"
)

// 推送精度
const (
	TemperaturePrecision = 0.01
	MoisturePrecision    = 0.001
	SpoilagePrecision    = 1e-6
)

// 计算过程中周期性推送给前端的场数据
type PushData struct {
	Step        int      `json:"step"`
	Total       int      `json:"total"`
	Elapsed     float64  `json:"elapsed"`
	Temperature Encoding `json:"temperature"`
	Moisture    Encoding `json:"moisture"`
	Spoilage    Encoding `json:"spoilage"`
}

func BuildPushData(step, total int, dt float64, f *model.FieldState) *PushData {
	return &PushData{
		Step:        step,
		Total:       total,
		Elapsed:     float64(step) * dt,
		Temperature: Encode(f.Temperature, TemperaturePrecision),
		Moisture:    Encode(f.Moisture, MoisturePrecision),
		Spoilage:    Encode(f.CumulativeSpoilage, SpoilagePrecision),
	}
}
