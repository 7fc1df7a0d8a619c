package model

// 网格设定
// 1. 粮仓截面沿高度方向离散为一维网格
// 2. 节点 0 和 N-1 为边界节点（仓壁），其余为内部节点

// 作物物性参数
type CropProfile struct {
	Name                string  `json:"name" toml:"name"`
	Density             float64 `json:"density" toml:"density"`                           // 密度 kg/m³
	SpecificHeat        float64 `json:"specific_heat" toml:"specific_heat"`               // 比热容 J/kg·K
	ThermalConductivity float64 `json:"thermal_conductivity" toml:"thermal_conductivity"` // 导热系数 W/m·K
	MoistureDiffusivity float64 `json:"moisture_diffusivity" toml:"moisture_diffusivity"` // 水分扩散系数 m²/s
	SpoilageFactor      float64 `json:"spoilage_factor" toml:"spoilage_factor"`           // 霉变敏感系数
}

// 热扩散率
func (p CropProfile) ThermalDiffusivity() float64 {
	return p.ThermalConductivity / (p.Density * p.SpecificHeat)
}

// 体积热容 ρ·Cp
func (p CropProfile) HeatCapacity() float64 {
	return p.Density * p.SpecificHeat
}

// 一次模拟的输入参数
type SimulationInput struct {
	Days               float64 `json:"days"`
	BaseTemperature    float64 `json:"base_temperature"`
	HotspotTemperature float64 `json:"hotspot_temperature"`
	BaseMoisture       float64 `json:"base_moisture"`
	Crop               string  `json:"crop"`
	WallThickness      float64 `json:"wall_thickness"`
}

// 默认工况：小麦，10 天，热点 40℃
func DefaultSimulationInput() SimulationInput {
	return SimulationInput{
		Days:               10,
		BaseTemperature:    25,
		HotspotTemperature: 40,
		BaseMoisture:       14,
		Crop:               "Wheat",
		WallThickness:      0.3,
	}
}

// 五个按节点对齐的场
type FieldState struct {
	Position              []float64 `json:"position"`
	Temperature           []float64 `json:"temperature"`
	Moisture              []float64 `json:"moisture"`
	CumulativeSpoilage    []float64 `json:"cumulative_spoilage"`
	CumulativeFungalIndex []float64 `json:"cumulative_fungal_index"`
}

func NewFieldState(n int) *FieldState {
	return &FieldState{
		Position:              make([]float64, n),
		Temperature:           make([]float64, n),
		Moisture:              make([]float64, n),
		CumulativeSpoilage:    make([]float64, n),
		CumulativeFungalIndex: make([]float64, n),
	}
}

func (f *FieldState) Len() int {
	return len(f.Position)
}

// 深拷贝，用于把结果交给调用方
func (f *FieldState) Clone() *FieldState {
	c := &FieldState{
		Position:              make([]float64, len(f.Position)),
		Temperature:           make([]float64, len(f.Temperature)),
		Moisture:              make([]float64, len(f.Moisture)),
		CumulativeSpoilage:    make([]float64, len(f.CumulativeSpoilage)),
		CumulativeFungalIndex: make([]float64, len(f.CumulativeFungalIndex)),
	}
	copy(c.Position, f.Position)
	copy(c.Temperature, f.Temperature)
	copy(c.Moisture, f.Moisture)
	copy(c.CumulativeSpoilage, f.CumulativeSpoilage)
	copy(c.CumulativeFungalIndex, f.CumulativeFungalIndex)
	return c
}

// 模拟结果
// Steps 为实际计算的步数，超过上限时 Truncated 为 true，SimulatedDays 为实际模拟天数
type SimulationResult struct {
	Input           SimulationInput `json:"input"`
	Profile         CropProfile     `json:"profile"`
	Field           *FieldState     `json:"field"`
	Steps           int             `json:"steps"`
	RequestedSteps  int             `json:"requested_steps"`
	Truncated       bool            `json:"truncated"`
	SimulatedDays   float64         `json:"simulated_days"`
	PeakSpoilage    float64         `json:"peak_spoilage"`
	PeakFungalIndex float64         `json:"peak_fungal_index"`
	PeakNode        int             `json:"peak_node"`
	History         []Snapshot      `json:"history,omitempty"`
}

// 风险分布估计结果
type RiskResult struct {
	Samples []float64 `json:"samples"`
	Mean    float64   `json:"mean"`
	Low     float64   `json:"low"`  // 5%
	High    float64   `json:"high"` // 95%
	Alpha   float64   `json:"alpha"`
	Beta    float64   `json:"beta"`
	Level   RiskLevel `json:"level"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// 一次完整模拟（温度场 + 风险分布）
type Report struct {
	Simulation *SimulationResult `json:"simulation"`
	Risk       *RiskResult       `json:"risk"`
}

// 某一步的摘要，存入历史队列
type Snapshot struct {
	Step                int     `json:"step"`
	Elapsed             float64 `json:"elapsed"` // 秒
	PeakTemperature     float64 `json:"peak_temperature"`
	BoundaryTemperature float64 `json:"boundary_temperature"`
	PeakSpoilage        float64 `json:"peak_spoilage"`
	PeakFungalIndex     float64 `json:"peak_fungal_index"`
}

// 前后端通信消息结构
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}
