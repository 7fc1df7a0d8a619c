package calculator

import (
	"math"
)

// 二阶中心差分 (f[i+1] - 2f[i] + f[i-1]) / dx²，边界节点为 0
func secondDerivative(f, d2 []float64, dx float64) {
	n := len(f)
	dx2 := dx * dx
	d2[0] = 0
	d2[n-1] = 0
	for i := 1; i < n-1; i++ {
		d2[i] = (f[i+1] - 2*f[i] + f[i-1]) / dx2
	}
}

// 截断到 [low, high]，结果写入 dst，原数组不变
func clipTo(dst, src []float64, low, high float64) {
	for i, v := range src {
		switch {
		case v < low:
			dst[i] = low
		case v > high:
			dst[i] = high
		default:
			dst[i] = v
		}
	}
}

// 生物产热速率
func heatGeneration(clippedT, m float64) float64 {
	return heatGenerationBase * math.Exp(heatGenerationExponent*clippedT) * (m / heatReferenceMoisture)
}

// 霉变速率
func spoilageRate(factor, clippedT, m float64) float64 {
	return factor * spoilageBase * math.Exp(spoilageExponent*clippedT) * (m / spoilageReferenceMoisture)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// 均匀网格坐标，最后一个节点精确落在 length 上
func linspace(dst []float64, length float64) {
	n := len(dst)
	dx := length / float64(n-1)
	for i := range dst {
		dst[i] = float64(i) * dx
	}
	dst[n-1] = length
}
