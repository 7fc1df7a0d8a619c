package calculator

import (
	"math"
)

// 推送数据压缩
// 先按 Scale 量化为整数，再对相邻节点做差分，相邻节点温度接近时差分值很小
type Encoding struct {
	Start int     `json:"start"`
	Scale float64 `json:"scale"`
	Data  []int   `json:"data"`
}

func Encode(values []float64, scale float64) Encoding {
	e := Encoding{Scale: scale, Data: make([]int, 0, len(values))}
	if len(values) == 0 {
		return e
	}
	pre := quantize(values[0], scale)
	e.Start = pre
	for _, v := range values {
		q := quantize(v, scale)
		e.Data = append(e.Data, q-pre)
		pre = q
	}
	return e
}

func Decode(src Encoding) []float64 {
	res := make([]float64, 0, len(src.Data))
	cur := src.Start
	for _, d := range src.Data {
		cur += d
		res = append(res, float64(cur)*src.Scale)
	}
	return res
}

func quantize(v, scale float64) int {
	return int(math.Round(v / scale))
}
