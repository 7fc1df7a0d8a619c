package risk

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"grainsim/model"
)

// 风险等级阈值
const (
	mediumThreshold = 0.3
	highThreshold   = 0.6
)

// Estimator 把峰值霉变量转换为 Beta 分布上的风险样本。
// 同一个 Estimator 可以被多个 goroutine 使用，随机源由 mu 保护。
type Estimator struct {
	cfg Config
	Log logrus.FieldLogger

	mu  sync.Mutex
	src rand.Source
}

func NewEstimator(cfg Config) *Estimator {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Estimator{
		cfg: cfg,
		Log: logrus.StandardLogger(),
		src: rand.NewSource(seed),
	}
}

// 固定种子，测试和复现用
func NewSeededEstimator(seed uint64) *Estimator {
	cfg := DefaultConfig()
	cfg.Seed = seed
	return NewEstimator(cfg)
}

func (e *Estimator) Estimate(peakSpoilage float64) (*model.RiskResult, error) {
	if math.IsNaN(peakSpoilage) || math.IsInf(peakSpoilage, 0) {
		return nil, &model.InvalidParameterError{
			Param:  "peak_spoilage",
			Value:  peakSpoilage,
			Reason: "must be finite",
		}
	}
	if e.cfg.Samples <= 0 {
		return nil, &model.InvalidParameterError{
			Param:  "samples",
			Value:  float64(e.cfg.Samples),
			Reason: "must be positive",
		}
	}

	p := Clip(peakSpoilage, 0, 1)
	alpha := 1 + p*e.cfg.Concentration
	beta := 1 + (1-p)*e.cfg.Concentration

	samples := make([]float64, e.cfg.Samples)
	e.mu.Lock()
	dist := distuv.Beta{Alpha: alpha, Beta: beta, Src: e.src}
	for i := range samples {
		samples[i] = dist.Rand()
	}
	e.mu.Unlock()

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	res := &model.RiskResult{
		Samples: samples,
		Mean:    stat.Mean(samples, nil),
		Low:     stat.Quantile(e.cfg.LowPercentile, stat.LinInterp, sorted, nil),
		High:    stat.Quantile(e.cfg.HighPercentile, stat.LinInterp, sorted, nil),
		Alpha:   alpha,
		Beta:    beta,
	}
	res.Level = Classify(res.Mean)

	e.Log.WithFields(logrus.Fields{
		"peak":  peakSpoilage,
		"alpha": alpha,
		"beta":  beta,
		"mean":  res.Mean,
		"low":   res.Low,
		"high":  res.High,
		"level": res.Level,
	}).Debug("风险分布估计完成")
	return res, nil
}

func Clip(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func Classify(mean float64) model.RiskLevel {
	switch {
	case mean > highThreshold:
		return model.RiskHigh
	case mean > mediumThreshold:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
