package risk

import (
	"gopkg.in/ini.v1"
)

type Config struct {
	Samples        int     // 抽样次数
	Concentration  float64 // Beta 分布形状参数的放大系数
	LowPercentile  float64
	HighPercentile float64
	Seed           uint64 // 0 表示使用时间作为种子
}

func DefaultConfig() Config {
	return Config{
		Samples:        2000,
		Concentration:  20,
		LowPercentile:  0.05,
		HighPercentile: 0.95,
	}
}

func LoadConfig(file *ini.File) Config {
	def := DefaultConfig()
	section := file.Section("risk")
	return Config{
		Samples:        section.Key("Samples").MustInt(def.Samples),
		Concentration:  section.Key("Concentration").MustFloat64(def.Concentration),
		LowPercentile:  section.Key("LowPercentile").MustFloat64(def.LowPercentile),
		HighPercentile: section.Key("HighPercentile").MustFloat64(def.HighPercentile),
		Seed:           section.Key("Seed").MustUint64(0),
	}
}
