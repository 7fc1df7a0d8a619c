package calculator

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

type Config struct {
	Length   float64 // 截面长度
	Nodes    int     // 节点数
	TimeStep float64 // 时间步长，秒
	MaxSteps int     // 步数上限

	// 热点区域，占整个截面的比例 [HotspotStart, HotspotEnd)
	HotspotStart float64
	HotspotEnd   float64

	MoistureCoupling float64 // 温度梯度驱动的水分迁移系数

	// 速率方程中温度的截断范围
	ClipLow  float64
	ClipHigh float64

	Workers         int // 批量计算的并发数
	HistorySize     int // 保存的快照个数，0 表示不保存
	HistoryInterval int // 每隔多少步保存一次快照
}

func DefaultConfig() Config {
	return Config{
		Length:           DefaultLength,
		Nodes:            DefaultNodes,
		TimeStep:         DefaultTimeStep,
		MaxSteps:         DefaultMaxSteps,
		HotspotStart:     0.4,
		HotspotEnd:       0.6,
		MoistureCoupling: DefaultMoistureCoupling,
		ClipLow:          0,
		ClipHigh:         85,
		Workers:          4,
		HistorySize:      64,
		HistoryInterval:  100,
	}
}

func LoadConfig(file *ini.File) Config {
	def := DefaultConfig()
	section := file.Section("calculator")
	return Config{
		Length:           section.Key("Length").MustFloat64(def.Length),
		Nodes:            section.Key("Nodes").MustInt(def.Nodes),
		TimeStep:         section.Key("TimeStep").MustFloat64(def.TimeStep),
		MaxSteps:         section.Key("MaxSteps").MustInt(def.MaxSteps),
		HotspotStart:     section.Key("HotspotStart").MustFloat64(def.HotspotStart),
		HotspotEnd:       section.Key("HotspotEnd").MustFloat64(def.HotspotEnd),
		MoistureCoupling: section.Key("MoistureCoupling").MustFloat64(def.MoistureCoupling),
		ClipLow:          section.Key("ClipLow").MustFloat64(def.ClipLow),
		ClipHigh:         section.Key("ClipHigh").MustFloat64(def.ClipHigh),
		Workers:          section.Key("Workers").MustInt(def.Workers),
		HistorySize:      section.Key("HistorySize").MustInt(def.HistorySize),
		HistoryInterval:  section.Key("HistoryInterval").MustInt(def.HistoryInterval),
	}
}

// 读取配置文件，文件不存在时使用默认配置
func LoadIniFile(path string) (*ini.File, error) {
	if path == "" {
		return ini.Empty(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.WithField("path", path).Warn("配置文件不存在，使用默认配置")
		return ini.Empty(), nil
	}
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("配置文件读取错误，请检查文件路径: %w", err)
	}
	return file, nil
}

func (c Config) Validate() error {
	switch {
	case c.Nodes < 3:
		return fmt.Errorf("calculator config: Nodes=%d, need at least 3", c.Nodes)
	case !(c.Length > 0):
		return fmt.Errorf("calculator config: Length=%v must be positive", c.Length)
	case !(c.TimeStep > 0):
		return fmt.Errorf("calculator config: TimeStep=%v must be positive", c.TimeStep)
	case c.MaxSteps < 0:
		return fmt.Errorf("calculator config: MaxSteps=%d must not be negative", c.MaxSteps)
	case c.HotspotStart < 0 || c.HotspotEnd > 1 || c.HotspotStart > c.HotspotEnd:
		return fmt.Errorf("calculator config: hotspot band [%v, %v) out of [0, 1]", c.HotspotStart, c.HotspotEnd)
	case !(c.ClipLow < c.ClipHigh):
		return fmt.Errorf("calculator config: clip range [%v, %v] is empty", c.ClipLow, c.ClipHigh)
	case c.HistorySize > 0 && c.HistoryInterval <= 0:
		return fmt.Errorf("calculator config: HistoryInterval=%d must be positive", c.HistoryInterval)
	}
	return nil
}

// 节点间距
func (c Config) Dx() float64 {
	return c.Length / float64(c.Nodes-1)
}
