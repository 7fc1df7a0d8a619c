package crop

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"grainsim/model"
)

const sectionPrefix = "crop."

// 按扩展名选择 ini 或 toml
func LoadFile(path string) (*Registry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return LoadToml(path)
	case ".ini", ".conf", ".cfg":
		return LoadIni(path)
	default:
		return nil, fmt.Errorf("crop registry %s: unsupported format", path)
	}
}

// [crop.Wheat]
// Density = 780
// ...
func LoadIni(path string) (*Registry, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load crop registry: %w", err)
	}
	return fromIni(file)
}

func fromIni(file *ini.File) (*Registry, error) {
	var profiles []model.CropProfile
	for _, section := range file.Sections() {
		if !strings.HasPrefix(section.Name(), sectionPrefix) {
			continue
		}
		p := model.CropProfile{
			Name:                strings.TrimPrefix(section.Name(), sectionPrefix),
			Density:             section.Key("Density").MustFloat64(0),
			SpecificHeat:        section.Key("SpecificHeat").MustFloat64(0),
			ThermalConductivity: section.Key("ThermalConductivity").MustFloat64(0),
			MoistureDiffusivity: section.Key("MoistureDiffusivity").MustFloat64(0),
			SpoilageFactor:      section.Key("SpoilageFactor").MustFloat64(1.0),
		}
		profiles = append(profiles, p)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("crop registry: no [%s*] sections", sectionPrefix)
	}
	log.WithFields(log.Fields{
		"count": len(profiles),
	}).Info("从 ini 读取作物参数")
	return NewRegistry(profiles...)
}

type tomlRegistry struct {
	Crop []model.CropProfile `toml:"crop"`
}

// [[crop]]
// name = "Wheat"
// density = 780.0
func LoadToml(path string) (*Registry, error) {
	var doc tomlRegistry
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("load crop registry: %w", err)
	}
	if len(doc.Crop) == 0 {
		return nil, fmt.Errorf("crop registry %s: no [[crop]] tables", path)
	}
	log.WithFields(log.Fields{
		"count": len(doc.Crop),
	}).Info("从 toml 读取作物参数")
	return NewRegistry(doc.Crop...)
}
