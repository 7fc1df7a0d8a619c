package crop

import (
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"grainsim/model"
)

// 作物注册表，创建后只读
type Registry struct {
	profiles map[string]model.CropProfile
	names    []string
}

// 内置作物参数
var defaultProfiles = []model.CropProfile{
	{Name: "Wheat", Density: 780.0, SpecificHeat: 1600.0, ThermalConductivity: 0.18, MoistureDiffusivity: 2e-8, SpoilageFactor: 1.0},
	{Name: "Rice", Density: 750.0, SpecificHeat: 1500.0, ThermalConductivity: 0.14, MoistureDiffusivity: 3e-8, SpoilageFactor: 1.3},
	{Name: "Maize", Density: 720.0, SpecificHeat: 1700.0, ThermalConductivity: 0.16, MoistureDiffusivity: 2.5e-8, SpoilageFactor: 1.1},
}

func NewRegistry(profiles ...model.CropProfile) (*Registry, error) {
	r := &Registry{
		profiles: make(map[string]model.CropProfile, len(profiles)),
	}
	for _, p := range profiles {
		if err := Validate(p); err != nil {
			return nil, err
		}
		if _, ok := r.profiles[p.Name]; !ok {
			r.names = append(r.names, p.Name)
		}
		r.profiles[p.Name] = p
	}
	sort.Strings(r.names)
	log.WithFields(log.Fields{
		"crops": r.names,
	}).Debug("作物注册表已加载")
	return r, nil
}

// Wheat、Rice、Maize
func Default() *Registry {
	r, err := NewRegistry(defaultProfiles...)
	if err != nil {
		panic(err) // 内置参数必然合法
	}
	return r
}

func (r *Registry) Lookup(name string) (model.CropProfile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return model.CropProfile{}, &model.UnknownCropError{Name: name}
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

func (r *Registry) Len() int {
	return len(r.names)
}

// 五个物性参数必须为正的有限值
func Validate(p model.CropProfile) error {
	if p.Name == "" {
		return &model.InvalidParameterError{Param: "name", Reason: "crop name is empty"}
	}
	fields := []struct {
		name  string
		value float64
	}{
		{"density", p.Density},
		{"specific_heat", p.SpecificHeat},
		{"thermal_conductivity", p.ThermalConductivity},
		{"moisture_diffusivity", p.MoistureDiffusivity},
		{"spoilage_factor", p.SpoilageFactor},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value <= 0 {
			return &model.InvalidParameterError{
				Param:  p.Name + "." + f.name,
				Value:  f.value,
				Reason: "must be a positive finite number",
			}
		}
	}
	return nil
}
