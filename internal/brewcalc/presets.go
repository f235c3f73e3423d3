package brewcalc

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

// Preset is a style's typical carbonation
type Preset struct {
	Style string  `json:"style" yaml:"style"`
	CO2   float64 `json:"co2" yaml:"co2"` // g/L
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

var (
	presetsOnce sync.Once
	presets     []Preset
	presetsErr  error
)

// Presets returns the carbonation presets shipped with the service
func Presets() ([]Preset, error) {
	presetsOnce.Do(func() {
		presets, presetsErr = parsePresets(presetsYAML)
	})
	if presetsErr != nil {
		return nil, presetsErr
	}
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out, nil
}

// PresetFor looks up a style, ignoring case
func PresetFor(style string) (Preset, bool) {
	all, err := Presets()
	if err != nil {
		return Preset{}, false
	}
	for _, p := range all {
		if strings.EqualFold(p.Style, style) {
			return p, true
		}
	}
	return Preset{}, false
}

func parsePresets(data []byte) ([]Preset, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	for _, p := range file.Presets {
		if p.Style == "" {
			return nil, fmt.Errorf("%w: preset without style", ErrInvalidInput)
		}
		if p.CO2 <= 0 || p.CO2 > MaxCarbonation {
			return nil, fmt.Errorf("%w: preset %s has CO2 %.1f g/L", ErrInvalidInput, p.Style, p.CO2)
		}
	}
	return file.Presets, nil
}
