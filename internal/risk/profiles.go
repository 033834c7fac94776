package risk

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Built-in risk profile presets. Explicit config fields override preset
// values after selection.
const profilePresets = `
profiles:
  conservative:
    min_fractional_kelly: 0.10
    max_fractional_kelly: 0.25
    transaction_cost_pct: 0.02
    min_edge_threshold: 0.04
    max_position_pct: 0.10
    min_position_size: 0.10
  balanced:
    min_fractional_kelly: 0.25
    max_fractional_kelly: 0.50
    transaction_cost_pct: 0.02
    min_edge_threshold: 0.025
    max_position_pct: 0.20
    min_position_size: 0.10
  aggressive:
    min_fractional_kelly: 0.35
    max_fractional_kelly: 0.60
    transaction_cost_pct: 0.02
    min_edge_threshold: 0.015
    max_position_pct: 0.30
    min_position_size: 0.10
`

// Profile is one named preset of sizing bounds.
type Profile struct {
	MinFractionalKelly float64 `yaml:"min_fractional_kelly"`
	MaxFractionalKelly float64 `yaml:"max_fractional_kelly"`
	TransactionCostPct float64 `yaml:"transaction_cost_pct"`
	MinEdgeThreshold   float64 `yaml:"min_edge_threshold"`
	MaxPositionPct     float64 `yaml:"max_position_pct"`
	MinPositionSize    float64 `yaml:"min_position_size"`
}

type profileFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

var profiles = mustLoadProfiles()

func mustLoadProfiles() map[string]Profile {
	var file profileFile
	if err := yaml.Unmarshal([]byte(profilePresets), &file); err != nil {
		panic(fmt.Sprintf("risk: invalid embedded profile presets: %v", err))
	}
	return file.Profiles
}

// LookupProfile resolves a preset by name.
func LookupProfile(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("unknown risk profile %q (available: %s)",
			name, strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parameters expands a profile into a full parameter set with baseline
// dynamic thresholds.
func (p Profile) Parameters() Parameters {
	params := Parameters{
		MinFractionalKelly: p.MinFractionalKelly,
		MaxFractionalKelly: p.MaxFractionalKelly,
		TransactionCostPct: p.TransactionCostPct,
		MinEdgeThreshold:   p.MinEdgeThreshold,
		MaxPositionPct:     p.MaxPositionPct,
		MinPositionSize:    p.MinPositionSize,
	}
	params.normalize()
	return params
}
