package domain

import (
	"errors"
	"sort"
	"strings"
)

// ErrUnknownPreset is returned when a preset name is not known.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named rotation period.
type Preset struct {
	Name        string  // E.g., "earth", "mars".
	PeriodHours float64 // Negative for retrograde rotation.
	Description string
}

// StandardPresets contains sidereal rotation periods (hours) of solar system bodies.
// Reference: https://nssdc.gsfc.nasa.gov/planetary/factsheet/
var StandardPresets = map[string]Preset{
	// Mean solar day, the conventional default.
	"earth":          {Name: "earth", PeriodHours: 24.0, Description: "Earth (mean solar day)"},
	"earth-sidereal": {Name: "earth-sidereal", PeriodHours: 23.9345, Description: "Earth (sidereal day)"},

	"mars":    {Name: "mars", PeriodHours: 24.6229, Description: "Mars"},
	"jupiter": {Name: "jupiter", PeriodHours: 9.925, Description: "Jupiter (System III)"},
	"saturn":  {Name: "saturn", PeriodHours: 10.656, Description: "Saturn"},
	"neptune": {Name: "neptune", PeriodHours: 16.11, Description: "Neptune"},
	"moon":    {Name: "moon", PeriodHours: 655.72, Description: "Moon"},

	// Retrograde.
	"venus":  {Name: "venus", PeriodHours: -5832.5, Description: "Venus (retrograde)"},
	"uranus": {Name: "uranus", PeriodHours: -17.24, Description: "Uranus (retrograde)"},
}

// LookupPreset returns the preset with the given name, ignoring case.
func LookupPreset(name string) (Preset, bool) {
	p, ok := StandardPresets[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// GetAllPresets returns the standard presets sorted by name.
func GetAllPresets() []Preset {
	presets := make([]Preset, 0, len(StandardPresets))
	for _, p := range StandardPresets {
		presets = append(presets, p)
	}
	sort.Slice(presets, func(i, j int) bool {
		return presets[i].Name < presets[j].Name
	})
	return presets
}
