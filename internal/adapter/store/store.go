package store

import "go.ngs.io/coriolis/internal/domain"

// PresetLoader is the interface for loading named rotation periods
type PresetLoader interface {
	// LoadPresets returns every known preset
	LoadPresets() ([]domain.Preset, error)

	// LookupPreset resolves a preset by name (case-insensitive)
	LookupPreset(name string) (domain.Preset, error)
}

// GridLookup is the interface for interpolating f from stored sweep grids
type GridLookup interface {
	Lookup(name string, periodHours, lat float64) (float64, error)
}
