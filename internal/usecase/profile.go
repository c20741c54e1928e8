package usecase

import (
	"fmt"
	"math"
	"strconv"

	"go.ngs.io/coriolis/internal/adapter/prompt"
	"go.ngs.io/coriolis/internal/adapter/store"
	"go.ngs.io/coriolis/internal/domain"
)

// Request size limits.
const (
	// MaxSweepCurves bounds the number of curves a single sweep may hold.
	MaxSweepCurves = 10000

	// MaxProfileValues bounds curves × latitudes for one request.
	MaxProfileValues = 4_000_000

	// DefaultSweepStepHours is used when a sweep gives no step.
	DefaultSweepStepHours = 1.0
)

// Prompt labels for the interactive sweep.
const (
	MinPeriodLabel = "Min rotation period in hours (shortest): "
	MaxPeriodLabel = "Max rotation period in hours (longest, excluded): "
)

// ProfileRequest encapsulates a profile request
type ProfileRequest struct {
	// Rotation period in hours (mutually exclusive with Preset)
	PeriodHours *float64

	// Named rotation period (e.g., "mars")
	Preset string

	// Optional sweep over rotation periods
	Sweep *SweepRequest

	// Latitude grid; zero values select the default -90..90 by 0.5
	LatStart float64
	LatStop  float64
	LatStep  float64
}

// SweepRequest describes the half-open period range [MinHours, MaxHours)
type SweepRequest struct {
	MinHours  float64
	MaxHours  float64
	StepHours *float64 // Nil selects DefaultSweepStepHours
}

// ValueRequest asks for f at a single latitude
type ValueRequest struct {
	PeriodHours float64
	Lat         float64
	Grid        string // Optional: interpolate from a stored sweep grid instead
}

// ValueResponse is f at a single point
type ValueResponse struct {
	PeriodHours  float64 `json:"period_hours"`
	Lat          float64 `json:"lat"`
	OmegaRadPerS float64 `json:"omega_rad_per_s"`
	FPerS        float64 `json:"f_per_s"`
	Source       string  `json:"source"`
}

// ProfileUseCase orchestrates profile computation
type ProfileUseCase struct {
	presets store.PresetLoader
	grids   store.GridLookup
}

// NewProfileUseCase creates a new profile use case. grids may be nil.
func NewProfileUseCase(presets store.PresetLoader, grids store.GridLookup) *ProfileUseCase {
	return &ProfileUseCase{
		presets: presets,
		grids:   grids,
	}
}

// Validate checks if the request is valid
func (r *ProfileRequest) Validate() error {
	if r.PeriodHours != nil && r.Preset != "" {
		return fmt.Errorf("period_hours and preset are mutually exclusive")
	}
	if r.PeriodHours != nil {
		if err := validatePeriod(*r.PeriodHours); err != nil {
			return err
		}
	}

	nLat := math.Ceil((domain.DefaultLatStop - domain.DefaultLatStart) / domain.DefaultLatStep)
	if r.usesCustomLatitudes() {
		if isBad(r.LatStart) || isBad(r.LatStop) || isBad(r.LatStep) {
			return fmt.Errorf("latitude bounds and step must be finite numbers")
		}
		if r.LatStep <= 0 {
			return fmt.Errorf("latitude step must be positive")
		}
		if r.LatStart < -90 || r.LatStop > 90 {
			return fmt.Errorf("latitude must be between -90 and 90")
		}
		if r.LatStart >= r.LatStop {
			return fmt.Errorf("latitude start must be below latitude stop")
		}
		nLat = math.Ceil((r.LatStop - r.LatStart) / r.LatStep)
		if nLat > domain.MaxLatitudePoints {
			return fmt.Errorf("too many latitudes (%.0f) - increase the latitude step", nLat)
		}
	}

	if r.Sweep == nil {
		return nil
	}
	if err := r.Sweep.Validate(); err != nil {
		return err
	}
	curves := r.Sweep.curveCount() + 1
	if curves*nLat > MaxProfileValues {
		return fmt.Errorf("profile too large (%.0f curves × %.0f latitudes) - narrow the sweep or coarsen the latitude grid", curves, nLat)
	}
	return nil
}

// Validate checks the sweep bounds
func (s *SweepRequest) Validate() error {
	if isBad(s.MinHours) || isBad(s.MaxHours) {
		return fmt.Errorf("sweep bounds must be finite numbers")
	}
	step := s.step()
	if isBad(step) || step <= 0 {
		return fmt.Errorf("sweep step must be positive")
	}
	if s.MinHours >= s.MaxHours {
		return fmt.Errorf("sweep min (%g) must be below max (%g)", s.MinHours, s.MaxHours)
	}
	if n := s.curveCount(); n > MaxSweepCurves {
		return fmt.Errorf("too many sweep curves (%.0f) - narrow the range or increase the step", n)
	}
	return nil
}

// Periods expands the sweep into rotation periods
func (s *SweepRequest) Periods() ([]float64, error) {
	periods, err := domain.PeriodRange(s.MinHours, s.MaxHours, s.step())
	if err != nil {
		return nil, err
	}
	for _, p := range periods {
		if p == 0 {
			return nil, fmt.Errorf("sweep [%g, %g) includes a zero rotation period", s.MinHours, s.MaxHours)
		}
	}
	return periods, nil
}

func (s *SweepRequest) step() float64 {
	if s.StepHours == nil {
		return DefaultSweepStepHours
	}
	return *s.StepHours
}

func (s *SweepRequest) curveCount() float64 {
	return math.Ceil((s.MaxHours - s.MinHours) / s.step())
}

func (r *ProfileRequest) usesCustomLatitudes() bool {
	return r.LatStart != 0 || r.LatStop != 0 || r.LatStep != 0
}

func (r *ProfileRequest) latitudes() ([]float64, error) {
	if !r.usesCustomLatitudes() {
		return domain.DefaultLatitudes(), nil
	}
	return domain.LatitudeGrid(r.LatStart, r.LatStop, r.LatStep)
}

// Execute builds the default curve and the optional sweep
func (uc *ProfileUseCase) Execute(req ProfileRequest) (*domain.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	period, err := uc.resolvePeriod(req.PeriodHours, req.Preset)
	if err != nil {
		return nil, err
	}

	lats, err := req.latitudes()
	if err != nil {
		return nil, fmt.Errorf("invalid latitude grid: %w", err)
	}

	profile := &domain.Profile{
		Latitudes: lats,
		Default:   domain.NewCurve(period, lats),
	}

	if req.Sweep != nil {
		periods, err := req.Sweep.Periods()
		if err != nil {
			return nil, fmt.Errorf("invalid sweep: %w", err)
		}
		profile.Sweep = domain.NewSweep(periods, lats)
	}

	return profile, nil
}

// Value computes f at a single latitude, analytically or from a stored grid
func (uc *ProfileUseCase) Value(req ValueRequest) (*ValueResponse, error) {
	if err := validatePeriod(req.PeriodHours); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if req.Lat < -90 || req.Lat > 90 || math.IsNaN(req.Lat) {
		return nil, fmt.Errorf("invalid request: latitude must be between -90 and 90")
	}

	omega := domain.AngularVelocity(req.PeriodHours)
	resp := &ValueResponse{
		PeriodHours:  req.PeriodHours,
		Lat:          req.Lat,
		OmegaRadPerS: omega,
		Source:       "analytic",
	}

	if req.Grid == "" {
		resp.FPerS = domain.CoriolisParameter(omega, req.Lat)
		return resp, nil
	}

	if uc.grids == nil {
		return nil, fmt.Errorf("grid lookups are not configured")
	}
	f, err := uc.grids.Lookup(req.Grid, req.PeriodHours, req.Lat)
	if err != nil {
		return nil, fmt.Errorf("failed to look up grid %s: %w", req.Grid, err)
	}
	resp.FPerS = f
	resp.Source = "grid:" + req.Grid
	return resp, nil
}

// Presets lists the known presets
func (uc *ProfileUseCase) Presets() ([]domain.Preset, error) {
	return uc.presets.LoadPresets()
}

func (uc *ProfileUseCase) resolvePeriod(period *float64, preset string) (float64, error) {
	if period != nil {
		return *period, nil
	}
	if preset == "" {
		return domain.DefaultPeriodHours, nil
	}
	p, err := uc.presets.LookupPreset(preset)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve preset: %w", err)
	}
	return p.PeriodHours, nil
}

// PromptSweep asks for the sweep bounds through an input provider
func PromptSweep(p prompt.InputProvider) (*SweepRequest, error) {
	lo, err := prompt.AskFloat(p, MinPeriodLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to read minimum rotation period: %w", err)
	}
	hi, err := prompt.AskFloat(p, MaxPeriodLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to read maximum rotation period: %w", err)
	}
	return &SweepRequest{MinHours: lo, MaxHours: hi}, nil
}

func validatePeriod(h float64) error {
	if isBad(h) || h == 0 {
		return fmt.Errorf("rotation period must be a finite, non-zero number of hours")
	}
	return nil
}

func isBad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// ParseHours parses a rotation period given as text
func ParseHours(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rotation period %q: %w", s, err)
	}
	return v, nil
}
