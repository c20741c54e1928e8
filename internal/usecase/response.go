package usecase

import (
	"math"
	"strconv"

	"go.ngs.io/coriolis/internal/domain"
)

// ProfileResponse is the JSON form of a profile
type ProfileResponse struct {
	LatitudesDeg []float64         `json:"latitudes_deg"`
	Default      CurveResponse     `json:"default"`
	Sweep        []CurveResponse   `json:"sweep,omitempty"`
	Meta         map[string]string `json:"meta"`
}

// CurveResponse is a single f profile
type CurveResponse struct {
	Label        string    `json:"label"`
	PeriodHours  float64   `json:"period_hours"`
	OmegaRadPerS float64   `json:"omega_rad_per_s"`
	FPerS        []float64 `json:"f_per_s"`
}

// PresetResponse describes a preset
type PresetResponse struct {
	Name         string  `json:"name"`
	PeriodHours  float64 `json:"period_hours"`
	OmegaRadPerS float64 `json:"omega_rad_per_s"`
	Description  string  `json:"description,omitempty"`
}

// NewProfileResponse converts a profile to its JSON form
func NewProfileResponse(p *domain.Profile) *ProfileResponse {
	resp := &ProfileResponse{
		LatitudesDeg: p.Latitudes,
		Default:      newCurveResponse(p.Default),
		Meta: map[string]string{
			"formula": "f = 2 * omega * sin(lat)",
			"points":  strconv.Itoa(len(p.Latitudes)),
		},
	}

	if p.Sweep != nil {
		curves := p.Sweep.Curves()
		resp.Sweep = make([]CurveResponse, len(curves))
		for i, c := range curves {
			resp.Sweep[i] = newCurveResponse(c)
		}
		resp.Meta["sweep_curves"] = strconv.Itoa(len(curves))
	}

	return resp
}

// NewPresetResponses converts presets to their JSON form
func NewPresetResponses(presets []domain.Preset) []PresetResponse {
	out := make([]PresetResponse, len(presets))
	for i, p := range presets {
		out[i] = PresetResponse{
			Name:         p.Name,
			PeriodHours:  p.PeriodHours,
			OmegaRadPerS: roundSignificant(domain.AngularVelocity(p.PeriodHours), 6),
			Description:  p.Description,
		}
	}
	return out
}

func newCurveResponse(c domain.Curve) CurveResponse {
	f := make([]float64, len(c.F))
	for i, v := range c.F {
		f[i] = roundSignificant(v, 6)
	}
	return CurveResponse{
		Label:        c.Label(),
		PeriodHours:  c.PeriodHours,
		OmegaRadPerS: roundSignificant(c.Omega, 6),
		FPerS:        f,
	}
}

// roundSignificant rounds to the given number of significant digits.
func roundSignificant(val float64, digits int) float64 {
	if val == 0 || math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(val, 'g', digits, 64), 64)
	if err != nil {
		return val
	}
	return r
}
