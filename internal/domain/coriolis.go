package domain

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultPeriodHours is the rotation period used when none is given.
	DefaultPeriodHours = 24.0

	// MaxRangeLength bounds the number of values PeriodRange may return.
	MaxRangeLength = 1_000_000

	secondsPerHour = 3600.0
)

// ErrInvalidStep is returned when a range is requested with a non-positive step.
var ErrInvalidStep = errors.New("step must be positive")

// Curve is a single f profile for one rotation period.
type Curve struct {
	PeriodHours float64   // Rotation period in hours.
	Omega       float64   // Angular velocity in rad/s.
	F           []float64 // f in 1/s, aligned with the latitude grid.
}

// Sweep holds f for several rotation periods over a shared latitude grid.
type Sweep struct {
	Periods   []float64   // Rotation periods in hours, one per row.
	Latitudes []float64   // Latitudes in degrees, one per column.
	F         [][]float64 // F[i][j] is f for Periods[i] at Latitudes[j].
}

// Profile is the unit handed to renderers and exporters.
type Profile struct {
	Latitudes []float64
	Default   Curve
	Sweep     *Sweep // Optional.
}

// AngularVelocity converts a rotation period in hours to rad/s.
// Ω = 2π / (period × 3600)
//
// Zero yields +Inf and negative periods yield negative Ω; callers that take
// user input validate before calling.
func AngularVelocity(periodHours float64) float64 {
	return 2 * math.Pi / (periodHours * secondsPerHour)
}

// AngularVelocities applies AngularVelocity to each period.
func AngularVelocities(periodsHours []float64) []float64 {
	out := make([]float64, len(periodsHours))
	for i, p := range periodsHours {
		out[i] = AngularVelocity(p)
	}
	return out
}

// CoriolisParameter returns f = 2Ω sin(φ) for a latitude in degrees.
func CoriolisParameter(omega, latDeg float64) float64 {
	return 2 * omega * math.Sin(Deg2Rad(latDeg))
}

// FValues evaluates f at every latitude for a single angular velocity.
func FValues(omega float64, latitudes []float64) []float64 {
	out := make([]float64, len(latitudes))
	for i, lat := range latitudes {
		out[i] = CoriolisParameter(omega, lat)
	}
	return out
}

// FGrid evaluates f for every (period, latitude) pair.
// Row i is identical to FValues(AngularVelocity(periods[i]), latitudes).
func FGrid(periodsHours, latitudes []float64) [][]float64 {
	grid := make([][]float64, len(periodsHours))
	for i, omega := range AngularVelocities(periodsHours) {
		grid[i] = FValues(omega, latitudes)
	}
	return grid
}

// NewCurve builds the f profile for one rotation period.
func NewCurve(periodHours float64, latitudes []float64) Curve {
	omega := AngularVelocity(periodHours)
	return Curve{
		PeriodHours: periodHours,
		Omega:       omega,
		F:           FValues(omega, latitudes),
	}
}

// NewSweep builds the f grid for a set of rotation periods.
func NewSweep(periodsHours, latitudes []float64) *Sweep {
	return &Sweep{
		Periods:   periodsHours,
		Latitudes: latitudes,
		F:         FGrid(periodsHours, latitudes),
	}
}

// Curves returns one Curve per sweep row.
func (s *Sweep) Curves() []Curve {
	curves := make([]Curve, len(s.Periods))
	for i, p := range s.Periods {
		curves[i] = Curve{
			PeriodHours: p,
			Omega:       AngularVelocity(p),
			F:           s.F[i],
		}
	}
	return curves
}

// PeriodRange returns the half-open range [start, stop) in increments of step.
// An empty slice is returned when start >= stop.
func PeriodRange(start, stop, step float64) ([]float64, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidStep, step)
	}
	if math.IsNaN(start) || math.IsNaN(stop) || math.IsInf(start, 0) || math.IsInf(stop, 0) {
		return nil, fmt.Errorf("range bounds must be finite: [%v, %v)", start, stop)
	}
	if start >= stop {
		return []float64{}, nil
	}

	count := math.Ceil((stop - start) / step)
	if count > MaxRangeLength {
		return nil, fmt.Errorf("range [%v, %v) by %v has %.0f values, more than %d", start, stop, step, count, MaxRangeLength)
	}
	out := make([]float64, int(count))
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out, nil
}

// Label returns the legend text for a curve.
func (c Curve) Label() string {
	return fmt.Sprintf("%s hour rotation period", formatHours(c.PeriodHours))
}

func formatHours(h float64) string {
	if h == math.Trunc(h) && math.Abs(h) < 1e15 {
		return fmt.Sprintf("%d", int64(h))
	}
	return fmt.Sprintf("%g", h)
}
