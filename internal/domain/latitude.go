package domain

import (
	"fmt"
	"math"
)

// Default latitude grid: pole to pole, upper bound excluded.
const (
	DefaultLatStart = -90.0
	DefaultLatStop  = 90.0
	DefaultLatStep  = 0.5

	// MaxLatitudePoints bounds the size of a latitude grid.
	MaxLatitudePoints = 100000
)

// DefaultLatitudes returns the 360 point grid -90, -89.5, ..., 89.5.
func DefaultLatitudes() []float64 {
	lats, _ := LatitudeGrid(DefaultLatStart, DefaultLatStop, DefaultLatStep)
	return lats
}

// LatitudeGrid returns degrees in [start, stop) spaced by step.
// Points are computed as start + i*step so that no rounding error accumulates.
func LatitudeGrid(start, stop, step float64) ([]float64, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("latitude %w: got %v", ErrInvalidStep, step)
	}
	if math.IsNaN(start) || math.IsNaN(stop) {
		return nil, fmt.Errorf("latitude bounds must be numbers, got [%v, %v)", start, stop)
	}
	if start < -90 || stop > 90 {
		return nil, fmt.Errorf("latitude bounds must lie within [-90, 90], got [%v, %v)", start, stop)
	}
	if start >= stop {
		return nil, fmt.Errorf("latitude start (%v) must be below stop (%v)", start, stop)
	}

	count := math.Ceil((stop - start) / step)
	if count > MaxLatitudePoints {
		return nil, fmt.Errorf("latitude grid of %.0f points exceeds %d", count, MaxLatitudePoints)
	}
	n := int(count)
	if n == 0 {
		return nil, fmt.Errorf("latitude grid [%v, %v) by %v is empty", start, stop, step)
	}
	lats := make([]float64, n)
	for i := range lats {
		lats[i] = start + float64(i)*step
	}
	return lats, nil
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
