// Package interp provides interpolation on regular grids.
package interp

import (
	"fmt"
	"math"
	"sort"
)

// GridCell is one rectangle of a regular grid with its four corner values.
type GridCell struct {
	X0, X1 float64 // X boundaries (latitude).
	Y0, Y1 float64 // Y boundaries (rotation period).

	// V00 at (X0, Y0), V10 at (X1, Y0), V01 at (X0, Y1), V11 at (X1, Y1).
	V00, V10, V01, V11 float64
}

// BilinearInterpolate interpolates inside a grid cell.
//
//	f(x,y) ≈ (1-t)(1-u)V00 + t(1-u)V10 + (1-t)u V01 + tu V11
//
// with t = (x-X0)/(X1-X0) and u = (y-Y0)/(Y1-Y0).
func BilinearInterpolate(cell GridCell, x, y float64) (float64, error) {
	if cell.X1 <= cell.X0 {
		return 0, fmt.Errorf("invalid grid cell: X1 must be > X0")
	}
	if cell.Y1 <= cell.Y0 {
		return 0, fmt.Errorf("invalid grid cell: Y1 must be > Y0")
	}

	const epsilon = 1e-9
	if x < cell.X0-epsilon || x > cell.X1+epsilon {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid cell [%.6f, %.6f]", x, cell.X0, cell.X1)
	}
	if y < cell.Y0-epsilon || y > cell.Y1+epsilon {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid cell [%.6f, %.6f]", y, cell.Y0, cell.Y1)
	}

	t := clamp01((x - cell.X0) / (cell.X1 - cell.X0))
	u := clamp01((y - cell.Y0) / (cell.Y1 - cell.Y0))

	return (1-t)*(1-u)*cell.V00 +
		t*(1-u)*cell.V10 +
		(1-t)*u*cell.V01 +
		t*u*cell.V11, nil
}

// LinearInterpolate interpolates between (x0, v0) and (x1, v1).
func LinearInterpolate(x0, x1, v0, v1, x float64) (float64, error) {
	if x1 <= x0 {
		return 0, fmt.Errorf("invalid interval: x1 must be > x0")
	}
	t := clamp01((x - x0) / (x1 - x0))
	return (1-t)*v0 + t*v1, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Grid2D is a regular grid where Values[i][j] belongs to (X[j], Y[i]).
type Grid2D struct {
	X      []float64
	Y      []float64
	Values [][]float64
}

// Validate checks dimensions and strict ordering of both axes.
func (g *Grid2D) Validate() error {
	if len(g.X) < 2 {
		return fmt.Errorf("grid must have at least 2 X coordinates")
	}
	if len(g.Y) < 1 {
		return fmt.Errorf("grid must have at least 1 Y coordinate")
	}
	if len(g.Values) != len(g.Y) {
		return fmt.Errorf("number of value rows (%d) must match Y coordinates (%d)", len(g.Values), len(g.Y))
	}
	for i, row := range g.Values {
		if len(row) != len(g.X) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(g.X))
		}
	}
	if !strictlyIncreasing(g.X) {
		return fmt.Errorf("X coordinates must be strictly increasing")
	}
	if !strictlyIncreasing(g.Y) {
		return fmt.Errorf("Y coordinates must be strictly increasing")
	}
	return nil
}

// InterpolateAt interpolates the grid at (x, y).
// A grid with a single Y row degenerates to linear interpolation along X,
// provided y matches that row.
func (g *Grid2D) InterpolateAt(x, y float64) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("invalid grid: %w", err)
	}

	xIdx, err := cellIndex(g.X, x)
	if err != nil {
		return 0, fmt.Errorf("x %w", err)
	}

	if len(g.Y) == 1 {
		if math.Abs(y-g.Y[0]) > 1e-9 {
			return 0, fmt.Errorf("y coordinate %.6f does not match the only grid row %.6f", y, g.Y[0])
		}
		row := g.Values[0]
		return LinearInterpolate(g.X[xIdx], g.X[xIdx+1], row[xIdx], row[xIdx+1], x)
	}

	yIdx, err := cellIndex(g.Y, y)
	if err != nil {
		return 0, fmt.Errorf("y %w", err)
	}

	cell := GridCell{
		X0:  g.X[xIdx],
		X1:  g.X[xIdx+1],
		Y0:  g.Y[yIdx],
		Y1:  g.Y[yIdx+1],
		V00: g.Values[yIdx][xIdx],
		V10: g.Values[yIdx][xIdx+1],
		V01: g.Values[yIdx+1][xIdx],
		V11: g.Values[yIdx+1][xIdx+1],
	}

	return BilinearInterpolate(cell, x, y)
}

// cellIndex returns i such that axis[i] <= v <= axis[i+1].
func cellIndex(axis []float64, v float64) (int, error) {
	last := len(axis) - 1
	if v < axis[0] || v > axis[last] || math.IsNaN(v) {
		return 0, fmt.Errorf("coordinate %.6f is outside grid range [%.6f, %.6f]", v, axis[0], axis[last])
	}
	// First index with axis[i] > v, minus one.
	i := sort.Search(len(axis), func(i int) bool { return axis[i] > v }) - 1
	if i >= last {
		i = last - 1
	}
	return i, nil
}

func strictlyIncreasing(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] {
			return false
		}
	}
	return true
}
