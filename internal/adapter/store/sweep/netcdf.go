// Package sweep stores Coriolis sweep grids as NetCDF files.
package sweep

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/coriolis/internal/adapter/interp"
	"go.ngs.io/coriolis/internal/domain"
)

// Variable and dimension names used in sweep files.
const (
	PeriodVarName = "period"
	LatVarName    = "lat"
	OmegaVarName  = "omega"
	FVarName      = "f"

	fileExt = ".nc"
)

// Store reads and writes sweep grids under a directory and answers
// point lookups by bilinear interpolation.
type Store struct {
	dataDir string
	cache   map[string]*interp.Grid2D // Keyed by grid name.
	mu      sync.RWMutex
}

// NewStore creates a store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{
		dataDir: dataDir,
		cache:   make(map[string]*interp.Grid2D),
	}
}

// ErrInvalidName is returned for grid names that would resolve outside the
// data directory.
var ErrInvalidName = errors.New("invalid grid name")

// Path returns the file path of a named grid. Names are slash-separated
// paths relative to the data directory and may not leave it.
func (s *Store) Path(name string) (string, error) {
	key, err := gridKey(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dataDir, filepath.FromSlash(key)+fileExt), nil
}

func gridKey(name string) (string, error) {
	key := strings.TrimSuffix(name, fileExt)
	if key == "" || strings.Contains(key, "\\") || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return key, nil
}

// Save writes a sweep under name and drops any cached copy.
func (s *Store) Save(name string, sw *domain.Sweep) (string, error) {
	key, err := gridKey(name)
	if err != nil {
		return "", err
	}
	path, err := s.Path(key)
	if err != nil {
		return "", err
	}
	if err := WriteFile(path, sw); err != nil {
		return "", err
	}

	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	return path, nil
}

// Load reads a named sweep.
func (s *Store) Load(name string) (*domain.Sweep, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return ReadFile(path)
}

// Available lists grid names found under the data directory.
func (s *Store) Available() ([]string, error) {
	if _, err := os.Stat(s.dataDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("sweep data directory does not exist: %s", s.dataDir)
	}

	names := make([]string, 0)
	err := filepath.WalkDir(s.dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), fileExt) {
			return nil
		}
		rel, err := filepath.Rel(s.dataDir, path)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), fileExt))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk sweep directory: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

// Lookup interpolates f at (periodHours, lat) from the named grid.
func (s *Store) Lookup(name string, periodHours, lat float64) (float64, error) {
	grid, err := s.grid(name)
	if err != nil {
		return 0, err
	}

	f, err := grid.InterpolateAt(lat, periodHours)
	if err != nil {
		return 0, fmt.Errorf("failed to interpolate %s at (%.4f h, %.4f°): %w", name, periodHours, lat, err)
	}
	return f, nil
}

func (s *Store) grid(name string) (*interp.Grid2D, error) {
	key, err := gridKey(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	if g, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return g, nil
	}
	s.mu.RUnlock()

	sw, err := s.Load(key)
	if err != nil {
		return nil, err
	}
	g := toGrid(sw)
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep grid %s: %w", key, err)
	}

	s.mu.Lock()
	s.cache[key] = g
	s.mu.Unlock()

	return g, nil
}

// toGrid lays the sweep out as latitude (X) by period (Y), rows sorted by period.
func toGrid(sw *domain.Sweep) *interp.Grid2D {
	order := make([]int, len(sw.Periods))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sw.Periods[order[a]] < sw.Periods[order[b]]
	})

	periods := make([]float64, len(order))
	values := make([][]float64, len(order))
	for i, idx := range order {
		periods[i] = sw.Periods[idx]
		values[i] = sw.F[idx]
	}

	return &interp.Grid2D{
		X:      sw.Latitudes,
		Y:      periods,
		Values: values,
	}
}

// WriteFile writes a sweep to a NetCDF4 file, replacing any existing file.
func WriteFile(path string, sw *domain.Sweep) error {
	if sw == nil || len(sw.Periods) == 0 || len(sw.Latitudes) == 0 {
		return fmt.Errorf("sweep must have at least one period and one latitude")
	}
	if len(sw.F) != len(sw.Periods) {
		return fmt.Errorf("sweep has %d rows for %d periods", len(sw.F), len(sw.Periods))
	}

	nPeriod := len(sw.Periods)
	nLat := len(sw.Latitudes)
	flat := make([]float64, 0, nPeriod*nLat)
	for i, row := range sw.F {
		if len(row) != nLat {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), nLat)
		}
		flat = append(flat, row...)
	}

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file: %w", err)
	}
	defer func() { _ = ds.Close() }()

	periodDim, err := ds.AddDim(PeriodVarName, uint64(nPeriod))
	if err != nil {
		return fmt.Errorf("failed to add period dimension: %w", err)
	}
	latDim, err := ds.AddDim(LatVarName, uint64(nLat))
	if err != nil {
		return fmt.Errorf("failed to add lat dimension: %w", err)
	}

	periodVar, err := ds.AddVar(PeriodVarName, netcdf.DOUBLE, []netcdf.Dim{periodDim})
	if err != nil {
		return err
	}
	latVar, err := ds.AddVar(LatVarName, netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	omegaVar, err := ds.AddVar(OmegaVarName, netcdf.DOUBLE, []netcdf.Dim{periodDim})
	if err != nil {
		return err
	}
	fVar, err := ds.AddVar(FVarName, netcdf.DOUBLE, []netcdf.Dim{periodDim, latDim})
	if err != nil {
		return err
	}

	attrs := []struct {
		v           netcdf.Var
		units, long string
	}{
		{periodVar, "hours", "rotation period"},
		{latVar, "degrees_north", "latitude"},
		{omegaVar, "rad s-1", "angular velocity"},
		{fVar, "s-1", "Coriolis parameter"},
	}
	for _, a := range attrs {
		if err := a.v.Attr("units").WriteBytes([]byte(a.units)); err != nil {
			return fmt.Errorf("failed to write units attribute: %w", err)
		}
		if err := a.v.Attr("long_name").WriteBytes([]byte(a.long)); err != nil {
			return fmt.Errorf("failed to write long_name attribute: %w", err)
		}
	}
	if err := ds.Attr("title").WriteBytes([]byte("Coriolis parameter f = 2 omega sin(lat)")); err != nil {
		return fmt.Errorf("failed to write title attribute: %w", err)
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	if err := periodVar.WriteFloat64s(sw.Periods); err != nil {
		return fmt.Errorf("failed to write periods: %w", err)
	}
	if err := latVar.WriteFloat64s(sw.Latitudes); err != nil {
		return fmt.Errorf("failed to write latitudes: %w", err)
	}
	if err := omegaVar.WriteFloat64s(domain.AngularVelocities(sw.Periods)); err != nil {
		return fmt.Errorf("failed to write omega: %w", err)
	}
	if err := fVar.WriteFloat64s(flat); err != nil {
		return fmt.Errorf("failed to write f: %w", err)
	}

	return nil
}

// ReadFile reads a sweep written by WriteFile or a compatible producer.
// Latitude may be named "lat" or "latitude", values may be FLOAT or DOUBLE,
// and f may be stored [lat][period] instead of [period][lat].
func ReadFile(path string) (*domain.Sweep, error) {
	//nolint:gosec // G304: Path comes from configuration.
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file %s: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	periods, err := readAxis(nc, PeriodVarName, "rotation_period", "period_hours")
	if err != nil {
		return nil, fmt.Errorf("period axis: %w", err)
	}
	lats, err := readAxis(nc, LatVarName, "latitude", "y")
	if err != nil {
		return nil, fmt.Errorf("latitude axis: %w", err)
	}

	fVar, err := nc.Var(FVarName)
	if err != nil {
		return nil, fmt.Errorf("variable %q not found: %w", FVarName, err)
	}
	dims, err := fVar.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("expected 2D variable %q, got %dD", FVarName, len(dims))
	}
	dim0, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	dim1, err := dims[1].Len()
	if err != nil {
		return nil, err
	}

	var values [][]float64
	switch {
	case int(dim0) == len(periods) && int(dim1) == len(lats):
		values, err = read2DFloat64Var(fVar, len(periods), len(lats))
	case int(dim0) == len(lats) && int(dim1) == len(periods):
		values, err = read2DFloat64Var(fVar, len(lats), len(periods))
		if err == nil {
			values = transpose2D(values)
		}
	default:
		return nil, fmt.Errorf("variable %q is %dx%d, expected %dx%d", FVarName, dim0, dim1, len(periods), len(lats))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", FVarName, err)
	}

	return &domain.Sweep{
		Periods:   periods,
		Latitudes: lats,
		F:         values,
	}, nil
}

func readAxis(nc netcdf.Dataset, names ...string) ([]float64, error) {
	for _, name := range names {
		if v, err := nc.Var(name); err == nil {
			return readFloat64Var(v)
		}
	}
	return nil, fmt.Errorf("variable not found (tried: %v)", names)
}

// readFloat64Var reads a 1D numeric variable as float64.
func readFloat64Var(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}
	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	return readFlat(v, int(length))
}

// read2DFloat64Var reads a 2D numeric variable as rows of float64.
func read2DFloat64Var(v netcdf.Var, nRows, nCols int) ([][]float64, error) {
	flat, err := readFlat(v, nRows*nCols)
	if err != nil {
		return nil, err
	}
	values := make([][]float64, nRows)
	for i := 0; i < nRows; i++ {
		values[i] = flat[i*nCols : (i+1)*nCols]
	}
	return values, nil
}

func readFlat(v netcdf.Var, n int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}

	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, n)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, n)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, n)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.INT:
		tmp := make([]int32, n)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, n)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
}

func transpose2D(data [][]float64) [][]float64 {
	if len(data) == 0 {
		return data
	}
	nRows := len(data)
	nCols := len(data[0])

	out := make([][]float64, nCols)
	for i := 0; i < nCols; i++ {
		out[i] = make([]float64, nRows)
		for j := 0; j < nRows; j++ {
			out[i][j] = data[j][i]
		}
	}
	return out
}
