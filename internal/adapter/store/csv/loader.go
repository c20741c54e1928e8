// Package csv provides CSV-based rotation period presets.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.ngs.io/coriolis/internal/domain"
)

var expectedHeaders = []string{"name", "rotation_period_hours"}

// PresetStore merges the built-in presets with presets read from a CSV file.
// Rows in the file override built-ins of the same name.
type PresetStore struct {
	path string // Empty means built-ins only.
}

// NewPresetStore creates a preset store. path may be empty.
func NewPresetStore(path string) *PresetStore {
	return &PresetStore{
		path: path,
	}
}

// LoadPresets returns built-in and file presets sorted by name.
func (s *PresetStore) LoadPresets() ([]domain.Preset, error) {
	merged := make(map[string]domain.Preset, len(domain.StandardPresets))
	for name, p := range domain.StandardPresets {
		merged[name] = p
	}

	if s.path != "" {
		extra, err := s.readFile()
		if err != nil {
			return nil, err
		}
		for _, p := range extra {
			merged[p.Name] = p
		}
	}

	presets := make([]domain.Preset, 0, len(merged))
	for _, p := range merged {
		presets = append(presets, p)
	}
	sort.Slice(presets, func(i, j int) bool {
		return presets[i].Name < presets[j].Name
	})

	return presets, nil
}

// LookupPreset resolves a preset by name.
func (s *PresetStore) LookupPreset(name string) (domain.Preset, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	if s.path != "" {
		extra, err := s.readFile()
		if err != nil {
			return domain.Preset{}, err
		}
		for _, p := range extra {
			if p.Name == key {
				return p, nil
			}
		}
	}

	if p, ok := domain.LookupPreset(key); ok {
		return p, nil
	}
	return domain.Preset{}, fmt.Errorf("%w: %s", domain.ErrUnknownPreset, name)
}

func (s *PresetStore) readFile() ([]domain.Preset, error) {
	//nolint:gosec // G304: File path comes from configuration.
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open presets CSV %s: %w", s.path, err)
	}
	defer func() { _ = file.Close() }()

	return ReadPresets(file)
}

// ReadPresets parses "name,rotation_period_hours[,description]" rows.
func ReadPresets(r io.Reader) ([]domain.Preset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) < len(expectedHeaders) || len(header) > len(expectedHeaders)+1 {
		return nil, fmt.Errorf("invalid CSV header: expected %v, got %v", expectedHeaders, header)
	}
	for i, h := range expectedHeaders {
		if strings.TrimSpace(header[i]) != h {
			return nil, fmt.Errorf("invalid CSV header: expected column %d to be %s, got %s", i, h, header[i])
		}
	}

	presets := make([]domain.Preset, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("invalid CSV record on line %d: expected %d columns, got %d", line, len(header), len(record))
		}

		name := strings.ToLower(strings.TrimSpace(record[0]))
		if name == "" {
			return nil, fmt.Errorf("empty preset name on line %d", line)
		}

		period, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rotation period for preset %s: %w", name, err)
		}
		if period == 0 || math.IsNaN(period) || math.IsInf(period, 0) {
			return nil, fmt.Errorf("rotation period for preset %s must be finite and non-zero", name)
		}

		p := domain.Preset{Name: name, PeriodHours: period}
		if len(record) > 2 {
			p.Description = strings.TrimSpace(record[2])
		}
		presets = append(presets, p)
	}

	return presets, nil
}
