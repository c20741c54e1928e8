package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"go.ngs.io/coriolis/internal/adapter/store/csv"
	"go.ngs.io/coriolis/internal/adapter/store/sweep"
	"go.ngs.io/coriolis/internal/domain"
)

// PeriodSource names where the grid's rotation periods come from
type PeriodSource string

const (
	SourceRange   PeriodSource = "range"
	SourcePresets PeriodSource = "presets"
)

func main() {
	// Command line flags
	source := flag.String("source", string(SourceRange), "Period source: range or presets")
	csvPath := flag.String("csv", "", "CSV file with extra presets (presets source)")
	outDir := flag.String("out", "./data/grids", "Output directory for NetCDF files")
	name := flag.String("name", "", "Grid name (default: range or presets)")
	minHours := flag.Float64("min", 8, "Shortest rotation period in hours (range source)")
	maxHours := flag.Float64("max", 48, "Longest rotation period in hours, excluded (range source)")
	stepHours := flag.Float64("step", 1, "Rotation period step in hours (range source)")
	latStep := flag.Float64("lat-step", domain.DefaultLatStep, "Latitude resolution in degrees")

	flag.Parse()

	// Collect rotation periods
	var periods []float64
	switch PeriodSource(*source) {
	case SourceRange:
		p, err := domain.PeriodRange(*minHours, *maxHours, *stepHours)
		if err != nil {
			log.Fatalf("Invalid period range: %v", err)
		}
		periods = p
	case SourcePresets:
		presets, err := csv.NewPresetStore(*csvPath).LoadPresets()
		if err != nil {
			log.Fatalf("Failed to load presets: %v", err)
		}
		for _, p := range presets {
			periods = append(periods, p.PeriodHours)
		}
		sort.Float64s(periods)
		log.Printf("Loaded %d presets", len(presets))
	default:
		log.Fatalf("Unknown source: %s (use range or presets)", *source)
	}

	periods = cleanPeriods(periods)
	if len(periods) == 0 {
		log.Fatalf("No rotation periods to write")
	}

	lats, err := domain.LatitudeGrid(domain.DefaultLatStart, domain.DefaultLatStop, *latStep)
	if err != nil {
		log.Fatalf("Invalid latitude grid: %v", err)
	}

	gridName := *name
	if gridName == "" {
		gridName = *source
	}

	log.Printf("Generating sweep grid %q from %s", gridName, *source)
	log.Printf("Grid: %d periods (%g to %g hours) × %d latitudes (%.2f° step)",
		len(periods), periods[0], periods[len(periods)-1], len(lats), *latStep)

	// Create output directory
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	path, err := sweep.NewStore(*outDir).Save(gridName, domain.NewSweep(periods, lats))
	if err != nil {
		log.Fatalf("Failed to write grid: %v", err)
	}

	// Print summary
	sizeMB := float64(len(periods)*len(lats)*8) / 1024 / 1024
	log.Printf("✓ Generated %s", path)
	log.Printf("Data size: ~%.2f MB", sizeMB)
	fmt.Println(path)
}

// cleanPeriods drops zero and repeated periods from a sorted slice.
// A zero period has no finite angular velocity.
func cleanPeriods(periods []float64) []float64 {
	out := periods[:0]
	for i, p := range periods {
		if p == 0 {
			log.Printf("Warning: skipping zero rotation period")
			continue
		}
		if i > 0 && p == periods[i-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}
