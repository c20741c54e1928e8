// Package main plots the Coriolis parameter across latitudes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.ngs.io/coriolis/internal/adapter/prompt"
	"go.ngs.io/coriolis/internal/adapter/render"
	"go.ngs.io/coriolis/internal/adapter/store/csv"
	"go.ngs.io/coriolis/internal/adapter/store/sweep"
	"go.ngs.io/coriolis/internal/domain"
	"go.ngs.io/coriolis/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Command line flags
	period := flag.String("period", "", "Rotation period in hours for the reference curve (default: 24)")
	preset := flag.String("preset", "", "Named rotation period, e.g. mars (see -presets)")
	interactive := flag.Bool("sweep", false, "Prompt for a range of rotation periods to overlay")
	minHours := flag.Float64("min", 0, "Shortest rotation period of a non-interactive sweep")
	maxHours := flag.Float64("max", 0, "Longest rotation period of a non-interactive sweep (excluded)")
	stepHours := flag.Float64("step", usecase.DefaultSweepStepHours, "Sweep step in hours")
	save := flag.Bool("save", false, "Save the figure into the figures directory")
	figuresDir := flag.String("figures", "", "Figures directory (default: $CORIOLIS_FIGURES_DIR or ./figures)")
	id := flag.String("id", "", "Figure id used in the file name (default: UTC timestamp)")
	format := flag.String("format", "png", "Saved figure format: png, svg or pdf")
	viewer := flag.String("viewer", "", "Viewer command (default: $CORIOLIS_VIEWER or the platform opener)")
	noDisplay := flag.Bool("no-display", false, "Do not open the figure in a viewer")
	netcdfPath := flag.String("netcdf", "", "Also write the computed curves to this NetCDF file")
	presetsPath := flag.String("presets", "", "CSV file with extra rotation presets (default: $PRESETS_CSV)")
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("coriolis version %s\n", version)
		return
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	presets := csv.NewPresetStore(firstNonEmpty(*presetsPath, os.Getenv("PRESETS_CSV")))
	uc := usecase.NewProfileUseCase(presets, nil)

	req := usecase.ProfileRequest{Preset: *preset}
	if *period != "" {
		h, err := usecase.ParseHours(*period)
		if err != nil {
			log.Fatalf("Invalid -period: %v", err)
		}
		req.PeriodHours = &h
	}

	sw, err := buildSweep(sweepFlags{
		interactive: *interactive,
		min:         *minHours,
		max:         *maxHours,
		step:        *stepHours,
		minSet:      set["min"],
		maxSet:      set["max"],
		stepSet:     set["step"],
	}, prompt.NewConsole(os.Stdin, os.Stdout))
	if err != nil {
		log.Fatalf("Invalid sweep: %v", err)
	}
	req.Sweep = sw

	profile, err := uc.Execute(req)
	if err != nil {
		log.Fatalf("Failed to compute profile: %v", err)
	}

	log.Printf("Reference curve: %s (omega = %.6e rad/s)", profile.Default.Label(), profile.Default.Omega)
	if profile.Sweep != nil {
		log.Printf("Sweep: %d rotation periods from %g to %g hours",
			len(profile.Sweep.Periods), profile.Sweep.Periods[0], profile.Sweep.Periods[len(profile.Sweep.Periods)-1])
	}

	fig, err := render.NewFigure(profile)
	if err != nil {
		log.Fatalf("Failed to build figure: %v", err)
	}

	if !*noDisplay {
		display, err := render.NewCommandDisplay(firstNonEmpty(*viewer, os.Getenv("CORIOLIS_VIEWER")))
		if err != nil {
			log.Fatalf("Failed to set up viewer: %v", err)
		}
		if err := display.Display(fig); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	if *save {
		dir := firstNonEmpty(*figuresDir, os.Getenv("CORIOLIS_FIGURES_DIR"))
		if dir == "" {
			if dir, err = render.DefaultFiguresDir(); err != nil {
				log.Fatalf("Failed to locate figures directory: %v", err)
			}
		}
		saver := render.NewSaver(dir)
		saver.Format = *format
		path, err := saver.Save(fig, *id)
		if err != nil {
			log.Fatalf("Failed to save figure: %v", err)
		}
		log.Printf("Saved figure to %s", path)
	}

	if *netcdfPath != "" {
		grid := profile.Sweep
		if grid == nil {
			grid = domain.NewSweep([]float64{profile.Default.PeriodHours}, profile.Latitudes)
		}
		if err := sweep.WriteFile(*netcdfPath, grid); err != nil {
			log.Fatalf("Failed to write NetCDF: %v", err)
		}
		log.Printf("Wrote %d curves to %s", len(grid.Periods), *netcdfPath)
	}
}

// sweepFlags are the sweep-related command line options.
type sweepFlags struct {
	interactive             bool
	min, max, step          float64
	minSet, maxSet, stepSet bool
}

// buildSweep turns the sweep flags into a request, prompting for bounds
// when -sweep is given. It returns nil when no sweep was asked for.
func buildSweep(f sweepFlags, in prompt.InputProvider) (*usecase.SweepRequest, error) {
	var sw *usecase.SweepRequest
	switch {
	case f.interactive:
		if f.minSet || f.maxSet {
			return nil, errors.New("-sweep prompts for the bounds; drop -min and -max")
		}
		var err error
		if sw, err = usecase.PromptSweep(in); err != nil {
			return nil, fmt.Errorf("failed to read sweep bounds: %w", err)
		}
	case f.minSet || f.maxSet:
		if !f.minSet || !f.maxSet {
			return nil, errors.New("-min and -max must be given together")
		}
		sw = &usecase.SweepRequest{MinHours: f.min, MaxHours: f.max}
	default:
		if f.stepSet {
			return nil, errors.New("-step needs -sweep or -min/-max")
		}
		return nil, nil
	}

	if f.stepSet {
		step := f.step
		sw.StepHours = &step
	}
	return sw, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Coriolis plotter v%s\n\n", version)
	fmt.Println("Plots f = 2 * Omega * sin(latitude) from pole to pole, optionally")
	fmt.Println("overlaying a sweep of rotation periods colored by period.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  coriolis [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  CORIOLIS_FIGURES_DIR    Directory for saved figures (default: ./figures, must exist)")
	fmt.Println("  CORIOLIS_VIEWER         Viewer command, e.g. \"feh\" or \"open -W\"")
	fmt.Println("  PRESETS_CSV             CSV file with extra rotation presets")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Earth only")
	fmt.Println("  coriolis")
	fmt.Println()
	fmt.Println("  # Ask for a sweep, then save into ./figures")
	fmt.Println("  coriolis -sweep -save")
	fmt.Println()
	fmt.Println("  # Mars with a 10-30 hour sweep, saved as SVG without opening a viewer")
	fmt.Println("  coriolis -preset mars -min 10 -max 30 -save -format svg -no-display")
	fmt.Println()
}
