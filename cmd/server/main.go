// Package main provides the Coriolis API HTTP server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.ngs.io/coriolis/internal/adapter/store"
	"go.ngs.io/coriolis/internal/adapter/store/csv"
	"go.ngs.io/coriolis/internal/adapter/store/sweep"
	httpHandler "go.ngs.io/coriolis/internal/http"
	"go.ngs.io/coriolis/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("coriolis-api version %s\n", version)
		return
	}

	// Load configuration from environment.
	port := getEnv("PORT", "8080")
	presetsPath := getEnv("PRESETS_CSV", "")
	gridsDir := getEnv("GRIDS_DIR", "./data/grids")

	log.Printf("Starting Coriolis API server...")
	log.Printf("Port: %s", port)
	if presetsPath != "" {
		log.Printf("Presets CSV: %s", presetsPath)
	} else {
		log.Printf("Presets CSV: none (built-in presets only)")
	}
	log.Printf("Grids directory: %s", gridsDir)

	// Initialize stores.
	var presetLoader store.PresetLoader = csv.NewPresetStore(presetsPath)
	gridStore := sweep.NewStore(gridsDir)
	var gridLookup store.GridLookup = gridStore

	if names, err := gridStore.Available(); err != nil {
		log.Printf("Warning: grids unavailable: %v", err)
	} else {
		log.Printf("Found %d sweep grids %v", len(names), names)
	}

	// Initialize use case.
	profileUC := usecase.NewProfileUseCase(presetLoader, gridLookup)

	// Setup router.
	router := httpHandler.SetupRouter(profileUC)

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Health check: http://localhost:%s/health", port)
	log.Printf("API endpoints:")
	log.Printf("  - GET /v1/presets")
	log.Printf("  - GET /v1/coriolis/profile")
	log.Printf("  - GET /v1/coriolis/plot")
	log.Printf("  - GET /v1/coriolis/value")

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Coriolis API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  coriolis-api [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  PRESETS_CSV             CSV file with extra rotation presets (optional)")
	fmt.Println("  GRIDS_DIR               Directory of NetCDF sweep grids (default: ./data/grids)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  coriolis-api")
	fmt.Println()
	fmt.Println("  # Start server on custom port with extra presets")
	fmt.Println("  PORT=3000 PRESETS_CSV=./data/presets.csv coriolis-api")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                    Health check")
	fmt.Println("  GET /v1/presets                List rotation presets")
	fmt.Println("  GET /v1/coriolis/profile       f across latitudes (JSON)")
	fmt.Println("  GET /v1/coriolis/plot          f across latitudes (png, svg or pdf)")
	fmt.Println("  GET /v1/coriolis/value         f at one latitude, optionally from a grid")
	fmt.Println()
}
