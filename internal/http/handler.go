package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gonum.org/v1/plot/vg"

	"go.ngs.io/coriolis/internal/adapter/render"
	"go.ngs.io/coriolis/internal/domain"
	"go.ngs.io/coriolis/internal/usecase"
)

// Figure sizes accepted by the plot endpoint, in inches.
const (
	defaultPlotInches = 8.0
	maxPlotInches     = 20.0
)

var contentTypes = map[string]string{
	"png": "image/png",
	"svg": "image/svg+xml",
	"pdf": "application/pdf",
}

// Handler handles HTTP requests for Coriolis profiles.
type Handler struct {
	profileUC *usecase.ProfileUseCase
}

// NewHandler creates a new HTTP handler.
func NewHandler(profileUC *usecase.ProfileUseCase) *Handler {
	return &Handler{
		profileUC: profileUC,
	}
}

// GetProfile handles GET /v1/coriolis/profile.
func (h *Handler) GetProfile(c *gin.Context) {
	req, err := parseProfileRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileUC.Execute(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, usecase.NewProfileResponse(profile))
}

// GetPlot handles GET /v1/coriolis/plot.
func (h *Handler) GetPlot(c *gin.Context) {
	req, err := parseProfileRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "png"))
	contentType, ok := contentTypes[format]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q (use png, svg or pdf)", format)})
		return
	}

	size, err := parseSize(c.Query("size_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileUC.Execute(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fig, err := render.NewFigure(profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if _, err := fig.WriteTo(&buf, size, size, format); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// GetValue handles GET /v1/coriolis/value.
func (h *Handler) GetValue(c *gin.Context) {
	latStr := c.Query("lat")
	if latStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat parameter is required"})
		return
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return
	}

	period := domain.DefaultPeriodHours
	if s := c.Query("period_hours"); s != "" {
		if period, err = usecase.ParseHours(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	resp, err := h.profileUC.Value(usecase.ValueRequest{
		PeriodHours: period,
		Lat:         lat,
		Grid:        c.Query("grid"),
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPresets handles GET /v1/presets.
func (h *Handler) GetPresets(c *gin.Context) {
	presets, err := h.profileUC.Presets()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := usecase.NewPresetResponses(presets)
	c.JSON(http.StatusOK, gin.H{
		"presets": response,
		"count":   len(response),
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// parseProfileRequest reads the shared profile query parameters.
func parseProfileRequest(c *gin.Context) (usecase.ProfileRequest, error) {
	req := usecase.ProfileRequest{
		Preset: c.Query("preset"),
	}

	if s := c.Query("period_hours"); s != "" {
		v, err := usecase.ParseHours(s)
		if err != nil {
			return req, err
		}
		req.PeriodHours = &v
	}

	minStr := c.Query("min_hours")
	maxStr := c.Query("max_hours")
	if minStr != "" || maxStr != "" {
		if minStr == "" || maxStr == "" {
			return req, errors.New("min_hours and max_hours must be given together")
		}
		sweep := &usecase.SweepRequest{}
		var err error
		if sweep.MinHours, err = parseFloat("min_hours", minStr); err != nil {
			return req, err
		}
		if sweep.MaxHours, err = parseFloat("max_hours", maxStr); err != nil {
			return req, err
		}
		if s := c.Query("step_hours"); s != "" {
			step, err := parseFloat("step_hours", s)
			if err != nil {
				return req, err
			}
			sweep.StepHours = &step
		}
		req.Sweep = sweep
	}

	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"lat_start", &req.LatStart},
		{"lat_stop", &req.LatStop},
		{"lat_step", &req.LatStep},
	} {
		if s := c.Query(p.name); s != "" {
			v, err := parseFloat(p.name, s)
			if err != nil {
				return req, err
			}
			*p.dst = v
		}
	}

	return req, nil
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func parseSize(s string) (vg.Length, error) {
	if s == "" {
		return vg.Length(defaultPlotInches) * vg.Inch, nil
	}
	v, err := parseFloat("size_in", s)
	if err != nil {
		return 0, err
	}
	if v < 1 || v > maxPlotInches {
		return 0, fmt.Errorf("size_in must be between 1 and %.0f", maxPlotInches)
	}
	return vg.Length(v) * vg.Inch, nil
}
