package usecase

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"go.ngs.io/coriolis/internal/adapter/prompt"
	"go.ngs.io/coriolis/internal/adapter/store/csv"
	"go.ngs.io/coriolis/internal/domain"
)

type fakeGrid struct {
	name string
	f    float64
}

func (g *fakeGrid) Lookup(name string, _, _ float64) (float64, error) {
	if name != g.name {
		return 0, errors.New("not found")
	}
	return g.f, nil
}

func newTestUseCase() *ProfileUseCase {
	return NewProfileUseCase(csv.NewPresetStore(""), &fakeGrid{name: "stored", f: 1.5e-4})
}

func ptr(v float64) *float64 { return &v }

func TestExecute_Default(t *testing.T) {
	uc := newTestUseCase()

	p, err := uc.Execute(ProfileRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(p.Latitudes) != 360 {
		t.Errorf("expected 360 latitudes, got %d", len(p.Latitudes))
	}
	if p.Default.PeriodHours != 24 {
		t.Errorf("expected default period 24, got %v", p.Default.PeriodHours)
	}
	if p.Sweep != nil {
		t.Errorf("expected no sweep")
	}
	if math.Abs(p.Default.Omega-2*math.Pi/86400) > 1e-18 {
		t.Errorf("unexpected Ω %v", p.Default.Omega)
	}
}

func TestExecute_PresetAndSweep(t *testing.T) {
	uc := newTestUseCase()

	p, err := uc.Execute(ProfileRequest{
		Preset: "Jupiter",
		Sweep:  &SweepRequest{MinHours: 10, MaxHours: 15},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.Default.PeriodHours != 9.925 {
		t.Errorf("expected jupiter period, got %v", p.Default.PeriodHours)
	}
	if p.Sweep == nil || len(p.Sweep.Periods) != 5 {
		t.Fatalf("expected 5 sweep periods, got %+v", p.Sweep)
	}
	if len(p.Sweep.F) != 5 || len(p.Sweep.F[0]) != len(p.Latitudes) {
		t.Errorf("sweep grid has wrong shape")
	}
}

func TestExecute_CustomLatitudes(t *testing.T) {
	uc := newTestUseCase()

	p, err := uc.Execute(ProfileRequest{LatStart: 0, LatStop: 90, LatStep: 30})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(p.Latitudes) != 3 || p.Latitudes[2] != 60 {
		t.Errorf("expected [0 30 60], got %v", p.Latitudes)
	}
}

func TestProfileRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  ProfileRequest
	}{
		{"zero period", ProfileRequest{PeriodHours: ptr(0)}},
		{"infinite period", ProfileRequest{PeriodHours: ptr(math.Inf(1))}},
		{"period and preset", ProfileRequest{PeriodHours: ptr(24), Preset: "mars"}},
		{"bad latitude step", ProfileRequest{LatStart: -10, LatStop: 10, LatStep: -1}},
		{"latitude beyond pole", ProfileRequest{LatStart: -95, LatStop: 10, LatStep: 1}},
		{"inverted sweep", ProfileRequest{Sweep: &SweepRequest{MinHours: 30, MaxHours: 10}}},
		{"huge sweep", ProfileRequest{Sweep: &SweepRequest{MinHours: 1, MaxHours: 1e6}}},
		{"negative sweep step", ProfileRequest{Sweep: &SweepRequest{MinHours: 1, MaxHours: 5, StepHours: ptr(-1)}}},
		{"zero sweep step", ProfileRequest{Sweep: &SweepRequest{MinHours: 1, MaxHours: 5, StepHours: ptr(0)}}},
		{"infinite sweep step", ProfileRequest{Sweep: &SweepRequest{MinHours: 1, MaxHours: 5, StepHours: ptr(math.Inf(1))}}},
		{"infinite latitude step", ProfileRequest{LatStart: -90, LatStop: 90, LatStep: math.Inf(1)}},
		{"NaN latitude step", ProfileRequest{LatStart: -90, LatStop: 90, LatStep: math.NaN()}},
		{"NaN latitude start", ProfileRequest{LatStart: math.NaN(), LatStop: 90, LatStep: 1}},
		{"infinite latitude stop", ProfileRequest{LatStart: -90, LatStop: math.Inf(1), LatStep: 1}},
		{"tiny latitude step", ProfileRequest{LatStart: -90, LatStop: 90, LatStep: 1e-15}},
		{"too many latitudes", ProfileRequest{LatStart: -90, LatStop: 90, LatStep: 1e-3}},
		{"sweep times latitudes too large", ProfileRequest{
			LatStart: -90, LatStop: 90, LatStep: 0.01,
			Sweep: &SweepRequest{MinHours: 1, MaxHours: 5001},
		}},
	}

	for _, tt := range tests {
		if err := tt.req.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}

	retro := ProfileRequest{PeriodHours: ptr(-17.24)}
	if err := retro.Validate(); err != nil {
		t.Errorf("negative periods are retrograde and allowed: %v", err)
	}
}

func TestExecute_RejectsDegenerateLatitudes(t *testing.T) {
	uc := newTestUseCase()
	for _, step := range []float64{math.Inf(1), 1e-15, 1e-9} {
		p, err := uc.Execute(ProfileRequest{LatStart: -90, LatStop: 90, LatStep: step})
		if err == nil {
			t.Errorf("step %v: expected error, got %d latitudes", step, len(p.Latitudes))
		}
	}
}

func TestSweepRequest_Step(t *testing.T) {
	sw := SweepRequest{MinHours: 10, MaxHours: 13}
	periods, err := sw.Periods()
	if err != nil {
		t.Fatalf("Periods: %v", err)
	}
	if len(periods) != 3 {
		t.Errorf("default step: expected 3 periods, got %v", periods)
	}

	sw.StepHours = ptr(0.5)
	if periods, _ = sw.Periods(); len(periods) != 6 {
		t.Errorf("half-hour step: expected 6 periods, got %v", periods)
	}

	sw.StepHours = ptr(0)
	if err := sw.Validate(); err == nil {
		t.Errorf("explicit zero step must be rejected")
	}
}

func TestExecute_SweepThroughZero(t *testing.T) {
	uc := newTestUseCase()
	_, err := uc.Execute(ProfileRequest{Sweep: &SweepRequest{MinHours: -2, MaxHours: 2}})
	if err == nil {
		t.Fatalf("expected error for sweep containing a zero period")
	}
}

func TestExecute_UnknownPreset(t *testing.T) {
	uc := newTestUseCase()
	_, err := uc.Execute(ProfileRequest{Preset: "vulcan"})
	if !errors.Is(err, domain.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestValue(t *testing.T) {
	uc := newTestUseCase()

	v, err := uc.Value(ValueRequest{PeriodHours: 24, Lat: 90})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(v.FPerS-1.4544e-4) > 1e-8 || v.Source != "analytic" {
		t.Errorf("unexpected value %+v", v)
	}

	g, err := uc.Value(ValueRequest{PeriodHours: 24, Lat: 10, Grid: "stored"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if g.FPerS != 1.5e-4 || g.Source != "grid:stored" {
		t.Errorf("unexpected grid value %+v", g)
	}

	if _, err := uc.Value(ValueRequest{PeriodHours: 24, Lat: 91}); err == nil {
		t.Errorf("expected latitude error")
	}
	if _, err := uc.Value(ValueRequest{PeriodHours: 24, Lat: 0, Grid: "other"}); err == nil {
		t.Errorf("expected lookup error")
	}

	noGrids := NewProfileUseCase(csv.NewPresetStore(""), nil)
	if _, err := noGrids.Value(ValueRequest{PeriodHours: 24, Lat: 0, Grid: "stored"}); err == nil {
		t.Errorf("expected error when grids are not configured")
	}
}

func TestPromptSweep(t *testing.T) {
	answers := &prompt.Static{Answers: []string{"10", "20"}}
	s, err := PromptSweep(answers)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.MinHours != 10 || s.MaxHours != 20 {
		t.Errorf("unexpected sweep %+v", s)
	}
	if len(answers.Asked) != 2 || answers.Asked[0] != MinPeriodLabel || answers.Asked[1] != MaxPeriodLabel {
		t.Errorf("unexpected prompts %v", answers.Asked)
	}

	_, err = PromptSweep(&prompt.Static{Answers: []string{"ten"}})
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestNewProfileResponse(t *testing.T) {
	uc := newTestUseCase()
	p, err := uc.Execute(ProfileRequest{Sweep: &SweepRequest{MinHours: 20, MaxHours: 22}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	resp := NewProfileResponse(p)
	if resp.Default.Label != "24 hour rotation period" {
		t.Errorf("unexpected label %q", resp.Default.Label)
	}
	if len(resp.Sweep) != 2 || resp.Meta["sweep_curves"] != "2" {
		t.Errorf("unexpected sweep in response: %d curves, meta %v", len(resp.Sweep), resp.Meta)
	}
	// Index 180 is the equator.
	if resp.Default.FPerS[180] != 0 {
		t.Errorf("expected f = 0 at the equator, got %v", resp.Default.FPerS[180])
	}
	if math.Abs(resp.Default.OmegaRadPerS-7.27221e-5) > 1e-15 {
		t.Errorf("expected rounded Ω 7.27221e-5, got %v", resp.Default.OmegaRadPerS)
	}
}

func TestRoundSignificant(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.23456789e-4, 1.23457e-4},
		{-9.87654321, -9.87654},
		{0, 0},
	}
	for _, tt := range tests {
		if got := roundSignificant(tt.in, 6); got != tt.want {
			t.Errorf("roundSignificant(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}
