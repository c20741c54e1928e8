package render

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/plot/vg"

	"go.ngs.io/coriolis/internal/domain"
)

func testProfile(t *testing.T, sweep bool) *domain.Profile {
	t.Helper()
	lats := domain.DefaultLatitudes()
	p := &domain.Profile{
		Latitudes: lats,
		Default:   domain.NewCurve(domain.DefaultPeriodHours, lats),
	}
	if sweep {
		periods, err := domain.PeriodRange(10, 30, 1)
		if err != nil {
			t.Fatalf("PeriodRange: %v", err)
		}
		p.Sweep = domain.NewSweep(periods, lats)
	}
	return p
}

func TestNewFigure_DefaultOnly(t *testing.T) {
	fig, err := NewFigure(testProfile(t, false))
	if err != nil {
		t.Fatalf("NewFigure: %v", err)
	}
	if fig.ColorBar != nil {
		t.Errorf("expected no color bar without a sweep")
	}
	if fig.Main.Y.Min != -90 || fig.Main.Y.Max != 90 {
		t.Errorf("expected latitude axis [-90, 90], got [%v, %v]", fig.Main.Y.Min, fig.Main.Y.Max)
	}
	if fig.Main.X.Label.Text != XLabel || fig.Main.Y.Label.Text != YLabel {
		t.Errorf("unexpected axis labels %q, %q", fig.Main.X.Label.Text, fig.Main.Y.Label.Text)
	}

	// The horizontal guide reaches 10x the data but must not widen the axis.
	fPole := domain.CoriolisParameter(domain.AngularVelocity(24), 89.5)
	if fig.Main.X.Max > 1.01*fPole {
		t.Errorf("x axis stretched by the guide line: max %v, data max %v", fig.Main.X.Max, fPole)
	}
}

func TestNewFigure_WithSweep(t *testing.T) {
	fig, err := NewFigure(testProfile(t, true))
	if err != nil {
		t.Fatalf("NewFigure: %v", err)
	}
	if fig.ColorBar == nil {
		t.Fatalf("expected a color bar with a sweep")
	}
	if fig.ColorBar.Y.Label.Text != ColorBarLabel {
		t.Errorf("unexpected color bar label %q", fig.ColorBar.Y.Label.Text)
	}

	// 10 h rotation has the largest f.
	fFast := domain.CoriolisParameter(domain.AngularVelocity(10), 89.5)
	if fig.Main.X.Max < fFast {
		t.Errorf("x axis does not cover the sweep: max %v, want >= %v", fig.Main.X.Max, fFast)
	}
}

func TestNewFigure_SinglePeriodSweep(t *testing.T) {
	p := testProfile(t, false)
	p.Sweep = domain.NewSweep([]float64{12}, p.Latitudes)

	fig, err := NewFigure(p)
	if err != nil {
		t.Fatalf("NewFigure: %v", err)
	}

	var buf bytes.Buffer
	if _, err := fig.WriteTo(&buf, 4*vg.Inch, 4*vg.Inch, "png"); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
}

func TestNewFigure_Invalid(t *testing.T) {
	if _, err := NewFigure(nil); err == nil {
		t.Errorf("expected error for nil profile")
	}
	p := testProfile(t, false)
	p.Default.F = p.Default.F[:10]
	if _, err := NewFigure(p); err == nil {
		t.Errorf("expected error for mismatched curve")
	}
}

func TestFigure_WriteTo(t *testing.T) {
	fig, err := NewFigure(testProfile(t, true))
	if err != nil {
		t.Fatalf("NewFigure: %v", err)
	}

	var png bytes.Buffer
	if _, err := fig.WriteTo(&png, 5*vg.Inch, 5*vg.Inch, "PNG"); err != nil {
		t.Fatalf("WriteTo png: %v", err)
	}
	if !bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")) {
		t.Errorf("output is not a PNG")
	}

	var svg bytes.Buffer
	if _, err := fig.WriteTo(&svg, 5*vg.Inch, 5*vg.Inch, "svg"); err != nil {
		t.Fatalf("WriteTo svg: %v", err)
	}
	if !strings.Contains(svg.String(), "<svg") {
		t.Errorf("output is not an SVG")
	}

	if _, err := fig.WriteTo(&bytes.Buffer{}, vg.Inch, vg.Inch, "bmp"); err == nil {
		t.Errorf("expected error for unsupported format")
	}
}

func TestPeriodBounds(t *testing.T) {
	lo, hi := periodBounds([]float64{30, 10, 20})
	if lo != 10 || hi != 30 {
		t.Errorf("expected [10, 30], got [%v, %v]", lo, hi)
	}
	lo, hi = periodBounds([]float64{24})
	if lo != 23.5 || hi != 24.5 {
		t.Errorf("expected [23.5, 24.5], got [%v, %v]", lo, hi)
	}
}

func TestSaver_Save(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)
	s.Width, s.Height = 3*vg.Inch, 3*vg.Inch
	s.Now = func() time.Time { return time.Date(2025, 3, 1, 12, 30, 45, 0, time.UTC) }

	fig, err := NewFigure(testProfile(t, false))
	if err != nil {
		t.Fatalf("NewFigure: %v", err)
	}

	path, err := s.Save(fig, "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := filepath.Join(dir, "coriolis_f_value_id20250301T123045.png")
	if path != want {
		t.Errorf("expected %s, got %s", want, path)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("figure not written: %v", err)
	}

	path, err = s.Save(fig, "run7")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(path) != "coriolis_f_value_idrun7.png" {
		t.Errorf("unexpected file name %s", filepath.Base(path))
	}
}

func TestSaver_MissingDirectory(t *testing.T) {
	s := NewSaver(filepath.Join(t.TempDir(), "figures"))
	fig, err := NewFigure(testProfile(t, false))
	if err != nil {
		t.Fatalf("NewFigure: %v", err)
	}

	_, err = s.Save(fig, "x")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestCommandDisplay(t *testing.T) {
	truePath, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true(1) not available")
	}

	d, err := NewCommandDisplay(truePath)
	if err != nil {
		t.Fatalf("NewCommandDisplay: %v", err)
	}
	d.Width, d.Height = 2*vg.Inch, 2*vg.Inch
	d.Dir = t.TempDir()

	fig, err := NewFigure(testProfile(t, false))
	if err != nil {
		t.Fatalf("NewFigure: %v", err)
	}
	if err := d.Display(fig); err != nil {
		t.Errorf("Display: %v", err)
	}

	if err := (NopDisplay{}).Display(fig); err != nil {
		t.Errorf("NopDisplay: %v", err)
	}
}

// A viewer that forks and returns at once must still find the figure.
func TestCommandDisplay_DetachingViewer(t *testing.T) {
	shPath, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	marker := filepath.Join(dir, "seen")
	script := filepath.Join(dir, "viewer.sh")
	body := fmt.Sprintf("( sleep 0.2; if [ -s \"$1\" ]; then echo ok > %q; fi ) >/dev/null 2>&1 &\n", marker)
	if err := os.WriteFile(script, []byte(body), 0o600); err != nil {
		t.Fatalf("write viewer: %v", err)
	}

	d := &CommandDisplay{Command: shPath, Args: []string{script}, Dir: dir, Width: 2 * vg.Inch, Height: 2 * vg.Inch}
	fig, err := NewFigure(testProfile(t, false))
	if err != nil {
		t.Fatalf("NewFigure: %v", err)
	}

	path, err := d.show(fig)
	if err != nil {
		t.Fatalf("show: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(marker); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("detached viewer never saw %s", path)
		}
		time.Sleep(50 * time.Millisecond)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("figure removed after the viewer returned: %v", err)
	}
}

func TestDefaultViewer_PrefersBlockingViewers(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("unix viewer selection")
	}

	tests := []struct {
		installed []string
		want      string
	}{
		{[]string{"feh", "xdg-open"}, "feh"},
		{[]string{"eog", "xdg-open"}, "eog"},
		{[]string{"xdg-open"}, "xdg-open"},
		{nil, ""},
	}

	for _, tt := range tests {
		lookPath := func(name string) (string, error) {
			for _, n := range tt.installed {
				if n == name {
					return "/usr/bin/" + n, nil
				}
			}
			return "", exec.ErrNotFound
		}

		got := defaultViewer(lookPath)
		if tt.want == "" {
			if got != nil {
				t.Errorf("%v: expected no viewer, got %v", tt.installed, got)
			}
			continue
		}
		if len(got) == 0 || got[0] != tt.want {
			t.Errorf("%v: expected %s, got %v", tt.installed, tt.want, got)
		}
	}
}
