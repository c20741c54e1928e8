// Package render draws Coriolis profiles with gonum/plot.
package render

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg" // png, jpg, tiff
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"go.ngs.io/coriolis/internal/domain"
)

// Axis and color bar labels.
const (
	XLabel        = "Value of f (s⁻¹)"
	YLabel        = "Latitude (Degrees)"
	ColorBarLabel = "Rotation period (hours)"
)

// Style controls how a figure looks.
type Style struct {
	ColorMap      func() palette.ColorMap
	SweepAlpha    float64
	SweepWidth    vg.Length
	DefaultWidth  vg.Length
	GuideAlpha    float64
	GuideSpan     float64 // Horizontal guide spans GuideSpan × the outermost default f values.
	ColorBarShare float64 // Fraction of the figure width given to the color bar.
	FontSize      vg.Length
}

// DefaultStyle mirrors the classic matplotlib look: magma-like colormap,
// translucent sweep lines and faint dashed guides.
func DefaultStyle() Style {
	return Style{
		ColorMap:      moreland.ExtendedBlackBody,
		SweepAlpha:    0.7,
		SweepWidth:    vg.Points(2),
		DefaultWidth:  vg.Points(1.5),
		GuideAlpha:    0.6,
		GuideSpan:     10,
		ColorBarShare: 0.12,
		FontSize:      vg.Points(14),
	}
}

// Figure is a rendered profile: the main plot and, when a sweep is present,
// a color bar keyed to rotation period.
type Figure struct {
	Main     *plot.Plot
	ColorBar *plot.Plot
	share    float64
}

// NewFigure builds a figure for p with the default style.
func NewFigure(p *domain.Profile) (*Figure, error) {
	return NewFigureWithStyle(p, DefaultStyle())
}

// NewFigureWithStyle builds a figure for p.
func NewFigureWithStyle(p *domain.Profile, st Style) (*Figure, error) {
	if p == nil || len(p.Latitudes) == 0 {
		return nil, fmt.Errorf("profile has no latitudes")
	}
	if len(p.Default.F) != len(p.Latitudes) {
		return nil, fmt.Errorf("default curve has %d values for %d latitudes", len(p.Default.F), len(p.Latitudes))
	}

	main := plot.New()
	applyAxisStyle(main, st)
	main.X.Label.Text = XLabel
	main.Y.Label.Text = YLabel
	main.Legend.Top = true
	main.Legend.TextStyle.Font.Size = st.FontSize
	main.X.Tick.Marker = plot.TickerFunc(func(min, max float64) []plot.Tick {
		ticks := plot.DefaultTicks{}.Ticks(min, max)
		for i := range ticks {
			if ticks[i].Label != "" {
				ticks[i].Label = formatF(ticks[i].Value)
			}
		}
		return ticks
	})

	fig := &Figure{Main: main, share: st.ColorBarShare}

	if p.Sweep != nil && len(p.Sweep.Periods) > 0 {
		cmap := st.ColorMap()
		lo, hi := periodBounds(p.Sweep.Periods)
		cmap.SetMin(lo)
		cmap.SetMax(hi)
		cmap.SetAlpha(st.SweepAlpha)

		for _, c := range p.Sweep.Curves() {
			line, err := plotter.NewLine(curveXYs(c.F, p.Sweep.Latitudes))
			if err != nil {
				return nil, fmt.Errorf("sweep curve %g h: %w", c.PeriodHours, err)
			}
			col, err := cmap.At(c.PeriodHours)
			if err != nil {
				return nil, fmt.Errorf("color for %g h: %w", c.PeriodHours, err)
			}
			line.LineStyle.Color = col
			line.LineStyle.Width = st.SweepWidth
			main.Add(line)
		}

		fig.ColorBar = newColorBar(cmap, st)
	}

	def, err := plotter.NewLine(curveXYs(p.Default.F, p.Latitudes))
	if err != nil {
		return nil, fmt.Errorf("default curve: %w", err)
	}
	def.LineStyle.Color = color.Black
	def.LineStyle.Width = st.DefaultWidth
	main.Add(def)
	main.Legend.Add(p.Default.Label(), def)

	guides, err := zeroGuides(p.Default.F, p.Latitudes, st)
	if err != nil {
		return nil, err
	}
	main.Add(guides...)

	main.Y.Min = -90
	main.Y.Max = 90

	return fig, nil
}

// zeroGuides returns the dashed reference lines through f = 0 and latitude 0.
// The horizontal guide is excluded from autoscaling so it does not stretch
// the f axis to GuideSpan times the data.
func zeroGuides(f, lats []float64, st Style) ([]plot.Plotter, error) {
	last := len(f) - 1
	guideColor := color.NRGBA{A: uint8(st.GuideAlpha * 255)}
	dashes := []vg.Length{vg.Points(6), vg.Points(4)}

	h, err := plotter.NewLine(plotter.XYs{
		{X: st.GuideSpan * f[0], Y: 0},
		{X: st.GuideSpan * f[last], Y: 0},
	})
	if err != nil {
		return nil, fmt.Errorf("horizontal guide: %w", err)
	}
	h.LineStyle.Color = guideColor
	h.LineStyle.Dashes = dashes

	v, err := plotter.NewLine(plotter.XYs{
		{X: 0, Y: lats[0]},
		{X: 0, Y: lats[last]},
	})
	if err != nil {
		return nil, fmt.Errorf("vertical guide: %w", err)
	}
	v.LineStyle.Color = guideColor
	v.LineStyle.Dashes = dashes

	return []plot.Plotter{unranged{h}, v}, nil
}

// unranged hides a plotter's DataRange so it does not affect autoscaling.
type unranged struct {
	plot.Plotter
}

func newColorBar(cmap palette.ColorMap, st Style) *plot.Plot {
	cb := plot.New()
	applyAxisStyle(cb, st)
	cb.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true})
	cb.HideX()
	cb.Y.Padding = 0
	cb.Y.Label.Text = ColorBarLabel
	return cb
}

func applyAxisStyle(p *plot.Plot, st Style) {
	p.BackgroundColor = color.White
	p.X.Label.TextStyle.Font.Size = st.FontSize
	p.Y.Label.TextStyle.Font.Size = st.FontSize
	p.X.Tick.Label.Font.Size = st.FontSize * 0.8
	p.Y.Tick.Label.Font.Size = st.FontSize * 0.8
}

// periodBounds returns the colormap range; a single period is widened so
// the range is never empty.
func periodBounds(periods []float64) (float64, float64) {
	lo, hi := periods[0], periods[0]
	for _, p := range periods[1:] {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	return lo, hi
}

func curveXYs(f, lats []float64) plotter.XYs {
	pts := make(plotter.XYs, len(f))
	for i := range f {
		pts[i].X = f[i]
		pts[i].Y = lats[i]
	}
	return pts
}

func formatF(v float64) string {
	if v == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1e", v)
}

// Draw draws the figure on dc, reserving the right edge for the color bar.
func (f *Figure) Draw(dc draw.Canvas) {
	if f.ColorBar == nil {
		f.Main.Draw(dc)
		return
	}
	width := dc.Max.X - dc.Min.X
	cbWidth := width * vg.Length(f.share)

	f.Main.Draw(draw.Crop(dc, 0, -cbWidth, 0, 0))
	f.ColorBar.Draw(draw.Crop(dc, width-cbWidth, 0, 0, 0))
}

// WriteTo encodes the figure in format (png, svg, pdf, ...) to w.
func (f *Figure) WriteTo(w io.Writer, width, height vg.Length, format string) (int64, error) {
	c, err := draw.NewFormattedCanvas(width, height, strings.ToLower(format))
	if err != nil {
		return 0, fmt.Errorf("unsupported figure format %q: %w", format, err)
	}
	f.Draw(draw.New(c))
	return c.WriteTo(w)
}
