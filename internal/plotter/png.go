package plotter

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PNGOptions controls the rendered image.
type PNGOptions struct {
	Title        string  // default "Cross sections: <target>"
	WidthInches  float64 // default 10
	HeightInches float64 // default 6
}

// RenderPNG writes the curves as a log-log line plot. Points with
// non-positive values (threshold reactions below threshold) cannot sit on a
// log axis and are dropped from their line.
func RenderPNG(cx *CrossSections, path string, opts PNGOptions) error {
	if len(cx.Series) == 0 {
		return fmt.Errorf("render %s: no series to plot", cx.Target)
	}

	width := opts.WidthInches
	if width <= 0 {
		width = 10
	}
	height := opts.HeightInches
	if height <= 0 {
		height = 6
	}
	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("Cross sections: %s", cx.Target)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Energy (eV)"
	p.Y.Label.Text = yAxisLabel(cx.Unit)
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	colors := seriesColors(len(cx.Series))
	lines := 0
	for i, s := range cx.Series {
		pts := make(plotter.XYs, 0, len(cx.EnergiesEV))
		for j, e := range cx.EnergiesEV {
			if s.Values[j] <= 0 {
				continue
			}
			pts = append(pts, plotter.XY{X: e, Y: s.Values[j]})
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("line for %s: %w", s.Label, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Label, line)
		lines++
	}
	if lines == 0 {
		return fmt.Errorf("render %s: no positive values to plot", cx.Target)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

func yAxisLabel(unit string) string {
	if unit == UnitPerCm {
		return "Macroscopic cross section (1/cm)"
	}
	return "Cross section (b)"
}

// seriesColors spreads n evenly spaced hues around the color wheel so
// neighboring lines stay distinguishable.
func seriesColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	out := make([]color.Color, n)
	for i := range out {
		out[i] = hslColor(float64(i)/float64(n), 0.7, 0.5)
	}
	return out
}

// hslColor converts an HSL triple (components in [0,1]) to an opaque RGBA
// via the chroma form of the conversion.
func hslColor(h, s, l float64) color.RGBA {
	c := (1 - math.Abs(2*l-1)) * s
	hp := h * 6
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r1, g1, b1 float64
	switch {
	case hp < 1:
		r1, g1, b1 = c, x, 0
	case hp < 2:
		r1, g1, b1 = x, c, 0
	case hp < 3:
		r1, g1, b1 = 0, c, x
	case hp < 4:
		r1, g1, b1 = 0, x, c
	case hp < 5:
		r1, g1, b1 = x, 0, c
	default:
		r1, g1, b1 = c, 0, x
	}

	m := l - c/2
	return color.RGBA{
		R: uint8((r1 + m) * 255),
		G: uint8((g1 + m) * 255),
		B: uint8((b1 + m) * 255),
		A: 255,
	}
}
