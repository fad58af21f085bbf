package plotter

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// HTMLOptions controls the rendered chart page.
type HTMLOptions struct {
	Title    string // default "Cross sections: <target>"
	Subtitle string // default "unit=<unit> points=<n>"
	Width    string // CSS width, default "1200px"
	Height   string // CSS height, default "700px"
	Theme    string // echarts theme, default "dark"
}

// RenderHTML writes the curves as a self-contained ECharts line chart with
// log-log axes. As with the PNG renderer, non-positive values are dropped
// from their line because a log axis cannot show them.
func RenderHTML(cx *CrossSections, w io.Writer, htmlOpts HTMLOptions) error {
	if len(cx.Series) == 0 {
		return fmt.Errorf("render %s: no series to plot", cx.Target)
	}

	title := htmlOpts.Title
	if title == "" {
		title = fmt.Sprintf("Cross sections: %s", cx.Target)
	}
	subtitle := htmlOpts.Subtitle
	if subtitle == "" {
		subtitle = fmt.Sprintf("unit=%s points=%d", cx.Unit, len(cx.EnergiesEV))
	}
	width := htmlOpts.Width
	if width == "" {
		width = "1200px"
	}
	height := htmlOpts.Height
	if height == "" {
		height = "700px"
	}
	theme := htmlOpts.Theme
	if theme == "" {
		theme = "dark"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: theme, Width: width, Height: height}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "log", Name: "Energy (eV)", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Type: "log", Name: yAxisLabel(cx.Unit), NameLocation: "middle", NameGap: 45}),
	)

	plotted := 0
	for _, s := range cx.Series {
		data := make([]opts.LineData, 0, len(cx.EnergiesEV))
		for j, e := range cx.EnergiesEV {
			if s.Values[j] <= 0 {
				continue
			}
			data = append(data, opts.LineData{Value: []interface{}{e, s.Values[j]}})
		}
		if len(data) == 0 {
			continue
		}
		line.AddSeries(s.Label, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
		plotted++
	}
	if plotted == 0 {
		return fmt.Errorf("render %s: no positive values to plot", cx.Target)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
