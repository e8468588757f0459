package hostmon

import (
	"github.com/guptarohit/asciigraph"
)

// ChartView is one tab of the usage chart: the series it plots
type ChartView struct {
	Name    string
	Metrics []Metric
}

// DefaultChartViews is every metric together, then each on its own
func DefaultChartViews() []ChartView {
	views := []ChartView{{Name: "All", Metrics: Metrics}}
	for _, m := range Metrics {
		views = append(views, ChartView{Name: m.Label(), Metrics: []Metric{m}})
	}
	return views
}

var seriesColors = map[Metric]asciigraph.AnsiColor{
	MetricCPU:    asciigraph.Red,
	MetricMemory: asciigraph.Blue,
	MetricDisk:   asciigraph.Green,
}

// renderChart plots the window with a fixed 0-100 y axis
func renderChart(view ChartView, window []Reading, width, height int) string {
	if len(window) == 0 {
		return "Waiting for data..."
	}

	data := make([][]float64, 0, len(view.Metrics))
	colors := make([]asciigraph.AnsiColor, 0, len(view.Metrics))
	legends := make([]string, 0, len(view.Metrics))
	for _, m := range view.Metrics {
		series := seriesOf(window, m)
		// a single point cannot be drawn as a line
		if len(series) == 1 {
			series = append(series, series[0])
		}
		data = append(data, series)
		colors = append(colors, seriesColors[m])
		legends = append(legends, m.Label())
	}

	// y axis labels take offset+len("100.0") columns
	plotWidth := max(width-10, 10)
	plotHeight := max(height-3, 3)

	return asciigraph.PlotMany(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption("Usage (%) "+window[0].Clock()+" - "+window[len(window)-1].Clock()),
	)
}
