package hostmon

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTMLReport renders the readings as an interactive line chart page
func WriteHTMLReport(path string, readings []Reading, sessionID string) error {
	if len(readings) == 0 {
		return fmt.Errorf("no readings to report")
	}

	page := components.NewPage()
	page.PageTitle = "System Usage Report"
	if sessionID != "" {
		page.PageTitle = fmt.Sprintf("System Usage Report - %s", sessionID)
	}
	page.AddCharts(usageChart(readings))

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func usageChart(readings []Reading) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "System Usage Over Time",
			Subtitle: fmt.Sprintf("%d samples, %s to %s", len(readings), readings[0].Clock(), readings[len(readings)-1].Clock()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Time",
			Type: "category",
			AxisLabel: &opts.AxisLabel{
				Rotate: 45,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Usage (%)",
			Type: "value",
			Min:  0,
			Max:  100,
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "slider",
			Start: 0,
			End:   100,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "100%",
			Height: "450px",
		}),
	)

	line.SetXAxis(labelsOf(readings))
	for _, m := range Metrics {
		values := seriesOf(readings, m)
		data := make([]opts.LineData, len(values))
		for i, v := range values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(m.Label(), data,
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol: opts.Bool(false),
			}),
		)
	}
	return line
}
