package hostmon

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// warningMargin is how close to its threshold a value turns the bar yellow
const warningMargin = 10.0

// gaugeColor picks the bar colour for a value relative to its threshold
func gaugeColor(value, threshold float64) lipgloss.Color {
	switch {
	case value > threshold:
		return colorDanger
	case value >= threshold-warningMargin:
		return colorWarning
	default:
		return colorOK
	}
}

// gaugeLabel is the line shown above each bar, e.g. "CPU Usage: 12.5%"
func gaugeLabel(m Metric, value float64) string {
	return fmt.Sprintf("%s Usage: %s", m.Label(), formatPercent(value))
}

// renderGauges draws a labelled progress bar per metric
func renderGauges(r Reading, t Thresholds, width int) string {
	labelStyle := lipgloss.NewStyle().Bold(true)

	lines := make([]string, 0, len(Metrics)*2)
	for _, m := range Metrics {
		value := r.Value(m)
		bar := progress.New(
			progress.WithWidth(max(width, 10)),
			progress.WithoutPercentage(),
			progress.WithSolidFill(string(gaugeColor(value, t.For(m)))),
		)
		lines = append(lines,
			labelStyle.Render(gaugeLabel(m, value)),
			bar.ViewAs(value/100),
		)
	}
	return strings.Join(lines, "\n")
}
