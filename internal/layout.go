package hostmon

import (
	"github.com/charmbracelet/lipgloss"
)

// Vertical renders panes stacked on top of each other
func Vertical(panes ...Pane) string {
	if len(panes) == 0 {
		return ""
	}
	views := make([]string, len(panes))
	for i, pane := range panes {
		views[i] = pane.Render()
	}
	return lipgloss.JoinVertical(lipgloss.Left, views...)
}

// splitWidth divides width into a left and right column, giving the left
// column the given share
func splitWidth(width int, leftShare float64) (int, int) {
	left := int(float64(width) * leftShare)
	return left, width - left
}

// overlay centres a dialog on a shaded screen
func overlay(width, height int, dialog string) string {
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		dialog,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(colorBar),
	)
}
