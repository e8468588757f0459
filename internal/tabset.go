package hostmon

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TabSet switches the usage chart between views
type TabSet struct {
	views       []ChartView
	selectedTab int
	width       int
	height      int
}

func NewTabSet(views ...ChartView) *TabSet {
	return &TabSet{
		views:  views,
		width:  40,
		height: 10,
	}
}

func (ts *TabSet) SetSize(width, height int) *TabSet {
	ts.width = width
	ts.height = height
	return ts
}

// SelectTab changes the active tab, ignoring out of range indexes
func (ts *TabSet) SelectTab(index int) *TabSet {
	if index >= 0 && index < len(ts.views) {
		ts.selectedTab = index
	}
	return ts
}

// NextTab moves to the next tab (wraps around)
func (ts *TabSet) NextTab() *TabSet {
	if len(ts.views) > 0 {
		ts.selectedTab = (ts.selectedTab + 1) % len(ts.views)
	}
	return ts
}

// PrevTab moves to the previous tab (wraps around)
func (ts *TabSet) PrevTab() *TabSet {
	if len(ts.views) > 0 {
		ts.selectedTab = (ts.selectedTab - 1 + len(ts.views)) % len(ts.views)
	}
	return ts
}

func (ts *TabSet) Selected() ChartView {
	if len(ts.views) == 0 {
		return ChartView{}
	}
	return ts.views[ts.selectedTab]
}

// Render draws the tab bar and the chart of the selected view
func (ts *TabSet) Render(window []Reading) string {
	if len(ts.views) == 0 {
		return "No charts available"
	}

	var b strings.Builder
	contentHeight := ts.height
	if len(ts.views) > 1 {
		b.WriteString(ts.renderTabs())
		b.WriteString("\n")
		contentHeight -= 3
	}
	b.WriteString(renderChart(ts.Selected(), window, ts.width, contentHeight))
	return b.String()
}

func (ts *TabSet) renderTabs() string {
	activeTabStyle := lipgloss.NewStyle().
		Foreground(colorFocus).
		Background(colorBar).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorFocus)

	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("236"))

	renderedTabs := make([]string, len(ts.views))
	for i, view := range ts.views {
		if i == ts.selectedTab {
			renderedTabs[i] = activeTabStyle.Render(view.Name)
		} else {
			renderedTabs[i] = inactiveTabStyle.Render(view.Name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}
