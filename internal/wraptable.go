package hostmon

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// WrapTable wraps a lipgloss table so it never grows taller than maxHeight.
// Rows that do not fit continue in another table to the right.
type WrapTable struct {
	headers     []string
	rows        [][]string
	maxHeight   int
	border      lipgloss.Border
	borderStyle lipgloss.Style
}

func NewWrapTable() *WrapTable {
	return &WrapTable{
		border:      lipgloss.NormalBorder(),
		borderStyle: lipgloss.NewStyle().Foreground(colorBorder),
	}
}

func (wt *WrapTable) Headers(headers ...string) *WrapTable {
	wt.headers = headers
	return wt
}

func (wt *WrapTable) Rows(rows ...[]string) *WrapTable {
	wt.rows = rows
	return wt
}

// MaxHeight sets the height limit; 0 means unlimited
func (wt *WrapTable) MaxHeight(height int) *WrapTable {
	wt.maxHeight = height
	return wt
}

func (wt *WrapTable) Render() string {
	if len(wt.rows) == 0 {
		return ""
	}

	// header line plus top, header separator and bottom borders
	rowsPerTable := len(wt.rows)
	if wt.maxHeight > 0 {
		rowsPerTable = max(wt.maxHeight-4, 1)
	}

	var tables []string
	for start := 0; start < len(wt.rows); start += rowsPerTable {
		end := min(start+rowsPerTable, len(wt.rows))
		t := table.New().
			Border(wt.border).
			BorderStyle(wt.borderStyle).
			Headers(wt.headers...).
			Rows(wt.rows[start:end]...)
		tables = append(tables, t.String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tables...)
}

func (wt *WrapTable) String() string {
	return wt.Render()
}

// statsTable summarizes every metric over the window
func statsTable(window []Reading, maxHeight int) string {
	rows := make([][]string, 0, len(Metrics))
	for _, m := range Metrics {
		s := statsOf(seriesOf(window, m))
		rows = append(rows, []string{
			m.Label(),
			formatPercent(s.Min),
			formatPercent(s.Avg),
			formatPercent(s.Max),
		})
	}
	return NewWrapTable().
		MaxHeight(maxHeight).
		Headers("Metric", "Min", "Avg", "Max").
		Rows(rows...).
		Render()
}
