package hostmon

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorBorder  = lipgloss.Color("240")
	colorFocus   = lipgloss.Color("170")
	colorTitle   = lipgloss.Color("33")
	colorAccent  = lipgloss.Color("214")
	colorOK      = lipgloss.Color("42")
	colorWarning = lipgloss.Color("214")
	colorDanger  = lipgloss.Color("196")
	colorMuted   = lipgloss.Color("240")
	colorBar     = lipgloss.Color("235")
)

// Pane is a bordered panel with an optional title.
//
//	pane := NewPane("CPU", 40, 5).
//	    SetContent(bar).
//	    SetBorderColor(colorDanger)
//	fmt.Println(pane.Render())
type Pane struct {
	title       string
	content     string
	width       int
	height      int
	borderStyle lipgloss.Style
	titleStyle  lipgloss.Style
}

// NewPane creates a pane with the default rounded border. A height of 0
// sizes the pane to its content.
func NewPane(title string, width, height int) Pane {
	return Pane{
		title:  title,
		width:  width,
		height: height,
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		titleStyle: lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true),
	}
}

func (p Pane) SetContent(content string) Pane {
	p.content = content
	return p
}

// SetBorderColor recolours the border, used to flag panes over threshold
func (p Pane) SetBorderColor(c lipgloss.TerminalColor) Pane {
	p.borderStyle = p.borderStyle.BorderForeground(c)
	return p
}

// InnerWidth is the width left for content inside border and padding
func (p Pane) InnerWidth() int {
	return max(p.width-p.borderStyle.GetHorizontalFrameSize(), 1)
}

func (p Pane) Render() string {
	var b strings.Builder

	if p.title != "" {
		b.WriteString(p.titleStyle.Render(p.title) + "\n")
	}
	b.WriteString(p.content)

	style := p.borderStyle.Width(max(p.width-2, 1))
	if p.height > 0 {
		style = style.Height(max(p.height-2, 1))
	}
	return style.Render(b.String())
}

// String is a convenience method that calls Render
func (p Pane) String() string {
	return p.Render()
}
