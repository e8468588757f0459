package hostmon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dialogKind int

const (
	dialogNone dialogKind = iota
	dialogExport
	dialogInfo
	dialogError
)

// DashboardOptions configures the terminal UI
type DashboardOptions struct {
	Updates    <-chan Update
	SourceName string
	LogPath    string
	SessionID  string
	Interval   time.Duration
	Window     int
	// Thresholds returns the limits currently in force, used to colour bars
	Thresholds func() Thresholds
}

type updateMsg Update

type monitorDoneMsg struct{}

type exportDoneMsg struct {
	path string
	err  error
}

type dashboardModel struct {
	opts       DashboardOptions
	latest     Reading
	hasReading bool
	window     []Reading
	status     string
	stopped    bool

	tabs          *TabSet
	pendingAlerts []Alert

	dialog     dialogKind
	dialogText string
	input      textinput.Model

	keys   keyMap
	help   help.Model
	width  int
	height int
	ready  bool
}

func NewDashboard(opts DashboardOptions) dashboardModel {
	if opts.Thresholds == nil {
		opts.Thresholds = DefaultThresholds
	}
	if opts.Interval <= 0 {
		opts.Interval = UpdateDuration()
	}
	if opts.Window <= 0 {
		opts.Window = WINDOW_SIZE
	}

	input := textinput.New()
	input.Placeholder = DEFAULT_REPORT_FILE
	input.Prompt = "Save as: "
	input.CharLimit = 4096

	return dashboardModel{
		opts:  opts,
		tabs:  NewTabSet(DefaultChartViews()...),
		input: input,
		keys:  defaultKeyMap(),
		help:  help.New(),
	}
}

// waitForUpdate blocks on the monitor channel and turns the next update into
// a message
func waitForUpdate(updates <-chan Update) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return monitorDoneMsg{}
		}
		return updateMsg(u)
	}
}

func exportCmd(logPath, dst, sessionID string) tea.Cmd {
	return func() tea.Msg {
		path, err := ExportReport(logPath, dst, sessionID)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return waitForUpdate(m.opts.Updates)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case updateMsg:
		m = m.applyUpdate(Update(msg))
		return m, waitForUpdate(m.opts.Updates)

	case monitorDoneMsg:
		m.stopped = true
		m.status = "monitor stopped"

	case exportDoneMsg:
		if msg.err != nil {
			m.dialog = dialogError
			m.dialogText = fmt.Sprintf("Failed to export report:\n%v", msg.err)
		} else {
			m.dialog = dialogInfo
			m.dialogText = fmt.Sprintf("Report exported to:\n%s", msg.path)
		}
	}

	return m, nil
}

func (m dashboardModel) applyUpdate(u Update) dashboardModel {
	if u.Err != nil {
		m.status = u.Err.Error()
		return m
	}

	m.latest = u.Reading
	m.hasReading = true
	m.window = u.Window
	m.status = ""
	if u.LogErr != nil {
		m.status = u.LogErr.Error()
	}

	for _, alert := range u.Alerts {
		m.pendingAlerts = queueAlert(m.pendingAlerts, alert)
	}
	return m
}

// queueAlert adds an alert unless one for the same metric is already
// waiting, in which case that dialog is refreshed with the new value
func queueAlert(pending []Alert, alert Alert) []Alert {
	for i := range pending {
		if pending[i].Metric == alert.Metric {
			pending[i] = alert
			return pending
		}
	}
	return append(pending, alert)
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c always quits, q only when not typing a path
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.dialog {
	case dialogExport:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			dst := m.input.Value()
			if strings.TrimSpace(dst) == "" {
				dst = DEFAULT_REPORT_FILE
			}
			m.dialog = dialogNone
			m.input.Blur()
			return m, exportCmd(m.opts.LogPath, dst, m.opts.SessionID)
		case key.Matches(msg, m.keys.Cancel):
			m.dialog = dialogNone
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case dialogInfo, dialogError:
		if key.Matches(msg, m.keys.Dismiss) {
			m.dialog = dialogNone
			m.dialogText = ""
		}
		return m, nil
	}

	if len(m.pendingAlerts) > 0 {
		switch {
		case key.Matches(msg, m.keys.Dismiss):
			m.pendingAlerts = m.pendingAlerts[1:]
			return m, nil
		case key.Matches(msg, m.keys.DismissAll):
			m.pendingAlerts = nil
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Export):
		m.dialog = dialogExport
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.NextTab):
		m.tabs.NextTab()
	case key.Matches(msg, m.keys.PrevTab):
		m.tabs.PrevTab()
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.dialog {
	case dialogExport:
		return m.renderDialog("Export Report", m.input.View(), "enter=Save  esc=Cancel", colorFocus)
	case dialogInfo:
		return m.renderDialog("Export Complete", m.dialogText, "enter=OK", colorOK)
	case dialogError:
		return m.renderDialog("Error", m.dialogText, "enter=OK", colorDanger)
	}

	if len(m.pendingAlerts) > 0 {
		text := "⚠️ " + m.pendingAlerts[0].Message()
		if more := len(m.pendingAlerts) - 1; more > 0 {
			text += fmt.Sprintf("\n\n%d more alert(s) pending", more)
		}
		return m.renderDialog("System Alert", text, "enter=Dismiss  D=Dismiss all", colorDanger)
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 6)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderBody(bodyHeight),
		footer,
	)
}

func (m dashboardModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)
	infoStyle := lipgloss.NewStyle().Foreground(colorMuted)

	info := fmt.Sprintf("  %s  every %s", m.opts.SourceName, m.opts.Interval)
	if m.hasReading {
		info += "  last " + m.latest.Clock()
	}
	if m.stopped {
		info += "  (stopped)"
	}
	return titleStyle.Render("💻 Advanced System Monitor") + infoStyle.Render(info)
}

func (m dashboardModel) renderFooter() string {
	var lines []string
	if m.status != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorDanger).Render(m.status))
	}
	helpBar := lipgloss.NewStyle().
		Foreground(colorMuted).
		Background(colorBar).
		Width(m.width).
		Align(lipgloss.Center).
		Render(m.help.View(m.keys))
	lines = append(lines, helpBar)
	return strings.Join(lines, "\n")
}

func (m dashboardModel) renderBody(height int) string {
	thresholds := m.opts.Thresholds()

	// narrow terminals stack the panes
	wide := m.width >= 80
	leftWidth, rightWidth := splitWidth(m.width, 0.4)
	if !wide {
		leftWidth, rightWidth = m.width, m.width
	}

	usage := NewPane("Usage", leftWidth, 0)
	if m.hasReading {
		usage = usage.SetContent(renderGauges(m.latest, thresholds, usage.InnerWidth()))
		if len(Evaluate(m.latest, thresholds)) > 0 {
			usage = usage.SetBorderColor(colorDanger)
		}
	} else {
		usage = usage.SetContent("Waiting for data...")
	}

	usageHeight := lipgloss.Height(usage.Render())
	if !wide {
		chartHeight := max(height-usageHeight, 8)
		return Vertical(usage, m.chartPane(rightWidth, chartHeight))
	}

	// border (2) and title (1); short screens wrap the table sideways
	statsHeight := max(height-usageHeight-3, 5)
	title := fmt.Sprintf("Last %d of %d samples (%s)", len(m.window), m.opts.Window, WindowDuration(m.opts.Interval, m.opts.Window))
	stats := NewPane(title, leftWidth, 0).SetContent(statsTable(m.window, statsHeight))

	left := Vertical(usage, stats)
	chartHeight := max(height, lipgloss.Height(left))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, m.chartPane(rightWidth, chartHeight).Render())
}

func (m dashboardModel) chartPane(width, height int) Pane {
	pane := NewPane("System Usage Over Time", width, height)
	// border (2) and title (1)
	m.tabs.SetSize(pane.InnerWidth(), height-3)
	return pane.SetContent(m.tabs.Render(m.window))
}

// renderDialog draws a modal box over a shaded screen
func (m dashboardModel) renderDialog(title, content, helpText string, border lipgloss.Color) string {
	width := min(max(m.width*6/10, 30), m.width)
	dialog := NewPane(title, width, 0).
		SetContent(content).
		SetBorderColor(border)

	hint := lipgloss.NewStyle().
		Foreground(colorMuted).
		Render(helpText)

	return overlay(m.width, m.height, dialog.Render()+"\n"+hint)
}

// Dashboard runs the terminal UI until the user quits or ctx is cancelled
func Dashboard(ctx context.Context, opts DashboardOptions) error {
	p := tea.NewProgram(NewDashboard(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running dashboard: %w", err)
	}
	return nil
}
