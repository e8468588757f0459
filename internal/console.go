package hostmon

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	warnColor  = color.New(color.FgYellow, color.Bold)
	errorColor = color.New(color.FgRed)
	dimColor   = color.New(color.Faint)
)

// Console prints updates line by line for headless runs
type Console struct {
	out        io.Writer
	thresholds func() Thresholds
}

// NewConsole writes to out. thresholds is consulted to colour values that are
// over their limit; nil uses the defaults.
func NewConsole(out io.Writer, thresholds func() Thresholds) *Console {
	if thresholds == nil {
		thresholds = DefaultThresholds
	}
	return &Console{out: out, thresholds: thresholds}
}

// Run consumes updates until the channel is closed
func (c *Console) Run(updates <-chan Update) {
	for u := range updates {
		c.Print(u)
	}
}

func (c *Console) Print(u Update) {
	if u.Err != nil {
		errorColor.Fprintf(c.out, "error: %v\n", u.Err)
		return
	}

	t := c.thresholds()
	dimColor.Fprint(c.out, u.Reading.Clock())
	for _, m := range Metrics {
		value := fmt.Sprintf("  %s %s", m.Label(), formatPercent(u.Reading.Value(m)))
		if u.Reading.Value(m) > t.For(m) {
			warnColor.Fprint(c.out, value)
		} else {
			fmt.Fprint(c.out, value)
		}
	}
	fmt.Fprintln(c.out)

	for _, a := range u.Alerts {
		warnColor.Fprintf(c.out, "⚠️ %s\n", a.Message())
	}
	if u.LogErr != nil {
		errorColor.Fprintf(c.out, "log: %v\n", u.LogErr)
	}
}
