package hostmon

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Update is what the monitor hands to the UI after every tick
type Update struct {
	Reading Reading
	Alerts  []Alert
	// Window is a copy of the rolling history including Reading
	Window []Reading
	// Err is set when sampling failed; Reading is then the previous one
	Err error
	// LogErr is set when the reading could not be written to the CSV log
	LogErr error
}

// Monitor samples a Source on a fixed interval and fans the reading out to
// the history, the CSV log, the alerter and the metrics exporter
type Monitor struct {
	source   Source
	interval time.Duration
	history  *History
	log      *CSVLog
	alerter  *Alerter
	exporter *Exporter
	logger   *slog.Logger
	updates  chan Update
}

// MonitorOptions wires the optional collaborators of a Monitor
type MonitorOptions struct {
	Interval time.Duration
	History  *History
	Log      *CSVLog
	Alerter  *Alerter
	Exporter *Exporter
	Logger   *slog.Logger
}

func NewMonitor(source Source, opts MonitorOptions) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = UpdateDuration()
	}
	if opts.History == nil {
		opts.History = NewHistory(WINDOW_SIZE)
	}
	if opts.Alerter == nil {
		opts.Alerter = NewAlerter(DefaultThresholds(), 0)
	}
	if opts.Exporter == nil {
		opts.Exporter = NewExporter()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Monitor{
		source:   source,
		interval: opts.Interval,
		history:  opts.History,
		log:      opts.Log,
		alerter:  opts.Alerter,
		exporter: opts.Exporter,
		logger:   opts.Logger,
		updates:  make(chan Update, 1),
	}
}

// Updates delivers one Update per tick. It is closed when Run returns.
func (m *Monitor) Updates() <-chan Update {
	return m.updates
}

func (m *Monitor) History() *History {
	return m.history
}

// Run samples immediately and then on every tick until ctx is cancelled
func (m *Monitor) Run(ctx context.Context) {
	defer close(m.updates)
	defer m.logger.Info("monitor stopped")

	m.logger.Info("monitor started",
		"source", m.source.Name(),
		"interval", m.interval.String(),
		"window", m.history.Size())

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if !m.emit(ctx, m.tick(ctx)) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// tick takes one sample and records it everywhere
func (m *Monitor) tick(ctx context.Context) Update {
	r, err := m.source.Sample(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Update{Err: ctx.Err()}
		}
		m.exporter.ObserveError()
		m.logger.Warn("sample failed", "source", m.source.Name(), "error", err)
		latest, _ := m.history.Latest()
		return Update{
			Reading: latest,
			Window:  m.history.Snapshot(),
			Err:     fmt.Errorf("sample from %s failed: %w", m.source.Name(), err),
		}
	}

	r = r.normalize()
	m.history.Add(r)

	u := Update{Reading: r}

	if m.log != nil {
		if err := m.log.Append(r); err != nil {
			m.logger.Error("failed to write log", "path", m.log.Path(), "error", err)
			u.LogErr = err
		}
	}

	u.Alerts = m.alerter.Check(r)
	for _, a := range u.Alerts {
		m.logger.Warn(a.Message(),
			"metric", string(a.Metric),
			"value", a.Value,
			"threshold", a.Threshold)
	}

	m.exporter.Observe(r, u.Alerts)
	m.logger.Debug("sample",
		"cpu", r.CPU,
		"memory", r.Memory,
		"disk", r.Disk)

	u.Window = m.history.Snapshot()
	return u
}

// emit hands an update to the consumer, giving up when ctx is done
func (m *Monitor) emit(ctx context.Context, u Update) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case m.updates <- u:
		return true
	case <-ctx.Done():
		return false
	}
}
