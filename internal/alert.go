package hostmon

import (
	"fmt"
	"sync"
	"time"
)

// Thresholds are the limits above which a reading raises an alert
type Thresholds struct {
	CPU    float64
	Memory float64
	Disk   float64
}

// DefaultThresholds returns CPU > 80, Memory > 80, Disk > 90
func DefaultThresholds() Thresholds {
	return Thresholds{
		CPU:    CPU_THRESHOLD,
		Memory: MEMORY_THRESHOLD,
		Disk:   DISK_THRESHOLD,
	}
}

// For returns the threshold of one metric
func (t Thresholds) For(m Metric) float64 {
	switch m {
	case MetricCPU:
		return t.CPU
	case MetricMemory:
		return t.Memory
	case MetricDisk:
		return t.Disk
	}
	return 100
}

// Validate rejects thresholds outside (0,100]
func (t Thresholds) Validate() error {
	for _, m := range Metrics {
		if v := t.For(m); v <= 0 || v > 100 {
			return fmt.Errorf("%s threshold must be in (0,100], got %v", m, v)
		}
	}
	return nil
}

// Alert is raised when a reading exceeds its threshold
type Alert struct {
	Metric    Metric
	Value     float64
	Threshold float64
	Time      time.Time
}

// Message is the text shown in the warning dialog and the logs
func (a Alert) Message() string {
	return fmt.Sprintf("High %s Usage Detected: %s", a.Metric.Label(), formatPercent(a.Value))
}

// Evaluate returns an alert for every metric strictly above its threshold,
// in CPU, Memory, Disk order
func Evaluate(r Reading, t Thresholds) []Alert {
	var alerts []Alert
	for _, m := range Metrics {
		v := r.Value(m)
		if limit := t.For(m); v > limit {
			alerts = append(alerts, Alert{
				Metric:    m,
				Value:     v,
				Threshold: limit,
				Time:      r.Time,
			})
		}
	}
	return alerts
}

// Alerter evaluates readings against thresholds that can change at runtime.
// With a cooldown, a metric that keeps exceeding its threshold alerts at most
// once per cooldown period.
type Alerter struct {
	mu         sync.Mutex
	thresholds Thresholds
	cooldown   time.Duration
	last       map[Metric]time.Time
}

func NewAlerter(t Thresholds, cooldown time.Duration) *Alerter {
	return &Alerter{
		thresholds: t,
		cooldown:   cooldown,
		last:       make(map[Metric]time.Time),
	}
}

// Thresholds returns the limits currently in use
func (a *Alerter) Thresholds() Thresholds {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.thresholds
}

// SetThresholds swaps the limits used for subsequent readings
func (a *Alerter) SetThresholds(t Thresholds) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.thresholds = t
}

// Check evaluates a reading and applies the cooldown
func (a *Alerter) Check(r Reading) []Alert {
	a.mu.Lock()
	defer a.mu.Unlock()

	alerts := Evaluate(r, a.thresholds)
	if a.cooldown <= 0 {
		return alerts
	}

	kept := alerts[:0]
	for _, alert := range alerts {
		if last, ok := a.last[alert.Metric]; ok && alert.Time.Sub(last) < a.cooldown {
			continue
		}
		a.last[alert.Metric] = alert.Time
		kept = append(kept, alert)
	}
	return kept
}
