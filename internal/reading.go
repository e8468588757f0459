package hostmon

import (
	"fmt"
	"time"
)

// Metric identifies one of the three monitored series
type Metric string

const (
	MetricCPU    Metric = "cpu"
	MetricMemory Metric = "memory"
	MetricDisk   Metric = "disk"
)

// Metrics lists every series in display order
var Metrics = []Metric{MetricCPU, MetricMemory, MetricDisk}

// Label returns the human readable name used in the UI, the log header and alerts
func (m Metric) Label() string {
	switch m {
	case MetricCPU:
		return "CPU"
	case MetricMemory:
		return "Memory"
	case MetricDisk:
		return "Disk"
	default:
		return string(m)
	}
}

// Reading is a single sample of host utilization in percent
type Reading struct {
	Time   time.Time
	CPU    float64
	Memory float64
	Disk   float64
}

// Value returns the reading for the given metric
func (r Reading) Value(m Metric) float64 {
	switch m {
	case MetricCPU:
		return r.CPU
	case MetricMemory:
		return r.Memory
	case MetricDisk:
		return r.Disk
	}
	return 0
}

// Clock formats the sample time the way the CSV log stores it
func (r Reading) Clock() string {
	return r.Time.Format(CLOCK_FORMAT)
}

// normalize clamps every value into [0,100] and rounds to one decimal
func (r Reading) normalize() Reading {
	r.CPU = round1(clampPercent(r.CPU))
	r.Memory = round1(clampPercent(r.Memory))
	r.Disk = round1(clampPercent(r.Disk))
	return r
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
