package hostmon

import (
	"math"
	"time"
)

const (
	// UPDATE_INTERVAL is the default time between samples in seconds
	UPDATE_INTERVAL = 2

	// WINDOW_SIZE is the number of readings kept per series for the chart
	WINDOW_SIZE = 60

	// Default alert thresholds in percent. A reading must be strictly above
	// the threshold to raise an alert.
	CPU_THRESHOLD    = 80.0
	MEMORY_THRESHOLD = 80.0
	DISK_THRESHOLD   = 90.0

	// DEFAULT_LOG_FILE is where readings are written as CSV
	DEFAULT_LOG_FILE = "system_log.csv"

	// DEFAULT_REPORT_FILE is the suggested export destination
	DEFAULT_REPORT_FILE = "system_report.csv"

	// DEFAULT_DISK_PATH is the filesystem whose usage is reported
	DEFAULT_DISK_PATH = "/"

	// CLOCK_FORMAT is the timestamp layout used in the CSV log and chart labels
	CLOCK_FORMAT = "15:04:05"
)

// UpdateDuration returns the default update interval as a time.Duration
func UpdateDuration() time.Duration {
	return time.Duration(UPDATE_INTERVAL) * time.Second
}

// WindowDuration returns how much wall time a full window covers at the
// given sampling interval
func WindowDuration(interval time.Duration, window int) time.Duration {
	return interval * time.Duration(window)
}

// round1 rounds a percentage to one decimal place
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// clampPercent keeps a value inside [0,100]
func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
