package hostmon

import (
	"testing"
	"time"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
		want    []Metric
	}{
		{"all below", Reading{CPU: 10, Memory: 20, Disk: 30}, nil},
		{"at threshold does not alert", Reading{CPU: 80, Memory: 80, Disk: 90}, nil},
		{"cpu just above", Reading{CPU: 80.1, Memory: 10, Disk: 10}, []Metric{MetricCPU}},
		{"memory above", Reading{CPU: 10, Memory: 81, Disk: 10}, []Metric{MetricMemory}},
		{"disk above 90 only", Reading{CPU: 10, Memory: 10, Disk: 90.5}, []Metric{MetricDisk}},
		{"disk at 85 is fine", Reading{CPU: 10, Memory: 10, Disk: 85}, nil},
		{"everything", Reading{CPU: 99, Memory: 99, Disk: 99}, []Metric{MetricCPU, MetricMemory, MetricDisk}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := Evaluate(tt.reading, DefaultThresholds())
			if len(alerts) != len(tt.want) {
				t.Fatalf("expected %d alerts, got %d: %+v", len(tt.want), len(alerts), alerts)
			}
			for i, a := range alerts {
				if a.Metric != tt.want[i] {
					t.Errorf("alert %d: expected %s, got %s", i, tt.want[i], a.Metric)
				}
				if a.Value != tt.reading.Value(a.Metric) {
					t.Errorf("alert %d: expected value %v, got %v", i, tt.reading.Value(a.Metric), a.Value)
				}
			}
		})
	}
}

func TestAlertMessage(t *testing.T) {
	tests := []struct {
		alert Alert
		want  string
	}{
		{Alert{Metric: MetricCPU, Value: 85.2}, "High CPU Usage Detected: 85.2%"},
		{Alert{Metric: MetricMemory, Value: 90}, "High Memory Usage Detected: 90.0%"},
		{Alert{Metric: MetricDisk, Value: 97.46}, "High Disk Usage Detected: 97.5%"},
	}
	for _, tt := range tests {
		if got := tt.alert.Message(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestThresholdsValidate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	bad := []Thresholds{
		{CPU: 0, Memory: 80, Disk: 90},
		{CPU: 80, Memory: 101, Disk: 90},
		{CPU: 80, Memory: 80, Disk: -1},
	}
	for _, th := range bad {
		if err := th.Validate(); err == nil {
			t.Errorf("expected %+v to be rejected", th)
		}
	}
}

func TestAlerterCooldown(t *testing.T) {
	a := NewAlerter(DefaultThresholds(), 10*time.Second)

	hot := func(offset int) Reading { return readingAt(offset, 95, 10, 10) }

	if got := a.Check(hot(0)); len(got) != 1 {
		t.Fatalf("expected first alert, got %d", len(got))
	}
	if got := a.Check(hot(5)); len(got) != 0 {
		t.Errorf("expected alert to be suppressed during cooldown, got %d", len(got))
	}
	if got := a.Check(hot(10)); len(got) != 1 {
		t.Errorf("expected alert after cooldown, got %d", len(got))
	}
}

func TestAlerterWithoutCooldownRepeats(t *testing.T) {
	a := NewAlerter(DefaultThresholds(), 0)
	for i := 0; i < 3; i++ {
		if got := a.Check(readingAt(i, 95, 95, 95)); len(got) != 3 {
			t.Fatalf("sample %d: expected 3 alerts, got %d", i, len(got))
		}
	}
}

func TestAlerterSetThresholds(t *testing.T) {
	a := NewAlerter(DefaultThresholds(), 0)
	r := readingAt(0, 85, 10, 10)

	if got := a.Check(r); len(got) != 1 {
		t.Fatalf("expected cpu alert with defaults, got %d", len(got))
	}

	a.SetThresholds(Thresholds{CPU: 90, Memory: 80, Disk: 90})
	if got := a.Check(r); len(got) != 0 {
		t.Errorf("expected no alert after raising cpu threshold, got %d", len(got))
	}
	if a.Thresholds().CPU != 90 {
		t.Errorf("expected cpu threshold 90, got %v", a.Thresholds().CPU)
	}
}
