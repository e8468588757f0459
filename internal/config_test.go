package hostmon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(newTestViper())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Interval != 2*time.Second {
		t.Errorf("expected 2s interval, got %s", cfg.Interval)
	}
	if cfg.Window != 60 {
		t.Errorf("expected window 60, got %d", cfg.Window)
	}
	if cfg.LogFile != "system_log.csv" || cfg.LogAppend {
		t.Errorf("unexpected log settings: %q append=%v", cfg.LogFile, cfg.LogAppend)
	}
	if cfg.Thresholds != DefaultThresholds() {
		t.Errorf("unexpected thresholds: %+v", cfg.Thresholds)
	}
	if cfg.DiskPath != "/" {
		t.Errorf("expected disk path /, got %s", cfg.DiskPath)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		key   string
		value any
		want  string
	}{
		{"interval", "0s", "interval"},
		{"window", 1, "window"},
		{"log_file", "", "log_file"},
		{"alert_cooldown", "-1s", "alert_cooldown"},
		{"cpu_threshold", 150, "threshold"},
		{"disk_threshold", 0, "threshold"},
		{"log_level", "loud", "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := newTestViper()
			v.Set(tt.key, tt.value)
			_, err := LoadConfig(v)
			if err == nil {
				t.Fatalf("expected %s=%v to be rejected", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %q", tt.want, err)
			}
		})
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostmon.yaml")
	writeConfig(t, path, "interval: 5s\ncpu_threshold: 95\ndisk_path: /data\nnode_exporter_url: http://server.lan:9100/metrics\n")

	v := newTestViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Interval != 5*time.Second || cfg.Thresholds.CPU != 95 || cfg.Thresholds.Memory != 80 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	opts := cfg.SourceOptions()
	if opts.DiskPath != "/data" || cfg.NodeExporterURL != "http://server.lan:9100/metrics" {
		t.Errorf("unexpected source settings: %+v %s", opts, cfg.NodeExporterURL)
	}
}

func TestWatchThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostmon.yaml")
	writeConfig(t, path, "cpu_threshold: 80\n")

	v := newTestViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	alerter := NewAlerter(DefaultThresholds(), 0)
	WatchThresholds(v, alerter, discardLogger())

	writeConfig(t, path, "cpu_threshold: 95\n")

	deadline := time.Now().Add(5 * time.Second)
	for alerter.Thresholds().CPU != 95 {
		if time.Now().After(deadline) {
			t.Fatalf("thresholds were not reloaded, cpu=%v", alerter.Thresholds().CPU)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
