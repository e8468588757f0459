package hostmon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration
type Config struct {
	Interval      time.Duration
	Window        int
	LogFile       string
	LogAppend     bool
	DiskPath      string
	Thresholds    Thresholds
	AlertCooldown time.Duration

	NodeExporterURL string
	PrometheusURL   string
	Instance        string

	Listen   string
	Headless bool
	AppLog   string
	LogLevel string
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("interval", UpdateDuration())
	v.SetDefault("window", WINDOW_SIZE)
	v.SetDefault("log_file", DEFAULT_LOG_FILE)
	v.SetDefault("log_append", false)
	v.SetDefault("disk_path", DEFAULT_DISK_PATH)
	v.SetDefault("cpu_threshold", CPU_THRESHOLD)
	v.SetDefault("memory_threshold", MEMORY_THRESHOLD)
	v.SetDefault("disk_threshold", DISK_THRESHOLD)
	v.SetDefault("alert_cooldown", time.Duration(0))
	v.SetDefault("listen", "")
	v.SetDefault("headless", false)
	v.SetDefault("app_log", "hostmon.log")
	v.SetDefault("log_level", "info")
}

// LoadConfig reads and validates every key from v
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Interval:      v.GetDuration("interval"),
		Window:        v.GetInt("window"),
		LogFile:       v.GetString("log_file"),
		LogAppend:     v.GetBool("log_append"),
		DiskPath:      v.GetString("disk_path"),
		Thresholds:    thresholdsFrom(v),
		AlertCooldown: v.GetDuration("alert_cooldown"),

		NodeExporterURL: v.GetString("node_exporter_url"),
		PrometheusURL:   v.GetString("prometheus_url"),
		Instance:        v.GetString("instance"),

		Listen:   v.GetString("listen"),
		Headless: v.GetBool("headless"),
		AppLog:   v.GetString("app_log"),
		LogLevel: v.GetString("log_level"),
	}

	if cfg.Interval <= 0 {
		return cfg, fmt.Errorf("interval must be positive, got %s", cfg.Interval)
	}
	if cfg.Window < 2 {
		return cfg, fmt.Errorf("window must hold at least 2 readings, got %d", cfg.Window)
	}
	if cfg.LogFile == "" {
		return cfg, fmt.Errorf("log_file must be set")
	}
	if cfg.AlertCooldown < 0 {
		return cfg, fmt.Errorf("alert_cooldown must not be negative")
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return cfg, err
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SourceOptions derives the source settings from the config
func (c Config) SourceOptions() SourceOptions {
	return SourceOptions{
		DiskPath: c.DiskPath,
		Instance: c.Instance,
	}
}

func thresholdsFrom(v *viper.Viper) Thresholds {
	return Thresholds{
		CPU:    v.GetFloat64("cpu_threshold"),
		Memory: v.GetFloat64("memory_threshold"),
		Disk:   v.GetFloat64("disk_threshold"),
	}
}

// WatchThresholds reloads the alert thresholds whenever the config file
// changes. Invalid values are logged and ignored.
func WatchThresholds(v *viper.Viper, alerter *Alerter, logger *slog.Logger) {
	v.OnConfigChange(func(e fsnotify.Event) {
		t := thresholdsFrom(v)
		if err := t.Validate(); err != nil {
			logger.Warn("ignoring config change", "file", e.Name, "error", err)
			return
		}
		alerter.SetThresholds(t)
		logger.Info("thresholds reloaded",
			"file", e.Name,
			"cpu", t.CPU,
			"memory", t.Memory,
			"disk", t.Disk)
	})
	v.WatchConfig()
}
