package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	hostmon "github.com/jondoveston/hostmon/internal"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var version = "dev"

var configFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hostmon [url]",
	Short: "Terminal dashboard for host CPU, memory and disk usage",
	Long: `hostmon samples CPU, memory and disk utilization on a fixed interval,
shows them as live bars and a rolling chart, logs every reading to CSV and
warns when a threshold is exceeded.

Readings come from the local machine unless a node_exporter or Prometheus
backend is given.

Examples:
  hostmon
  hostmon --interval 5s --cpu-threshold 90
  hostmon --node-exporter-url http://server.lan:9100/metrics
  hostmon --prometheus-url http://prometheus.lan:9090 --instance server.lan:9100
  hostmon server.lan
  HOSTMON_HEADLESS=true hostmon`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         run,
	SilenceUsage: true,
}

var exportCmd = &cobra.Command{
	Use:   "export <destination>",
	Short: "Copy the CSV log, or render it as a chart when the destination ends in .html",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&configFile, "config", "", "YAML config file")
	persistent.String("log-file", hostmon.DEFAULT_LOG_FILE, "CSV file readings are written to")

	flags := rootCmd.Flags()
	flags.Duration("interval", hostmon.UpdateDuration(), "time between samples")
	flags.Int("window", hostmon.WINDOW_SIZE, "readings kept for the chart")
	flags.Bool("log-append", false, "append to an existing log instead of truncating it")
	flags.String("disk-path", hostmon.DEFAULT_DISK_PATH, "mount point whose usage is reported")
	flags.Float64("cpu-threshold", hostmon.CPU_THRESHOLD, "CPU percentage that raises an alert")
	flags.Float64("memory-threshold", hostmon.MEMORY_THRESHOLD, "memory percentage that raises an alert")
	flags.Float64("disk-threshold", hostmon.DISK_THRESHOLD, "disk percentage that raises an alert")
	flags.Duration("alert-cooldown", 0, "minimum time between repeated alerts for one metric")
	flags.String("node-exporter-url", "", "node_exporter metrics endpoint URL")
	flags.String("prometheus-url", "", "Prometheus server URL")
	flags.String("instance", "", "node_exporter instance to query through Prometheus")
	flags.String("listen", "", "address to serve Prometheus metrics on, e.g. :9105")
	flags.Bool("headless", false, "print readings instead of starting the dashboard")
	flags.String("app-log", "hostmon.log", "application log file")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.BoolP("version", "v", false, "Print version information")

	// Bind flags to Viper keys (dashes in flags become underscores in viper)
	bind := func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "version" {
			return
		}
		if err := viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", f.Name, err))
		}
	}
	persistent.VisitAll(bind)
	flags.VisitAll(bind)

	viper.SetEnvPrefix("hostmon")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	hostmon.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(exportCmd)
}

// readConfig loads .env and the optional config file
func readConfig() error {
	_ = godotenv.Load() // ignore error if .env not found

	if configFile == "" {
		return nil
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", configFile, err)
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	// Handle --version flag first
	if versionFlag, _ := cmd.Flags().GetBool("version"); versionFlag {
		fmt.Printf("hostmon version %s\n", version)
		return nil
	}

	if err := readConfig(); err != nil {
		return err
	}
	cfg, err := hostmon.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	logger, logCloser, err := hostmon.NewLogger(cfg.AppLog, cfg.LogLevel, cfg.Headless, sessionID)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	logger.Info("starting hostmon", "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	target := ""
	if len(args) == 1 {
		target = args[0]
	}
	source, err := hostmon.SelectSource(ctx, cfg, target, logger)
	if err != nil {
		return err
	}

	csvLog, err := hostmon.OpenCSVLog(cfg.LogFile, cfg.LogAppend)
	if err != nil {
		return err
	}
	defer csvLog.Close()

	alerter := hostmon.NewAlerter(cfg.Thresholds, cfg.AlertCooldown)
	if viper.ConfigFileUsed() != "" {
		hostmon.WatchThresholds(viper.GetViper(), alerter, logger)
	}

	exporter := hostmon.NewExporter()
	if cfg.Listen != "" {
		go func() {
			if err := exporter.Serve(ctx, cfg.Listen, logger); err != nil {
				logger.Error("metrics endpoint stopped", "error", err)
			}
		}()
	}

	monitor := hostmon.NewMonitor(source, hostmon.MonitorOptions{
		Interval: cfg.Interval,
		History:  hostmon.NewHistory(cfg.Window),
		Log:      csvLog,
		Alerter:  alerter,
		Exporter: exporter,
		Logger:   logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		monitor.Run(ctx)
	}()

	if cfg.Headless {
		hostmon.NewConsole(os.Stdout, alerter.Thresholds).Run(monitor.Updates())
		<-done
		return nil
	}

	err = hostmon.Dashboard(ctx, hostmon.DashboardOptions{
		Updates:    monitor.Updates(),
		SourceName: source.Name(),
		LogPath:    csvLog.Path(),
		SessionID:  sessionID,
		Interval:   cfg.Interval,
		Window:     cfg.Window,
		Thresholds: alerter.Thresholds,
	})
	cancel()
	<-done
	logger.Info("hostmon stopped")
	return err
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := readConfig(); err != nil {
		return err
	}
	path, err := hostmon.ExportReport(viper.GetString("log_file"), args[0], uuid.NewString())
	if err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	fmt.Printf("Report exported to: %s\n", path)
	return nil
}
