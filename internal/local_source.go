package hostmon

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SourceOptions are shared by every Source implementation
type SourceOptions struct {
	// DiskPath is the mount point whose usage is reported
	DiskPath string
	// Instance selects a node_exporter target when querying Prometheus
	Instance string
	// Timeout bounds every remote request
	Timeout time.Duration
	// Client overrides the HTTP client used by remote sources
	Client *http.Client
}

func (o SourceOptions) withDefaults() SourceOptions {
	if o.DiskPath == "" {
		o.DiskPath = DEFAULT_DISK_PATH
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: o.Timeout}
	}
	return o
}

// LocalSource reads utilization of the machine hostmon runs on
type LocalSource struct {
	diskPath string
	name     string
}

// NewLocalSource creates a gopsutil backed source
func NewLocalSource(opts SourceOptions) *LocalSource {
	opts = opts.withDefaults()
	name := "localhost"
	if info, err := host.Info(); err == nil && info.Hostname != "" {
		name = info.Hostname
	}
	return &LocalSource{
		diskPath: opts.DiskPath,
		name:     name,
	}
}

func (l *LocalSource) Name() string {
	return l.name
}

// Sample reads CPU, memory and disk usage. CPU usage is measured since the
// previous call, so the very first sample can report 0.
func (l *LocalSource) Sample(ctx context.Context) (Reading, error) {
	r := Reading{Time: time.Now()}

	cpuPercent, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return r, fmt.Errorf("failed to read cpu usage: %w", err)
	}
	if len(cpuPercent) > 0 {
		r.CPU = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return r, fmt.Errorf("failed to read memory usage: %w", err)
	}
	r.Memory = memStat.UsedPercent

	diskStat, err := disk.UsageWithContext(ctx, l.diskPath)
	if err != nil {
		return r, fmt.Errorf("failed to read disk usage of %s: %w", l.diskPath, err)
	}
	r.Disk = diskStat.UsedPercent

	return r, nil
}
