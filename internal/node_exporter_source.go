package hostmon

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// NodeExporterSource scrapes a node_exporter endpoint directly
type NodeExporterSource struct {
	url  *url.URL
	opts SourceOptions

	mu        sync.Mutex
	prevIdle  float64
	prevTotal float64
	havePrev  bool
	lastCPU   float64
}

// NewNodeExporterSource creates a source for a node_exporter /metrics URL
func NewNodeExporterSource(u *url.URL, opts SourceOptions) *NodeExporterSource {
	return &NodeExporterSource{
		url:  u,
		opts: opts.withDefaults(),
	}
}

func (n *NodeExporterSource) Name() string {
	return n.url.Hostname()
}

// Check scrapes once and verifies the response looks like node_exporter
func (n *NodeExporterSource) Check(ctx context.Context) error {
	families, err := n.scrape(ctx)
	if err != nil {
		return err
	}
	if _, ok := families["node_cpu_seconds_total"]; !ok {
		return fmt.Errorf("%s does not expose node_cpu_seconds_total", n.url)
	}
	return nil
}

func (n *NodeExporterSource) Sample(ctx context.Context) (Reading, error) {
	r := Reading{Time: time.Now()}

	families, err := n.scrape(ctx)
	if err != nil {
		return r, err
	}

	idle, total, err := cpuSeconds(families)
	if err != nil {
		return r, err
	}
	r.CPU = n.cpuUsage(idle, total)

	r.Memory, err = memoryUsage(families)
	if err != nil {
		return r, err
	}

	r.Disk, err = diskUsage(families, n.opts.DiskPath)
	if err != nil {
		return r, err
	}

	return r, nil
}

func (n *NodeExporterSource) scrape(ctx context.Context) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.url.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := n.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error querying node exporter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("node exporter returned %s", resp.Status)
	}

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metrics: %w", err)
	}
	return families, nil
}

// cpuUsage turns cumulative idle/total seconds into a busy percentage since
// the previous scrape
func (n *NodeExporterSource) cpuUsage(idle, total float64) float64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.havePrev {
		n.prevIdle, n.prevTotal, n.havePrev = idle, total, true
		return 0
	}

	deltaTotal := total - n.prevTotal
	deltaIdle := idle - n.prevIdle
	n.prevIdle, n.prevTotal = idle, total

	// counters went backwards (node restarted) or no time passed
	if deltaTotal <= 0 || deltaIdle < 0 {
		return n.lastCPU
	}

	n.lastCPU = 100 * (1 - deltaIdle/deltaTotal)
	return n.lastCPU
}

// cpuSeconds sums node_cpu_seconds_total over every cpu and mode.
// idle and iowait both count as idle time.
func cpuSeconds(families map[string]*dto.MetricFamily) (idle, total float64, err error) {
	family, ok := families["node_cpu_seconds_total"]
	if !ok {
		return 0, 0, fmt.Errorf("node_cpu_seconds_total missing")
	}
	for _, metric := range family.GetMetric() {
		v := metricValue(metric)
		total += v
		switch labelValue(metric, "mode") {
		case "idle", "iowait":
			idle += v
		}
	}
	return idle, total, nil
}

func memoryUsage(families map[string]*dto.MetricFamily) (float64, error) {
	total, ok := firstValue(families, "node_memory_MemTotal_bytes")
	if !ok || total == 0 {
		return 0, fmt.Errorf("node_memory_MemTotal_bytes missing")
	}
	available, ok := firstValue(families, "node_memory_MemAvailable_bytes")
	if !ok {
		return 0, fmt.Errorf("node_memory_MemAvailable_bytes missing")
	}
	return 100 * (1 - available/total), nil
}

// diskUsage mirrors statvfs based tools: used is size minus free, and the
// percentage is taken against what an unprivileged user can reach
func diskUsage(families map[string]*dto.MetricFamily, mountpoint string) (float64, error) {
	size, ok := mountValue(families, "node_filesystem_size_bytes", mountpoint)
	if !ok {
		return 0, fmt.Errorf("no filesystem mounted at %s", mountpoint)
	}
	free, _ := mountValue(families, "node_filesystem_free_bytes", mountpoint)
	avail, ok := mountValue(families, "node_filesystem_avail_bytes", mountpoint)
	if !ok {
		avail = free
	}

	used := size - free
	if used+avail <= 0 {
		return 0, nil
	}
	return 100 * used / (used + avail), nil
}

func mountValue(families map[string]*dto.MetricFamily, name, mountpoint string) (float64, bool) {
	family, ok := families[name]
	if !ok {
		return 0, false
	}
	for _, metric := range family.GetMetric() {
		if labelValue(metric, "mountpoint") == mountpoint {
			return metricValue(metric), true
		}
	}
	return 0, false
}

func firstValue(families map[string]*dto.MetricFamily, name string) (float64, bool) {
	family, ok := families[name]
	if !ok || len(family.GetMetric()) == 0 {
		return 0, false
	}
	return metricValue(family.GetMetric()[0]), true
}

func labelValue(metric *dto.Metric, name string) string {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}

func metricValue(metric *dto.Metric) float64 {
	switch {
	case metric.Counter != nil:
		return metric.GetCounter().GetValue()
	case metric.Gauge != nil:
		return metric.GetGauge().GetValue()
	case metric.Untyped != nil:
		return metric.GetUntyped().GetValue()
	}
	return 0
}
