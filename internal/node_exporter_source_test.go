package hostmon

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// nodeExporterBody renders a minimal node_exporter scrape with two cpus
func nodeExporterBody(idlePerCPU, userPerCPU float64) string {
	return fmt.Sprintf(`# HELP node_cpu_seconds_total Seconds the CPUs spent in each mode.
# TYPE node_cpu_seconds_total counter
node_cpu_seconds_total{cpu="0",mode="idle"} %[1]g
node_cpu_seconds_total{cpu="0",mode="user"} %[2]g
node_cpu_seconds_total{cpu="1",mode="idle"} %[1]g
node_cpu_seconds_total{cpu="1",mode="user"} %[2]g
# TYPE node_memory_MemTotal_bytes gauge
node_memory_MemTotal_bytes 1000
# TYPE node_memory_MemAvailable_bytes gauge
node_memory_MemAvailable_bytes 250
# TYPE node_filesystem_size_bytes gauge
node_filesystem_size_bytes{device="/dev/sda1",fstype="ext4",mountpoint="/"} 1000
node_filesystem_size_bytes{device="/dev/sdb1",fstype="ext4",mountpoint="/data"} 2000
# TYPE node_filesystem_free_bytes gauge
node_filesystem_free_bytes{device="/dev/sda1",fstype="ext4",mountpoint="/"} 400
node_filesystem_free_bytes{device="/dev/sdb1",fstype="ext4",mountpoint="/data"} 2000
# TYPE node_filesystem_avail_bytes gauge
node_filesystem_avail_bytes{device="/dev/sda1",fstype="ext4",mountpoint="/"} 400
node_filesystem_avail_bytes{device="/dev/sdb1",fstype="ext4",mountpoint="/data"} 2000
`, idlePerCPU, userPerCPU)
}

// scrapeServer serves the given bodies in order, repeating the last one
func scrapeServer(t *testing.T, bodies ...string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		body := bodies[min(calls, len(bodies)-1)]
		calls++
		mu.Unlock()
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("bad url %q: %v", raw, err)
	}
	return u
}

func TestNodeExporterSourceSample(t *testing.T) {
	srv := scrapeServer(t,
		nodeExporterBody(100, 50),
		nodeExporterBody(110, 80),
		nodeExporterBody(5, 5),
	)
	src := NewNodeExporterSource(mustParseURL(t, srv.URL+"/metrics"), SourceOptions{})
	ctx := context.Background()

	first, err := src.Sample(ctx)
	if err != nil {
		t.Fatalf("first Sample failed: %v", err)
	}
	if first.CPU != 0 {
		t.Errorf("expected first cpu sample to be 0, got %v", first.CPU)
	}
	if first.Memory != 75 {
		t.Errorf("expected memory 75, got %v", first.Memory)
	}
	if first.Disk != 60 {
		t.Errorf("expected disk 60, got %v", first.Disk)
	}

	// idle +20s, user +60s across both cpus
	second, err := src.Sample(ctx)
	if err != nil {
		t.Fatalf("second Sample failed: %v", err)
	}
	if math.Abs(second.CPU-75) > 1e-9 {
		t.Errorf("expected cpu 75, got %v", second.CPU)
	}

	// counters reset, the previous value is kept
	third, err := src.Sample(ctx)
	if err != nil {
		t.Fatalf("third Sample failed: %v", err)
	}
	if math.Abs(third.CPU-75) > 1e-9 {
		t.Errorf("expected cpu to stay at 75 after a counter reset, got %v", third.CPU)
	}
}

func TestNodeExporterSourceDiskPath(t *testing.T) {
	srv := scrapeServer(t, nodeExporterBody(1, 1))

	data := NewNodeExporterSource(mustParseURL(t, srv.URL), SourceOptions{DiskPath: "/data"})
	r, err := data.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if r.Disk != 0 {
		t.Errorf("expected empty /data filesystem, got %v", r.Disk)
	}

	missing := NewNodeExporterSource(mustParseURL(t, srv.URL), SourceOptions{DiskPath: "/nope"})
	if _, err := missing.Sample(context.Background()); err == nil || !strings.Contains(err.Error(), "/nope") {
		t.Errorf("expected an error naming the missing mount, got %v", err)
	}
}

func TestNodeExporterSourceCheck(t *testing.T) {
	good := scrapeServer(t, nodeExporterBody(1, 1))
	if err := NewNodeExporterSource(mustParseURL(t, good.URL), SourceOptions{}).Check(context.Background()); err != nil {
		t.Errorf("expected check to pass, got %v", err)
	}

	other := scrapeServer(t, "# TYPE go_goroutines gauge\ngo_goroutines 7\n")
	if err := NewNodeExporterSource(mustParseURL(t, other.URL), SourceOptions{}).Check(context.Background()); err == nil {
		t.Error("expected check to fail for a non node_exporter endpoint")
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer broken.Close()
	err := NewNodeExporterSource(mustParseURL(t, broken.URL), SourceOptions{}).Check(context.Background())
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("expected a status error, got %v", err)
	}
}

func TestNodeExporterSourceName(t *testing.T) {
	src := NewNodeExporterSource(mustParseURL(t, "http://server.lan:9100/metrics"), SourceOptions{})
	if src.Name() != "server.lan" {
		t.Errorf("expected server.lan, got %s", src.Name())
	}
}
