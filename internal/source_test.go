package hostmon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateURLVariants(t *testing.T) {
	tests := []struct {
		in    string
		first string
		count int
		has   string
	}{
		{"http://server.lan:9100", "http://server.lan:9100", 16, "https://server.lan:9090/metrics"},
		{"server.lan", "https://server.lan:9090", 16, "http://server.lan:80/metrics"},
		{"server.lan:9100", "https://server.lan:9100", 16, "http://server.lan:9100/metrics"},
		{"https://server.lan/custom", "https://server.lan:9090/custom", 8, "http://server.lan:443/custom"},
		{"127.0.0.1:9100", "https://127.0.0.1:9100", 16, "http://127.0.0.1:9090/metrics"},
		{"[::1]:9100", "https://[::1]:9100", 16, "http://[::1]:9100/metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			u, err := parseTarget(tt.in)
			if err != nil {
				t.Fatalf("parseTarget(%q) failed: %v", tt.in, err)
			}
			variants := generateURLVariants(u)
			if len(variants) != tt.count {
				t.Errorf("expected %d variants, got %d", tt.count, len(variants))
			}
			if len(variants) == 0 || variants[0].String() != tt.first {
				t.Fatalf("expected first variant %s, got %v", tt.first, variants)
			}
			found := false
			for _, v := range variants {
				if v.String() == tt.has {
					found = true
				}
			}
			if !found {
				t.Errorf("expected variant %s in %v", tt.has, variants)
			}
		})
	}
}

func TestSelectSource(t *testing.T) {
	ctx := context.Background()
	node := scrapeServer(t, nodeExporterBody(1, 1))
	_, prom := newFakePrometheus(t, promSample{"node1:9100", "1"})

	src, err := SelectSource(ctx, Config{NodeExporterURL: node.URL + "/metrics"}, "", discardLogger())
	if err != nil {
		t.Fatalf("node_exporter: %v", err)
	}
	if _, ok := src.(*NodeExporterSource); !ok {
		t.Errorf("expected node_exporter source, got %T", src)
	}

	src, err = SelectSource(ctx, Config{PrometheusURL: prom.URL, NodeExporterURL: node.URL}, "", discardLogger())
	if err != nil {
		t.Fatalf("prometheus: %v", err)
	}
	if _, ok := src.(*PrometheusSource); !ok {
		t.Errorf("expected prometheus source to win, got %T", src)
	}

	src, err = SelectSource(ctx, Config{}, "", discardLogger())
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	if _, ok := src.(*LocalSource); !ok {
		t.Errorf("expected local source, got %T", src)
	}
}

func TestSelectSourceHostPortTarget(t *testing.T) {
	node := scrapeServer(t, nodeExporterBody(1, 1))
	target := strings.TrimPrefix(node.URL, "http://")

	src, err := SelectSource(context.Background(), Config{}, target, discardLogger())
	if err != nil {
		t.Fatalf("SelectSource(%q) failed: %v", target, err)
	}
	if _, ok := src.(*NodeExporterSource); !ok {
		t.Errorf("expected node_exporter source, got %T", src)
	}
}

func TestSelectSourcePrometheusInstance(t *testing.T) {
	ctx := context.Background()

	_, single := newFakePrometheus(t, promSample{"node1:9100", "1"})
	src, err := SelectSource(ctx, Config{PrometheusURL: single.URL}, "", discardLogger())
	if err != nil {
		t.Fatalf("single target: %v", err)
	}
	if src.Name() != "node1:9100" {
		t.Errorf("expected the selected instance as name, got %s", src.Name())
	}

	_, multi := newFakePrometheus(t, promSample{"a:9100", "1"}, promSample{"b:9100", "1"})
	_, err = SelectSource(ctx, Config{PrometheusURL: multi.URL}, "", discardLogger())
	if err == nil || !strings.Contains(err.Error(), "a:9100, b:9100") {
		t.Errorf("expected an error listing the candidates, got %v", err)
	}

	src, err = SelectSource(ctx, Config{PrometheusURL: multi.URL, Instance: "b:9100"}, "", discardLogger())
	if err != nil {
		t.Fatalf("configured instance: %v", err)
	}
	if src.Name() != "b:9100" {
		t.Errorf("expected configured instance as name, got %s", src.Name())
	}

	_, err = SelectSource(ctx, Config{PrometheusURL: multi.URL, Instance: "c:9100"}, "", discardLogger())
	if err == nil || !strings.Contains(err.Error(), "c:9100") {
		t.Errorf("expected an error for an instance that is not up, got %v", err)
	}
}

func TestSelectSourceUnreachable(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer broken.Close()

	if _, err := SelectSource(context.Background(), Config{NodeExporterURL: broken.URL}, "", discardLogger()); err == nil {
		t.Error("expected an error for a node_exporter URL that does not answer")
	}
	if _, err := SelectSource(context.Background(), Config{PrometheusURL: broken.URL}, "", discardLogger()); err == nil {
		t.Error("expected an error for a prometheus URL that does not answer")
	}
}

func TestLocalSourceSample(t *testing.T) {
	src := NewLocalSource(SourceOptions{})
	if src.Name() == "" {
		t.Error("expected a host name")
	}

	r, err := src.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	for _, m := range Metrics {
		if v := r.Value(m); v < 0 || v > 100 {
			t.Errorf("%s out of range: %v", m, v)
		}
	}
	if r.Time.IsZero() {
		t.Error("expected a sample time")
	}
}
