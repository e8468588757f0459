package hostmon

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

const nodeExporterJob = `job="node_exporter"`

// PrometheusSource queries node_exporter series for one instance from a
// Prometheus server
type PrometheusSource struct {
	api  v1.API
	url  *url.URL
	opts SourceOptions

	mu       sync.Mutex
	instance string
}

func NewPrometheusSource(prometheusURL *url.URL, opts SourceOptions) (*PrometheusSource, error) {
	opts = opts.withDefaults()
	roundTripper := api.DefaultRoundTripper
	if opts.Client.Transport != nil {
		roundTripper = opts.Client.Transport
	}
	client, err := api.NewClient(api.Config{
		Address:      prometheusURL.String(),
		RoundTripper: roundTripper,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client: %w", err)
	}

	return &PrometheusSource{
		api:      v1.NewAPI(client),
		url:      prometheusURL,
		opts:     opts,
		instance: opts.Instance,
	}, nil
}

// Name is the sampled instance once one is known, else the server address
func (p *PrometheusSource) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.instance != "" {
		return p.instance
	}
	return p.url.Host
}

// Check verifies the API answers and settles the instance to sample: a
// configured instance must be an up target, otherwise exactly one target
// may be up.
func (p *PrometheusSource) Check(ctx context.Context) error {
	nodes, err := p.Nodes(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.instance != "" {
		if !slices.Contains(nodes, p.instance) {
			return fmt.Errorf("instance %s is not an up node_exporter target (up: %s)", p.instance, strings.Join(nodes, ", "))
		}
		return nil
	}
	_, err = p.selectFrom(nodes)
	return err
}

// Nodes lists node_exporter instances that are currently up
func (p *PrometheusSource) Nodes(ctx context.Context) ([]string, error) {
	vector, err := p.query(ctx, "up{"+nodeExporterJob+"}")
	if err != nil {
		return nil, err
	}

	nodes := make([]string, 0, vector.Len())
	for _, val := range vector {
		if val.Value == 1 {
			nodes = append(nodes, string(val.Metric["instance"]))
		}
	}
	sort.Strings(nodes)
	return nodes, nil
}

// SelectInstance picks the instance to sample. A configured instance wins,
// otherwise the single up target is used.
func (p *PrometheusSource) SelectInstance(ctx context.Context) (string, error) {
	p.mu.Lock()
	instance := p.instance
	p.mu.Unlock()
	if instance != "" {
		return instance, nil
	}

	nodes, err := p.Nodes(ctx)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectFrom(nodes)
}

// selectFrom picks the only up target and remembers it. Callers hold mu.
func (p *PrometheusSource) selectFrom(nodes []string) (string, error) {
	switch len(nodes) {
	case 0:
		return "", fmt.Errorf("no node_exporter targets found in prometheus")
	case 1:
		p.instance = nodes[0]
		return p.instance, nil
	default:
		return "", fmt.Errorf("multiple node_exporter targets, set an instance: %s", strings.Join(nodes, ", "))
	}
}

func (p *PrometheusSource) Sample(ctx context.Context) (Reading, error) {
	r := Reading{Time: time.Now()}

	instance, err := p.SelectInstance(ctx)
	if err != nil {
		return r, err
	}
	sel := fmt.Sprintf(`instance=%q,%s`, instance, nodeExporterJob)
	fsSel := fmt.Sprintf(`%s,mountpoint=%q`, sel, p.opts.DiskPath)

	if r.CPU, err = p.scalar(ctx, fmt.Sprintf(
		`100 * (1 - sum(rate(node_cpu_seconds_total{%s,mode=~"idle|iowait"}[1m])) / sum(rate(node_cpu_seconds_total{%s}[1m])))`, sel, sel)); err != nil {
		return r, fmt.Errorf("cpu query failed: %w", err)
	}
	if r.Memory, err = p.scalar(ctx, fmt.Sprintf(
		`100 * (1 - node_memory_MemAvailable_bytes{%s} / node_memory_MemTotal_bytes{%s})`, sel, sel)); err != nil {
		return r, fmt.Errorf("memory query failed: %w", err)
	}
	if r.Disk, err = p.scalar(ctx, fmt.Sprintf(
		`100 * (1 - node_filesystem_avail_bytes{%s} / node_filesystem_size_bytes{%s})`, fsSel, fsSel)); err != nil {
		return r, fmt.Errorf("disk query failed: %w", err)
	}

	return r, nil
}

func (p *PrometheusSource) query(ctx context.Context, q string) (model.Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	result, _, err := p.api.Query(ctx, q, time.Now())
	if err != nil {
		return nil, fmt.Errorf("prometheus API query failed: %w", err)
	}
	vector, ok := result.(model.Vector)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", result)
	}
	return vector, nil
}

// scalar runs a query expected to yield exactly one sample
func (p *PrometheusSource) scalar(ctx context.Context, q string) (float64, error) {
	vector, err := p.query(ctx, q)
	if err != nil {
		return 0, err
	}
	if vector.Len() == 0 {
		return 0, fmt.Errorf("empty result for %s", q)
	}
	return float64(vector[0].Value), nil
}
