package hostmon

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
)

// Source produces utilization readings for one host
type Source interface {
	Name() string
	Sample(ctx context.Context) (Reading, error)
}

// Checker is implemented by remote sources that can verify they are reachable
type Checker interface {
	Check(ctx context.Context) error
}

// DetectedSource holds a data source and its display name
type DetectedSource struct {
	Source Source
	URL    *url.URL
}

// TryConnectWithFallbacks tries multiple URL variants to find a metrics backend.
// Every backend that answers is returned, Prometheus first.
func TryConnectWithFallbacks(ctx context.Context, baseURL *url.URL, opts SourceOptions, logger *slog.Logger) []DetectedSource {
	var detected []DetectedSource

	variants := generateURLVariants(baseURL)

	for _, variant := range variants {
		logger.Debug("trying prometheus backend", "url", variant.String())
		ps, err := NewPrometheusSource(variant, opts)
		if err != nil {
			logger.Debug("prometheus client failed", "url", variant.String(), "error", err)
			continue
		}
		if err := ps.Check(ctx); err != nil {
			logger.Debug("prometheus check failed", "url", variant.String(), "error", err)
			continue
		}
		logger.Info("found prometheus backend", "url", variant.String())
		detected = append(detected, DetectedSource{Source: ps, URL: variant})
		break
	}

	for _, variant := range variants {
		logger.Debug("trying node_exporter backend", "url", variant.String())
		ns := NewNodeExporterSource(variant, opts)
		if err := ns.Check(ctx); err != nil {
			logger.Debug("node_exporter check failed", "url", variant.String(), "error", err)
			continue
		}
		logger.Info("found node_exporter backend", "url", variant.String())
		detected = append(detected, DetectedSource{Source: ns, URL: variant})
		break
	}

	return detected
}

// generateURLVariants creates the scheme, port and path combinations to try
func generateURLVariants(base *url.URL) []*url.URL {
	hostname := base.Hostname()
	if hostname == "" {
		// "host:9100" parses with the host as scheme
		if u, err := parseTarget(base.String()); err == nil {
			base = u
			hostname = u.Hostname()
		}
	}

	schemes := []string{"https", "http"}
	if base.Scheme == "http" {
		schemes = []string{"http", "https"}
	}

	ports := uniqueStrings(base.Port(), "9090", "9100", "443", "80")

	paths := []string{base.Path}
	if base.Path == "" || base.Path == "/" {
		paths = []string{"", "/metrics"}
	}

	var variants []*url.URL
	for _, scheme := range schemes {
		for _, p := range ports {
			for _, urlPath := range paths {
				variants = append(variants, &url.URL{
					Scheme: scheme,
					Host:   net.JoinHostPort(hostname, p),
					Path:   urlPath,
				})
			}
		}
	}
	return variants
}

// parseTarget parses a command line target. Targets without a scheme, such
// as "127.0.0.1:9100" or "[::1]:9100", are read as host[:port][/path].
func parseTarget(target string) (*url.URL, error) {
	if !strings.Contains(target, "://") {
		target = "//" + target
	}
	return url.Parse(target)
}

func uniqueStrings(values ...string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// SelectSource picks the backend: an explicit Prometheus or node_exporter URL
// wins, then a target to probe, then the local machine
func SelectSource(ctx context.Context, cfg Config, target string, logger *slog.Logger) (Source, error) {
	opts := cfg.SourceOptions()

	switch {
	case cfg.PrometheusURL != "":
		u, err := url.Parse(cfg.PrometheusURL)
		if err != nil {
			return nil, fmt.Errorf("invalid prometheus url %q: %w", cfg.PrometheusURL, err)
		}
		ps, err := NewPrometheusSource(u, opts)
		if err != nil {
			return nil, err
		}
		if err := ps.Check(ctx); err != nil {
			return nil, err
		}
		logger.Info("using prometheus backend", "url", u.String(), "instance", ps.Name())
		return ps, nil

	case cfg.NodeExporterURL != "":
		u, err := url.Parse(cfg.NodeExporterURL)
		if err != nil {
			return nil, fmt.Errorf("invalid node_exporter url %q: %w", cfg.NodeExporterURL, err)
		}
		ns := NewNodeExporterSource(u, opts)
		if err := ns.Check(ctx); err != nil {
			return nil, err
		}
		logger.Info("using node_exporter backend", "url", u.String())
		return ns, nil

	case target != "":
		u, err := parseTarget(target)
		if err != nil {
			return nil, fmt.Errorf("invalid url %q: %w", target, err)
		}
		detected := TryConnectWithFallbacks(ctx, u, opts, logger)
		if len(detected) == 0 {
			return nil, fmt.Errorf("no prometheus or node_exporter backend found at %s", target)
		}
		return detected[0].Source, nil
	}

	logger.Info("using local backend")
	return NewLocalSource(opts), nil
}
