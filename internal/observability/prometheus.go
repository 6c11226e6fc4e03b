package observability

import (
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"chwresume/internal/config"
	"chwresume/internal/errors"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusConfig controls the scrape endpoint
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

var defaultPrometheusConfig = PrometheusConfig{Enabled: true, Endpoint: "/metrics", Port: "9090"}

func prometheusConfigFrom(cfg *config.Config) PrometheusConfig {
	if cfg == nil {
		return defaultPrometheusConfig
	}
	p := cfg.Observability.Prometheus
	return PrometheusConfig{Enabled: p.Enabled, Endpoint: p.Endpoint, Port: p.Port}
}

// newPrometheusReader returns an OTel reader backed by a private registry,
// and the handler that serves it. Go runtime and process collectors are
// registered alongside the parser instruments.
func newPrometheusReader() (sdkmetric.Reader, http.Handler, error) {
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return exporter, handler, nil
}

// startMetricsServer serves handler on its own port until shut down
func startMetricsServer(cfg PrometheusConfig, handler http.Handler, logger *errors.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET "+cfg.Endpoint, handler)

	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Starting Prometheus metrics server", "address", server.Addr, "endpoint", cfg.Endpoint)
	go func() {
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Prometheus server stopped")
		}
	}()

	return server
}
