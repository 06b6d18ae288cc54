// Package observability wires logging, tracing, and metrics for the service.
// Init builds everything from config; modules receive the pieces they need
// through the Provider and Registry and never construct their own.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	clubmetrics "github.com/osusu-club/osusu-service/internal/observability/metrics/club"
	eventbusmetrics "github.com/osusu-club/osusu-service/internal/observability/metrics/eventbus"
	treasurymetrics "github.com/osusu-club/osusu-service/internal/observability/metrics/treasury"
)

// Config selects log output, the metrics listener, and the OTLP endpoint.
// An empty OTLPEndpoint disables tracing export.
type Config struct {
	ServiceName    string
	Environment    string
	Version        string
	LogLevel       string
	LogFormat      string
	MetricsAddress string
	OTLPEndpoint   string
}

// Provider owns the process-wide logger, tracer provider, and prometheus
// registry.
type Provider struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	Prometheus     *prometheus.Registry

	sdkTP *sdktrace.TracerProvider
}

// Registry groups the per-module metrics implementations plus the service
// tracer handed to modules.
type Registry struct {
	ClubMetrics     clubmetrics.ClubMetrics
	TreasuryMetrics treasurymetrics.TreasuryMetrics
	EventBusMetrics eventbusmetrics.EventBusMetrics
	Tracer          trace.Tracer
}

// Observability bundles the provider and registry for module wiring.
type Observability struct {
	Provider *Provider
	Registry *Registry
}

// Init builds the full observability stack.
func Init(ctx context.Context, cfg Config) (Observability, error) {
	logger := SetupLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var tp trace.TracerProvider
	var sdkTP *sdktrace.TracerProvider
	if cfg.OTLPEndpoint != "" {
		var err error
		sdkTP, err = initTracer(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.Version)
		if err != nil {
			return Observability{}, fmt.Errorf("init tracer: %w", err)
		}
		tp = sdkTP
	} else {
		tp = tracenoop.NewTracerProvider()
		logger.Info("tracing disabled, no otlp endpoint configured")
	}

	provider := &Provider{
		Logger:         logger,
		TracerProvider: tp,
		Prometheus:     promRegistry,
		sdkTP:          sdkTP,
	}

	registry := &Registry{
		ClubMetrics:     clubmetrics.NewPrometheusMetrics(promRegistry),
		TreasuryMetrics: treasurymetrics.NewPrometheusMetrics(promRegistry),
		EventBusMetrics: eventbusmetrics.NewPrometheusMetrics(promRegistry),
		Tracer:          tp.Tracer(cfg.ServiceName),
	}

	return Observability{Provider: provider, Registry: registry}, nil
}

// MetricsHandler serves the prometheus registry.
func (p *Provider) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(p.Prometheus, promhttp.HandlerOpts{})
}

// Shutdown flushes pending spans. Safe to call when tracing is disabled.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.sdkTP == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.sdkTP.Shutdown(ctx)
}
