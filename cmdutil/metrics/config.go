package metrics

import (
	"net/url"
	"time"
)

// Backend names accepted in Config.Backends.
const (
	BackendPrometheus = "prometheus"
	BackendL2met      = "l2met"
	BackendOTel       = "otel"
)

// Config stores all the env related config to bootstrap metrics.
type Config struct {
	// Backends receiving every instrument. Separate multiple backends
	// with ";".
	Backends []string `env:"METRICS_BACKENDS,default=prometheus"`

	// Namespace prefixes the names of all instruments.
	Namespace string `env:"METRICS_NAMESPACE"`

	// Port serves the Prometheus exposition endpoint. Zero disables it.
	Port int `env:"METRICS_PORT,default=9090"`

	// ReportInterval is the l2met flush interval.
	ReportInterval time.Duration `env:"METRICS_REPORT_INTERVAL,default=60s"`

	// RuntimeMetrics collects Go runtime metrics into every backend every
	// ReportInterval. The Prometheus registry exposes its own Go collector
	// regardless.
	RuntimeMetrics bool `env:"METRICS_RUNTIME,default=false"`

	OTel OTelConfig
}

// OTelConfig configures the OTLP exporter of the otel backend.
type OTelConfig struct {
	Endpoint             *url.URL      `env:"OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"`
	Protocol             string        `env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	Interval             time.Duration `env:"OTEL_METRIC_EXPORT_INTERVAL,default=60s"`
	EnableRuntimeMetrics bool          `env:"OTEL_ENABLE_RUNTIME_METRICS,default=false"`
}
