package metrics

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// StageKey is the resource attribute holding the deploy name.
const StageKey = attribute.Key("stage")

// SetupOTel returns a MeterProvider exporting to cfg.Endpoint over OTLP.
func SetupOTel(ctx context.Context, cfg OTelConfig, service, deploy string) (*sdkmetric.MeterProvider, error) {
	if cfg.Endpoint == nil {
		return nil, errors.New("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT is required for the otel backend")
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(service),
		StageKey.String(deploy),
	)

	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch cfg.Protocol {
	case "grpc":
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint.Host),
		}
		if cfg.Endpoint.Scheme == "http" {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err = otlpmetricgrpc.New(ctx, opts...)
	case "http/protobuf":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.Endpoint.Host),
		}
		if cfg.Endpoint.Path != "" {
			opts = append(opts, otlpmetrichttp.WithURLPath(cfg.Endpoint.Path))
		}
		if cfg.Endpoint.Scheme == "http" {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err = otlpmetrichttp.New(ctx, opts...)
	default:
		return nil, errors.Errorf("unsupported protocol: %s", cfg.Protocol)
	}
	if err != nil {
		return nil, errors.Wrap(err, "creating exporter")
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
	)

	if cfg.EnableRuntimeMetrics {
		if err := runtime.Start(runtime.WithMeterProvider(mp)); err != nil {
			_ = mp.Shutdown(ctx)
			return nil, errors.Wrap(err, "starting runtime metrics")
		}
	}

	return mp, nil
}
