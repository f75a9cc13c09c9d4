// Package metrics sets up the metrics backends of a service from its
// environment.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/heroku/instrumentator/cmdutil"
	xmetrics "github.com/heroku/instrumentator/go-kit/metrics"
	"github.com/heroku/instrumentator/go-kit/metrics/l2met"
	"github.com/heroku/instrumentator/go-kit/metrics/multiprovider"
	"github.com/heroku/instrumentator/go-kit/metrics/provider/discard"
	otelprovider "github.com/heroku/instrumentator/go-kit/metrics/provider/otel"
	promprovider "github.com/heroku/instrumentator/go-kit/metrics/provider/prometheus"
	"github.com/heroku/instrumentator/go-kit/metricsregistry"
	"github.com/heroku/instrumentator/go-kit/runtimemetrics"
)

// Backends holds the configured metrics backends.
type Backends struct {
	// Provider fans out to every backend, enforces unique names and
	// applies the configured namespace.
	Provider xmetrics.Provider

	// Registry is the name registry behind Provider.
	Registry *metricsregistry.Registry

	// Prometheus is nil unless the prometheus backend is enabled.
	Prometheus *promprovider.Provider

	// Servers must be run for the backends to report, e.g. with a
	// run.Group.
	Servers []cmdutil.Server
}

// New builds the backends named in cfg.Backends. With no backend the
// Provider discards everything.
func New(ctx context.Context, logger logrus.FieldLogger, cfg Config, service, deploy string) (*Backends, error) {
	var (
		b         Backends
		providers []xmetrics.Provider
	)

	for _, name := range cfg.Backends {
		switch name {
		case BackendPrometheus:
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			b.Prometheus = promprovider.New(reg)
			providers = append(providers, b.Prometheus)

			if cfg.Port != 0 {
				b.Servers = append(b.Servers, cmdutil.NewHTTPServer(logger, "metrics", &http.Server{
					Addr:    fmt.Sprintf(":%d", cfg.Port),
					Handler: b.Prometheus.Handler(),
				}))
			}

		case BackendL2met:
			p := l2met.New(logger, cfg.ReportInterval)
			providers = append(providers, p)
			b.Servers = append(b.Servers, cmdutil.NewContextServer(p.Run))

		case BackendOTel:
			mp, err := SetupOTel(ctx, cfg.OTel, service, deploy)
			if err != nil {
				return nil, err
			}
			providers = append(providers, otelprovider.New(ctx, mp))

		default:
			return nil, errors.Errorf("unknown metrics backend %q", name)
		}

		logger.WithFields(logrus.Fields{
			"at":      "metrics",
			"backend": name,
		}).Info()
	}

	var p xmetrics.Provider
	switch len(providers) {
	case 0:
		p = discard.New()
	case 1:
		p = providers[0]
	default:
		p = multiprovider.New(providers...)
	}

	b.Registry = metricsregistry.New(p)
	b.Provider = b.Registry
	if cfg.Namespace != "" {
		b.Provider = metricsregistry.NewPrefixed(b.Registry, cfg.Namespace)
	}

	if cfg.RuntimeMetrics {
		c, err := runtimemetrics.NewCollector(b.Provider)
		if err != nil {
			return nil, errors.Wrap(err, "runtime metrics")
		}
		b.Servers = append(b.Servers, cmdutil.NewContextServer(func(ctx context.Context) error {
			return c.Run(ctx, cfg.ReportInterval)
		}))
	}
	return &b, nil
}
