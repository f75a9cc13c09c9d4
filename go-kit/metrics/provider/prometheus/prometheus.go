// Package prometheus provides a metrics.Provider that registers go-kit
// instruments in a Prometheus registry.
package prometheus

import (
	"net/http"
	"sync"

	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	xmetrics "github.com/heroku/instrumentator/go-kit/metrics"
)

// Provider registers instruments in a Prometheus registry.
type Provider struct {
	reg *prometheus.Registry

	mu    sync.Mutex
	names map[string]bool
}

var _ xmetrics.Provider = (*Provider)(nil)

// New returns a Provider registering into reg. A nil reg creates an empty
// registry.
func New(reg *prometheus.Registry) *Provider {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Provider{reg: reg, names: make(map[string]bool)}
}

// Registry returns the underlying registry, for registering additional
// collectors.
func (p *Provider) Registry() *prometheus.Registry {
	return p.reg
}

// Handler exposes the registry in the Prometheus text and OpenMetrics
// exposition formats.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// NewCounter implements metrics.Provider.
func (p *Provider) NewCounter(o xmetrics.Opts) (metrics.Counter, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: o.Namespace,
		Subsystem: o.Subsystem,
		Name:      o.Name,
		Help:      o.Help,
	}, o.LabelNames)
	if err := p.register(o, cv); err != nil {
		return nil, err
	}
	return kitprometheus.NewCounter(cv), nil
}

// NewGauge implements metrics.Provider.
func (p *Provider) NewGauge(o xmetrics.Opts) (metrics.Gauge, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	gv := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: o.Namespace,
		Subsystem: o.Subsystem,
		Name:      o.Name,
		Help:      o.Help,
	}, o.LabelNames)
	if err := p.register(o, gv); err != nil {
		return nil, err
	}
	return kitprometheus.NewGauge(gv), nil
}

// NewHistogram implements metrics.Provider. Prometheus always appends its
// own +Inf bucket, so buckets may or may not end with one.
func (p *Provider) NewHistogram(o xmetrics.Opts, buckets []float64) (metrics.Histogram, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: o.Namespace,
		Subsystem: o.Subsystem,
		Name:      o.Name,
		Help:      o.Help,
		Buckets:   xmetrics.FiniteBounds(buckets),
	}, o.LabelNames)
	if err := p.register(o, hv); err != nil {
		return nil, err
	}
	return kitprometheus.NewHistogram(hv), nil
}

// NewSummary implements metrics.Provider. The summary has no objectives and
// only exposes _count and _sum.
func (p *Provider) NewSummary(o xmetrics.Opts) (metrics.Histogram, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	sv := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: o.Namespace,
		Subsystem: o.Subsystem,
		Name:      o.Name,
		Help:      o.Help,
	}, o.LabelNames)
	if err := p.register(o, sv); err != nil {
		return nil, err
	}
	return kitprometheus.NewSummary(sv), nil
}

// Stop is a no-op; Prometheus is pull based.
func (p *Provider) Stop() {}

// register claims the fully qualified name and registers c. Prometheus
// reports a name reused with another type or label set as a generic
// descriptor error, so names are tracked here as well.
func (p *Provider) register(o xmetrics.Opts, c prometheus.Collector) error {
	name := o.FQName()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.names[name] {
		return xmetrics.DuplicateError(name)
	}
	err := p.reg.Register(c)
	if err == nil {
		p.names[name] = true
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return xmetrics.DuplicateError(name)
	}
	return errors.Wrapf(err, "registering %s", name)
}
