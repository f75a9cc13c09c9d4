package otel

import (
	"context"
	"strings"
	"sync"

	"github.com/go-kit/kit/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	xmetrics "github.com/heroku/instrumentator/go-kit/metrics"
)

// ScopeName is the instrumentation scope of every Meter created by a Provider.
const ScopeName = "github.com/heroku/instrumentator"

// Provider builds go-kit instruments on top of an OpenTelemetry Meter.
type Provider struct {
	ctx           context.Context
	meterProvider metric.MeterProvider
	meter         metric.Meter
	defaultAttrs  []attribute.KeyValue

	mu     sync.Mutex
	names  map[string]bool
	gauges map[string]*Gauge
}

var _ xmetrics.Provider = (*Provider)(nil)

// Option is used for optional arguments when initializing Provider.
type Option func(*Provider)

// WithAttributes adds attributes to every measurement.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(p *Provider) {
		p.defaultAttrs = append(p.defaultAttrs, attrs...)
	}
}

// New returns a Provider recording on mp. ctx is passed to every
// measurement and to the MeterProvider shutdown.
func New(ctx context.Context, mp metric.MeterProvider, opts ...Option) *Provider {
	p := &Provider{
		ctx:           ctx,
		meterProvider: mp,
		meter:         mp.Meter(ScopeName),
		names:         make(map[string]bool),
		gauges:        make(map[string]*Gauge),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) claim(o xmetrics.Opts) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	name := o.FQName()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.names[name] {
		return "", xmetrics.DuplicateError(name)
	}
	p.names[name] = true
	return name, nil
}

// NewCounter implements metrics.Provider.
func (p *Provider) NewCounter(o xmetrics.Opts) (metrics.Counter, error) {
	name, err := p.claim(o)
	if err != nil {
		return nil, err
	}
	c, err := p.meter.Float64Counter(name, metric.WithDescription(o.Help))
	if err != nil {
		return nil, err
	}
	return &Counter{
		Float64Counter: c,
		attributes:     makeAttributes(p.defaultAttrs, nil),
		p:              p,
	}, nil
}

// NewGauge implements metrics.Provider. Gauges are exported as
// up-down counters; Set records the difference to the last value.
func (p *Provider) NewGauge(o xmetrics.Opts) (metrics.Gauge, error) {
	name, err := p.claim(o)
	if err != nil {
		return nil, err
	}
	udc, err := p.meter.Float64UpDownCounter(name, metric.WithDescription(o.Help))
	if err != nil {
		return nil, err
	}
	return p.gauge(name, udc, nil), nil
}

// gauge returns the series of a gauge for the given label values, creating
// it on first use so Set deltas are computed against shared state.
func (p *Provider) gauge(name string, udc metric.Float64UpDownCounter, labelValues []string) *Gauge {
	p.mu.Lock()
	defer p.mu.Unlock()

	k := keyName(name, labelValues...)
	if g, ok := p.gauges[k]; ok {
		return g
	}
	g := &Gauge{
		Float64UpDownCounter: udc,
		name:                 name,
		labels:               labelValues,
		attributes:           makeAttributes(p.defaultAttrs, labelValues),
		p:                    p,
	}
	p.gauges[k] = g
	return g
}

// NewHistogram implements metrics.Provider. The +Inf overflow bucket is
// implicit in OpenTelemetry and is dropped from the boundaries.
func (p *Provider) NewHistogram(o xmetrics.Opts, buckets []float64) (metrics.Histogram, error) {
	name, err := p.claim(o)
	if err != nil {
		return nil, err
	}
	h, err := p.meter.Float64Histogram(name,
		metric.WithDescription(o.Help),
		metric.WithExplicitBucketBoundaries(xmetrics.FiniteBounds(buckets)...),
	)
	if err != nil {
		return nil, err
	}
	return &Histogram{
		Float64Histogram: h,
		attributes:       makeAttributes(p.defaultAttrs, nil),
		p:                p,
	}, nil
}

// NewSummary implements metrics.Provider. OpenTelemetry has no summary
// instrument; summaries are histograms with the SDK default boundaries,
// which carry the same count and sum.
func (p *Provider) NewSummary(o xmetrics.Opts) (metrics.Histogram, error) {
	name, err := p.claim(o)
	if err != nil {
		return nil, err
	}
	h, err := p.meter.Float64Histogram(name, metric.WithDescription(o.Help))
	if err != nil {
		return nil, err
	}
	return &Histogram{
		Float64Histogram: h,
		attributes:       makeAttributes(p.defaultAttrs, nil),
		p:                p,
	}, nil
}

// Stop shuts down the MeterProvider when it supports it, flushing pending
// measurements to its exporters.
func (p *Provider) Stop() {
	if s, ok := p.meterProvider.(interface {
		Shutdown(context.Context) error
	}); ok {
		_ = s.Shutdown(p.ctx)
	}
}

// keyName is used as the map key for gauge series
// and incorporates the name and the labelValues.
func keyName(name string, labelValues ...string) string {
	if len(labelValues) == 0 {
		return name
	}
	return name + "." + strings.Join(labelValues, ":")
}

// makeAttributes converts default attributes and go-kit key/value pairs
// into an attribute set. A dangling key gets the value "unknown".
func makeAttributes(defaults []attribute.KeyValue, labels []string) attribute.Set {
	attributes := make([]attribute.KeyValue, 0, len(defaults)+len(labels)/2)
	attributes = append(attributes, defaults...)
	if len(labels)%2 != 0 {
		labels = append(labels, "unknown")
	}

	for i := 0; i < len(labels); i += 2 {
		attributes = append(attributes, attribute.String(labels[i], labels[i+1]))
	}

	return attribute.NewSet(attributes...)
}
