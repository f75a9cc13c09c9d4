package otel

import (
	"sync"

	"github.com/go-kit/kit/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	_ metrics.Counter   = (*Counter)(nil)
	_ metrics.Gauge     = (*Gauge)(nil)
	_ metrics.Histogram = (*Histogram)(nil)
)

// Counter is a counter.
type Counter struct {
	metric.Float64Counter
	labels     []string
	attributes attribute.Set
	p          *Provider
}

// Add implements metrics.Counter.
func (c *Counter) Add(delta float64) {
	c.Float64Counter.Add(c.p.ctx, delta, metric.WithAttributeSet(c.attributes))
}

// With implements metrics.Counter.
func (c *Counter) With(labelValues ...string) metrics.Counter {
	lvs := append(append([]string(nil), c.labels...), labelValues...)
	return &Counter{
		Float64Counter: c.Float64Counter,
		labels:         lvs,
		attributes:     makeAttributes(c.p.defaultAttrs, lvs),
		p:              c.p,
	}
}

// Gauge is a gauge backed by an up-down counter.
type Gauge struct {
	metric.Float64UpDownCounter
	name       string
	labels     []string
	attributes attribute.Set
	p          *Provider

	mu    sync.Mutex
	value float64
}

// With implements metrics.Gauge.
func (g *Gauge) With(labelValues ...string) metrics.Gauge {
	lvs := append(append([]string(nil), g.labels...), labelValues...)
	return g.p.gauge(g.name, g.Float64UpDownCounter, lvs)
}

// Set implements metrics.Gauge.
func (g *Gauge) Set(value float64) {
	g.mu.Lock()
	delta := value - g.value
	g.value = value
	g.mu.Unlock()

	g.Float64UpDownCounter.Add(g.p.ctx, delta, metric.WithAttributeSet(g.attributes))
}

// Add implements metrics.Gauge.
func (g *Gauge) Add(delta float64) {
	g.mu.Lock()
	g.value += delta
	g.mu.Unlock()

	g.Float64UpDownCounter.Add(g.p.ctx, delta, metric.WithAttributeSet(g.attributes))
}

// Histogram is a histogram.
type Histogram struct {
	metric.Float64Histogram
	labels     []string
	attributes attribute.Set
	p          *Provider
}

// With implements metrics.Histogram.
func (h *Histogram) With(labelValues ...string) metrics.Histogram {
	lvs := append(append([]string(nil), h.labels...), labelValues...)
	return &Histogram{
		Float64Histogram: h.Float64Histogram,
		labels:           lvs,
		attributes:       makeAttributes(h.p.defaultAttrs, lvs),
		p:                h.p,
	}
}

// Observe implements metrics.Histogram.
func (h *Histogram) Observe(value float64) {
	h.Record(h.p.ctx, value, metric.WithAttributeSet(h.attributes))
}
