package testmetrics

import (
	"sync"

	"github.com/go-kit/kit/metrics"
)

// series identifies one labeled instance of a registered instrument.
type series struct {
	name        string
	p           *Provider
	labelValues []string
}

// bind returns the label values of the child series, failing the test if
// they do not follow the registered label names.
func (s series) bind(labelValues []string) []string {
	lvs := append(append([]string(nil), s.labelValues...), labelValues...)
	s.p.checkLabels(s.name, lvs)
	return lvs
}

func (s series) observed() {
	s.p.checkComplete(s.name, s.labelValues)
}

// Counter accumulates the deltas passed to Add.
type Counter struct {
	series

	mu    sync.Mutex
	value float64
}

// Add implements metrics.Counter.
func (c *Counter) Add(delta float64) {
	c.observed()
	c.mu.Lock()
	c.value += delta
	c.mu.Unlock()
}

// With implements metrics.Counter.
func (c *Counter) With(labelValues ...string) metrics.Counter {
	return c.p.newCounter(c.name, c.bind(labelValues)...)
}

func (c *Counter) getValue() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Gauge holds the last value Set, moved by Add.
type Gauge struct {
	series

	mu    sync.Mutex
	value float64
}

// Add implements metrics.Gauge.
func (g *Gauge) Add(delta float64) {
	g.observed()
	g.mu.Lock()
	g.value += delta
	g.mu.Unlock()
}

// Set implements metrics.Gauge.
func (g *Gauge) Set(v float64) {
	g.observed()
	g.mu.Lock()
	g.value = v
	g.mu.Unlock()
}

// With implements metrics.Gauge.
func (g *Gauge) With(labelValues ...string) metrics.Gauge {
	return g.p.newGauge(g.name, g.bind(labelValues)...)
}

func (g *Gauge) getValue() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

// Histogram keeps every observation, in order, so tests can inspect them.
// It backs both histograms and summaries; buckets are checked on the
// registration instead.
type Histogram struct {
	series

	mu           sync.Mutex
	observations []float64
}

// Observe implements metrics.Histogram.
func (h *Histogram) Observe(v float64) {
	h.observed()
	h.mu.Lock()
	h.observations = append(h.observations, v)
	h.mu.Unlock()
}

// With implements metrics.Histogram.
func (h *Histogram) With(labelValues ...string) metrics.Histogram {
	return h.p.newHistogram(h.name, h.bind(labelValues)...)
}

func (h *Histogram) getObservations() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]float64(nil), h.observations...)
}
