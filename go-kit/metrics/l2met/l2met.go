// Package l2met provides a basic log-based metrics provider for cases where a real provider is not available.
//
// Label values are not part of l2met names: every series of an instrument is
// aggregated under the instrument's fully qualified name.
package l2met

import (
	"context"
	"sync"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/generic"
	"github.com/sirupsen/logrus"

	xmetrics "github.com/heroku/instrumentator/go-kit/metrics"
)

// histogramBuckets is the resolution of the quantile sketch backing
// histograms.
const histogramBuckets = 50

// Provider provides constructors for creating, tracking, and logging metrics.
type Provider struct {
	logger   logrus.FieldLogger
	interval time.Duration

	mu         sync.Mutex
	names      map[string]bool
	counters   map[string]*generic.Counter
	gauges     map[string]*generic.Gauge
	histograms map[string]*generic.Histogram
	summaries  map[string]*summary
}

var _ xmetrics.Provider = (*Provider)(nil)

// New returns a metrics provider for constructing and tracing metrics to
// report. Metrics are logged every interval once Run is called; a zero
// interval means once per minute.
func New(l logrus.FieldLogger, interval time.Duration) *Provider {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Provider{
		logger:     l,
		interval:   interval,
		names:      map[string]bool{},
		counters:   map[string]*generic.Counter{},
		gauges:     map[string]*generic.Gauge{},
		histograms: map[string]*generic.Histogram{},
		summaries:  map[string]*summary{},
	}
}

// claim must be called with p.mu held.
func (p *Provider) claim(o xmetrics.Opts) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	name := o.FQName()
	if p.names[name] {
		return "", xmetrics.DuplicateError(name)
	}
	p.names[name] = true
	return name, nil
}

// NewCounter implements Provider.
func (p *Provider) NewCounter(o xmetrics.Opts) (metrics.Counter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name, err := p.claim(o)
	if err != nil {
		return nil, err
	}
	c := generic.NewCounter(name)
	p.counters[name] = c
	return counter{c}, nil
}

// NewGauge implements Provider.
func (p *Provider) NewGauge(o xmetrics.Opts) (metrics.Gauge, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name, err := p.claim(o)
	if err != nil {
		return nil, err
	}
	g := generic.NewGauge(name)
	p.gauges[name] = g
	return gauge{g}, nil
}

// NewHistogram implements Provider. Explicit buckets are not used: l2met
// lines only carry the p99.
func (p *Provider) NewHistogram(o xmetrics.Opts, _ []float64) (metrics.Histogram, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name, err := p.claim(o)
	if err != nil {
		return nil, err
	}
	h := generic.NewHistogram(name, histogramBuckets)
	p.histograms[name] = h
	return histogram{h}, nil
}

// NewSummary implements Provider.
func (p *Provider) NewSummary(o xmetrics.Opts) (metrics.Histogram, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name, err := p.claim(o)
	if err != nil {
		return nil, err
	}
	s := &summary{}
	p.summaries[name] = s
	return s, nil
}

// Run starts the provider, logging metrics once per interval until the
// context is canceled.
func (p *Provider) Run(ctx context.Context) error {
	tick := time.NewTicker(p.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			p.log()
		}
	}
}

func (p *Provider) log() {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := logrus.Fields{"at": "metrics"}

	for name, c := range p.counters {
		data["count#"+name] = c.ValueReset()
	}

	for name, g := range p.gauges {
		data["measure#"+name] = g.Value()
	}

	for name, h := range p.histograms {
		v := h.Quantile(0.99)
		// no measurement to report
		if v < 0 {
			continue
		}

		data["measure#"+name+".p99"] = v
	}

	for name, s := range p.summaries {
		n, sum := s.reset()
		if n == 0 {
			continue
		}
		data["count#"+name+".count"] = n
		data["measure#"+name+".sum"] = sum
	}

	p.logger.WithFields(data).Info()
}

// Stop implements Provider.
func (p *Provider) Stop() {}

type counter struct{ *generic.Counter }

// With drops the label values; see the package documentation.
func (c counter) With(...string) metrics.Counter { return c }

type gauge struct{ *generic.Gauge }

// With drops the label values; see the package documentation.
func (g gauge) With(...string) metrics.Gauge { return g }

type histogram struct{ *generic.Histogram }

// With drops the label values; see the package documentation.
func (h histogram) With(...string) metrics.Histogram { return h }

// summary keeps the count and sum of observations since the last report.
type summary struct {
	mu    sync.Mutex
	count float64
	sum   float64
}

// Observe implements metrics.Histogram.
func (s *summary) Observe(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	s.sum += v
}

// With drops the label values; see the package documentation.
func (s *summary) With(...string) metrics.Histogram { return s }

func (s *summary) reset() (count, sum float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count, sum = s.count, s.sum
	s.count, s.sum = 0, 0
	return count, sum
}
