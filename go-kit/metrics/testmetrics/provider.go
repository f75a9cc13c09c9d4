// Package testmetrics is for testing provider metrics
// with a test Provider that adheres to the Provider interface
package testmetrics

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-kit/kit/metrics"

	xmetrics "github.com/heroku/instrumentator/go-kit/metrics"
)

// Kinds of registered instruments.
const (
	KindCounter   = "counter"
	KindGauge     = "gauge"
	KindHistogram = "histogram"
	KindSummary   = "summary"
)

type registration struct {
	kind    string
	opts    xmetrics.Opts
	buckets []float64
}

// Provider collects registered metrics for testing.
//
// Like a real registry it rejects a second registration of the same fully
// qualified name. It also fails the test when label values are bound in a
// different order than the label names the instrument was registered with,
// or when a labeled instrument is observed without all of its label values.
type Provider struct {
	t *testing.T

	sync.Mutex
	registered map[string]registration
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	stopped    bool
}

var _ xmetrics.Provider = (*Provider)(nil)

// NewProvider constructs a test provider which can later be checked.
func NewProvider(t *testing.T) *Provider {
	return &Provider{
		t:          t,
		registered: make(map[string]registration),
		counters:   make(map[string]*Counter),
		histograms: make(map[string]*Histogram),
		gauges:     make(map[string]*Gauge),
	}
}

// Stop makes it Provider compliant.
func (p *Provider) Stop() {
	p.Lock()
	defer p.Unlock()
	p.stopped = true
}

func (p *Provider) register(kind string, o xmetrics.Opts, buckets []float64) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	name := o.FQName()

	p.Lock()
	defer p.Unlock()

	if _, ok := p.registered[name]; ok {
		return "", xmetrics.DuplicateError(name)
	}
	p.registered[name] = registration{
		kind:    kind,
		opts:    o,
		buckets: append([]float64(nil), buckets...),
	}
	return name, nil
}

// NewCounter implements metrics.Provider.
func (p *Provider) NewCounter(o xmetrics.Opts) (metrics.Counter, error) {
	name, err := p.register(KindCounter, o, nil)
	if err != nil {
		return nil, err
	}
	return p.newCounter(name), nil
}

func (p *Provider) newCounter(name string, labelValues ...string) metrics.Counter {
	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	if _, ok := p.counters[k]; !ok {
		p.counters[k] = &Counter{series: series{name: name, p: p, labelValues: labelValues}}
	}
	return p.counters[k]
}

// NewGauge implements metrics.Provider.
func (p *Provider) NewGauge(o xmetrics.Opts) (metrics.Gauge, error) {
	name, err := p.register(KindGauge, o, nil)
	if err != nil {
		return nil, err
	}
	return p.newGauge(name), nil
}

func (p *Provider) newGauge(name string, labelValues ...string) metrics.Gauge {
	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	if _, ok := p.gauges[k]; !ok {
		p.gauges[k] = &Gauge{series: series{name: name, p: p, labelValues: labelValues}}
	}
	return p.gauges[k]
}

// NewHistogram implements metrics.Provider.
func (p *Provider) NewHistogram(o xmetrics.Opts, buckets []float64) (metrics.Histogram, error) {
	name, err := p.register(KindHistogram, o, buckets)
	if err != nil {
		return nil, err
	}
	return p.newHistogram(name), nil
}

// NewSummary implements metrics.Provider. Summaries share the histogram
// bookkeeping, so the Check*Observation* helpers work for both.
func (p *Provider) NewSummary(o xmetrics.Opts) (metrics.Histogram, error) {
	name, err := p.register(KindSummary, o, nil)
	if err != nil {
		return nil, err
	}
	return p.newHistogram(name), nil
}

func (p *Provider) newHistogram(name string, labelValues ...string) metrics.Histogram {
	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	if _, ok := p.histograms[k]; !ok {
		p.histograms[k] = &Histogram{series: series{name: name, p: p, labelValues: labelValues}}
	}
	return p.histograms[k]
}

// checkLabels verifies that the bound key/value pairs follow the
// registered label names, in order.
func (p *Provider) checkLabels(name string, labelValues []string) {
	p.t.Helper()

	p.Lock()
	reg := p.registered[name]
	p.Unlock()

	names := reg.opts.LabelNames
	if len(labelValues)%2 != 0 {
		p.t.Errorf("%s: odd number of label values %q", name, labelValues)
		return
	}
	if len(labelValues)/2 > len(names) {
		p.t.Errorf("%s: %d label pairs bound, registered with %q", name, len(labelValues)/2, names)
		return
	}
	for i := 0; i < len(labelValues); i += 2 {
		if want := names[i/2]; labelValues[i] != want {
			p.t.Errorf("%s: label %d is %q, registered as %q", name, i/2, labelValues[i], want)
		}
	}
}

// checkComplete verifies that an instrument is not observed before all
// of its label values are bound.
func (p *Provider) checkComplete(name string, labelValues []string) {
	p.t.Helper()

	p.Lock()
	reg := p.registered[name]
	p.Unlock()

	if want := 2 * len(reg.opts.LabelNames); len(labelValues) != want {
		p.t.Errorf("%s: observed with %d label values, want %d", name, len(labelValues), want)
	}
}

// CheckRegistered checks that an instrument of the given kind was
// registered with name and the label names provided, in order.
func (p *Provider) CheckRegistered(name, kind string, labelNames ...string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	reg, ok := p.registered[name]
	if !ok {
		p.t.Fatalf("no metric registered as %s out of: \n%s", name, strings.Join(p.registeredNames(), "\n"))
	}
	if reg.kind != kind {
		p.t.Fatalf("%s is a %s, want %s", name, reg.kind, kind)
	}
	if len(labelNames) == 0 {
		labelNames = nil
	}
	got := reg.opts.LabelNames
	if len(got) == 0 {
		got = nil
	}
	if !reflect.DeepEqual(got, labelNames) {
		p.t.Fatalf("%s label names = %q, want %q", name, got, labelNames)
	}
}

// CheckHelp checks the documentation string of a registered instrument.
func (p *Provider) CheckHelp(name, help string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	reg, ok := p.registered[name]
	if !ok {
		p.t.Fatalf("no metric registered as %s", name)
	}
	if reg.opts.Help != help {
		p.t.Fatalf("%s help = %q, want %q", name, reg.opts.Help, help)
	}
}

// CheckBuckets checks the bucket boundaries a histogram was registered
// with.
func (p *Provider) CheckBuckets(name string, buckets []float64) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	reg, ok := p.registered[name]
	if !ok {
		p.t.Fatalf("no metric registered as %s", name)
	}
	if !reflect.DeepEqual(reg.buckets, buckets) {
		p.t.Fatalf("%s buckets = %v, want %v", name, reg.buckets, buckets)
	}
}

// CheckNotRegistered checks that nothing was registered under name.
func (p *Provider) CheckNotRegistered(name string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	if _, ok := p.registered[name]; ok {
		p.t.Fatalf("a metric named %s was registered", name)
	}
}

func (p *Provider) registeredNames() []string {
	names := make([]string, 0, len(p.registered))
	for n := range p.registered {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CheckCounter checks that there is a registered counter
// with the name and value provided.
func (p *Provider) CheckCounter(name string, v float64, labelValues ...string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	c, ok := p.counters[k]
	if !ok {
		keys := make([]string, 0, len(p.counters))
		for k := range p.counters {
			keys = append(keys, k)
		}
		available := strings.Join(keys, "\n")
		p.t.Fatalf("no counter named %s out of available counters: \n%s", k, available)
	}

	if got := c.getValue(); got != v {
		p.t.Fatalf("%v = %v, want %v", k, got, v)
	}
}

// PrintCounterValue prints the value of the specified counter.
func (p *Provider) PrintCounterValue(name string, labelValues ...string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	fmt.Printf("%s: %v\n", k, p.counters[k].getValue())
}

// CheckNoCounter checks that there is no counter series with the name and
// label values provided.
func (p *Provider) CheckNoCounter(name string, labelValues ...string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	if c, ok := p.counters[k]; ok && c.getValue() != 0 {
		p.t.Fatalf("a counter named %s was found", k)
	}
}

// CheckObservationsMinMax checks that there is a histogram
// with the name and that the values all fall within the min/max range.
func (p *Provider) CheckObservationsMinMax(name string, min, max float64, labelValues ...string) {
	p.t.Helper()

	for _, o := range p.getObservations(name, labelValues...) {
		if o < min || o > max {
			p.t.Fatalf("got %f want %f..%f ", o, min, max)
		}
	}
}

// CheckObservations checks that there is a histogram
// with the name and observations provided.
func (p *Provider) CheckObservations(name string, obs []float64, labelValues ...string) {
	p.t.Helper()

	observations := p.getObservations(name, labelValues...)
	if !reflect.DeepEqual(observations, obs) {
		p.t.Fatalf("%v = %v, want %v", p.keyFor(name, labelValues...), observations, obs)
	}
}

// CheckObservationsMatch checks that there is a histogram with the name and
// observations provided, ignoring order.
func (p *Provider) CheckObservationsMatch(name string, obs []float64, labelValues ...string) {
	p.t.Helper()

	got := p.getObservations(name, labelValues...)

	want := make([]float64, len(obs))
	copy(want, obs)

	sort.Float64s(got)
	sort.Float64s(want)

	if !reflect.DeepEqual(want, got) {
		p.t.Fatalf("%v = %v, want %v", p.keyFor(name, labelValues...), got, want)
	}
}

// CheckObservationCount checks that there is a histogram
// with the name and number of observations provided.
func (p *Provider) CheckObservationCount(name string, n int, labelValues ...string) {
	p.t.Helper()

	observations := p.getObservations(name, labelValues...)

	if len(observations) != n {
		p.t.Fatalf("len(%v) = %v, want %v", p.keyFor(name, labelValues...), len(observations), n)
	}
}

// CheckNoObservations checks that nothing was observed for the histogram
// or summary series with the name and label values provided. A series
// that was never bound counts as empty.
func (p *Provider) CheckNoObservations(name string, labelValues ...string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	if h, ok := p.histograms[k]; ok {
		if obs := h.getObservations(); len(obs) > 0 {
			p.t.Fatalf("%s has observations %v, want none", k, obs)
		}
	}
}

// CheckNoObservationsAnywhere checks that no series of the histogram or
// summary name received an observation, whatever its label values.
func (p *Provider) CheckNoObservationsAnywhere(name string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	for k, h := range p.histograms {
		if h.name != name {
			continue
		}
		if obs := h.getObservations(); len(obs) > 0 {
			p.t.Fatalf("%s has observations %v, want none", k, obs)
		}
	}
}

func (p *Provider) getObservations(name string, labelValues ...string) []float64 {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	h, ok := p.histograms[k]
	if !ok {
		keys := make([]string, 0, len(p.histograms))
		for k := range p.histograms {
			keys = append(keys, k)
		}
		available := strings.Join(keys, "\n")
		p.t.Fatalf("no histogram named %s out available histograms: \n%s", k, available)
	}

	return h.getObservations()
}

// CheckGauge checks that there is a registered gauge
// with the name and value provided.
func (p *Provider) CheckGauge(name string, v float64, labelValues ...string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	g, ok := p.gauges[k]
	if !ok {
		keys := make([]string, 0, len(p.gauges))
		for k := range p.gauges {
			keys = append(keys, k)
		}
		available := strings.Join(keys, "\n")
		p.t.Fatalf("no gauge named %s out of available gauges: \n%s", k, available)
	}
	actualV := g.getValue()
	if actualV != v {
		p.t.Fatalf("%v = %v, want %v", k, actualV, v)
	}
}

// CheckGaugeNonZero checks that there is a registered gauge with the name
// provided and that its value is not zero.
func (p *Provider) CheckGaugeNonZero(name string, labelValues ...string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	g, ok := p.gauges[k]
	if !ok {
		p.t.Fatalf("no gauge named %s", k)
	}
	if g.getValue() == 0 {
		p.t.Fatalf("%v = 0, want non-zero", k)
	}
}

// CheckStopped verifies that a provider has been Stop'd.
func (p *Provider) CheckStopped() {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	if !p.stopped {
		p.t.Fatal("provider is not stopped")
	}
}

// keyFor builds the series key: the name followed by the key/value pairs,
// e.g. "http_requests_total.method:GET:status:2xx".
func (p *Provider) keyFor(name string, labelValues ...string) string {
	if len(labelValues) == 0 {
		return name
	}
	return name + "." + strings.Join(labelValues, ":")
}
