// Package metricsregistry provides a metrics.Provider decorator that keeps
// track of every instrument constructed through it.
package metricsregistry

import (
	"sort"
	"sync"

	kitmetrics "github.com/go-kit/kit/metrics"

	"github.com/heroku/instrumentator/go-kit/metrics"
)

// A Registry is a metrics.Provider that guarantees fully qualified metric
// names are unique across all instrument kinds, even when the wrapped
// backend would silently hand back a second instrument for the same name.
// It is safe for concurrent use.
type Registry struct {
	p metrics.Provider

	mu    sync.Mutex
	names map[string]string
}

// simple compile time checks for interface compliance.
var (
	_ metrics.Provider = &Registry{}
	_ metrics.Provider = &prefixedRegistry{}
)

// New creates a Registry given a metrics.Provider.
func New(p metrics.Provider) *Registry {
	return &Registry{
		p:     p,
		names: make(map[string]string),
	}
}

// reserve claims the name for an instrument kind, failing if it is taken.
func (r *Registry) reserve(o metrics.Opts, kind string) error {
	if err := o.Validate(); err != nil {
		return err
	}
	name := o.FQName()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[name]; ok {
		return metrics.DuplicateError(name)
	}
	r.names[name] = kind
	return nil
}

// release gives a name back when the wrapped provider refused it.
func (r *Registry) release(o metrics.Opts) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.names, o.FQName())
}

// NewCounter implements metrics.Provider.
func (r *Registry) NewCounter(o metrics.Opts) (kitmetrics.Counter, error) {
	if err := r.reserve(o, "counter"); err != nil {
		return nil, err
	}
	c, err := r.p.NewCounter(o)
	if err != nil {
		r.release(o)
		return nil, err
	}
	return c, nil
}

// NewGauge implements metrics.Provider.
func (r *Registry) NewGauge(o metrics.Opts) (kitmetrics.Gauge, error) {
	if err := r.reserve(o, "gauge"); err != nil {
		return nil, err
	}
	g, err := r.p.NewGauge(o)
	if err != nil {
		r.release(o)
		return nil, err
	}
	return g, nil
}

// NewHistogram implements metrics.Provider.
func (r *Registry) NewHistogram(o metrics.Opts, buckets []float64) (kitmetrics.Histogram, error) {
	if err := r.reserve(o, "histogram"); err != nil {
		return nil, err
	}
	h, err := r.p.NewHistogram(o, buckets)
	if err != nil {
		r.release(o)
		return nil, err
	}
	return h, nil
}

// NewSummary implements metrics.Provider.
func (r *Registry) NewSummary(o metrics.Opts) (kitmetrics.Histogram, error) {
	if err := r.reserve(o, "summary"); err != nil {
		return nil, err
	}
	s, err := r.p.NewSummary(o)
	if err != nil {
		r.release(o)
		return nil, err
	}
	return s, nil
}

// Names returns the registered fully qualified names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.names))
	for n := range r.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Stop stops the wrapped provider.
func (r *Registry) Stop() {
	r.p.Stop()
}

// prefixedRegistry shares the state of the parent provider and fills in
// a namespace on every instrument that does not carry one.
type prefixedRegistry struct {
	p         metrics.Provider
	namespace string
}

// NewPrefixed creates a new metrics.Provider backed by p which sets the
// namespace of every instrument created without one.
func NewPrefixed(p metrics.Provider, namespace string) metrics.Provider {
	return &prefixedRegistry{
		p:         p,
		namespace: namespace,
	}
}

func (r *prefixedRegistry) prefixed(o metrics.Opts) metrics.Opts {
	if o.Namespace == "" {
		o.Namespace = r.namespace
	}
	return o
}

// NewCounter implements metrics.Provider.
func (r *prefixedRegistry) NewCounter(o metrics.Opts) (kitmetrics.Counter, error) {
	return r.p.NewCounter(r.prefixed(o))
}

// NewGauge implements metrics.Provider.
func (r *prefixedRegistry) NewGauge(o metrics.Opts) (kitmetrics.Gauge, error) {
	return r.p.NewGauge(r.prefixed(o))
}

// NewHistogram implements metrics.Provider.
func (r *prefixedRegistry) NewHistogram(o metrics.Opts, buckets []float64) (kitmetrics.Histogram, error) {
	return r.p.NewHistogram(r.prefixed(o), buckets)
}

// NewSummary implements metrics.Provider.
func (r *prefixedRegistry) NewSummary(o metrics.Opts) (kitmetrics.Histogram, error) {
	return r.p.NewSummary(r.prefixed(o))
}

// Stop implements metrics.Provider.
func (r *prefixedRegistry) Stop() {
	r.p.Stop()
}
