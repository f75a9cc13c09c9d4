// Package multiprovider allows multiple metrics.Providers to be composed together to report metrics to multiple places.
package multiprovider

import (
	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/multi"

	"github.com/heroku/instrumentator/go-kit/metrics"
)

// New takes any number of providers and returns a metrics.Provider that fans
// out all constructor calls to all the providers.
//
// The first provider that refuses an instrument aborts the construction and
// its error is returned.
func New(providers ...metrics.Provider) metrics.Provider {
	return &multiProvider{providers: providers}
}

// multiProvider is also a metrics.Provider
var _ metrics.Provider = &multiProvider{}

type multiProvider struct {
	providers []metrics.Provider
}

// NewCounter returns a multi.Counter composed from all the given providers.
func (m *multiProvider) NewCounter(o metrics.Opts) (kitmetrics.Counter, error) {
	counters := make([]kitmetrics.Counter, 0, len(m.providers))

	for _, p := range m.providers {
		c, err := p.NewCounter(o)
		if err != nil {
			return nil, err
		}
		counters = append(counters, c)
	}
	return multi.NewCounter(counters...), nil
}

// NewGauge returns a multi.Gauge composed from all the given providers.
func (m *multiProvider) NewGauge(o metrics.Opts) (kitmetrics.Gauge, error) {
	gauges := make([]kitmetrics.Gauge, 0, len(m.providers))

	for _, p := range m.providers {
		g, err := p.NewGauge(o)
		if err != nil {
			return nil, err
		}
		gauges = append(gauges, g)
	}
	return multi.NewGauge(gauges...), nil
}

// NewHistogram returns a multi.Histogram composed from all the given providers.
func (m *multiProvider) NewHistogram(o metrics.Opts, buckets []float64) (kitmetrics.Histogram, error) {
	histograms := make([]kitmetrics.Histogram, 0, len(m.providers))

	for _, p := range m.providers {
		h, err := p.NewHistogram(o, buckets)
		if err != nil {
			return nil, err
		}
		histograms = append(histograms, h)
	}
	return multi.NewHistogram(histograms...), nil
}

// NewSummary returns a multi.Histogram of summaries from all the given providers.
func (m *multiProvider) NewSummary(o metrics.Opts) (kitmetrics.Histogram, error) {
	summaries := make([]kitmetrics.Histogram, 0, len(m.providers))

	for _, p := range m.providers {
		s, err := p.NewSummary(o)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return multi.NewHistogram(summaries...), nil
}

// Stop calls stop on all the underlying providers.
func (m *multiProvider) Stop() {
	for _, p := range m.providers {
		p.Stop()
	}
}
