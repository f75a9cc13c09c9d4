package instrumentator

import (
	"github.com/go-kit/kit/metrics"
	"github.com/pkg/errors"

	xmetrics "github.com/heroku/instrumentator/go-kit/metrics"
)

// Latency defaults.
const (
	LatencyName = "http_request_duration_seconds"
	LatencyHelp = "Duration of HTTP requests in seconds"
)

// LatencyMetric observes request durations into a histogram.
type LatencyMetric struct {
	hist   metrics.Histogram
	labels labelSet
}

var _ Instrumentation = (*LatencyMetric)(nil)

// Latency builds a histogram of Info.ModifiedDuration. It defaults to
// LatencyName, all dimensions and DefBuckets.
func Latency(p xmetrics.Provider, opts ...Option) (*LatencyMetric, error) {
	c := newConfig(LatencyName, LatencyHelp, opts)

	buckets, err := xmetrics.NormalizeBuckets(c.buckets)
	if err != nil {
		return nil, errors.Wrap(err, c.name)
	}

	l := newLabelSet(c.dims)
	h, err := p.NewHistogram(c.opts(c.name, c.help, l.names), buckets)
	if err != nil {
		return nil, err
	}
	return &LatencyMetric{hist: h, labels: l}, nil
}

// Observe implements Instrumentation.
func (m *LatencyMetric) Observe(info Info) {
	bindHistogram(m.hist, m.labels, info).Observe(info.ModifiedDuration)
}
