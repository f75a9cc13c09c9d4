package instrumentator

import (
	"github.com/go-kit/kit/metrics"
	"github.com/pkg/errors"

	xmetrics "github.com/heroku/instrumentator/go-kit/metrics"
)

// Names of the instruments of the Default bundle.
const (
	RequestsTotalName       = "http_requests_total"
	RequestDurationHighName = "http_request_duration_highr_seconds"
	RequestDurationName     = "http_request_duration_seconds"
)

// DefaultMetrics is the standard set of HTTP metrics:
//
//	http_requests_total{method,status,handler}      counter
//	http_request_size_bytes{handler}                summary
//	http_response_size_bytes{handler}               summary
//	http_request_duration_highr_seconds             histogram, high resolution
//	http_request_duration_seconds{handler}          histogram, low resolution
//
// Unlike RequestSize and ResponseSize, a missing Content-Length is observed
// as 0 so the five instruments always move together.
type DefaultMetrics struct {
	total       metrics.Counter
	requestSize metrics.Histogram
	respSize    metrics.Histogram
	latencyHigh metrics.Histogram
	latencyLow  metrics.Histogram
}

var _ Instrumentation = (*DefaultMetrics)(nil)

// Default builds the DefaultMetrics bundle. WithNamespace, WithSubsystem,
// WithHighResBuckets and WithLowResBuckets apply; the other options are
// ignored.
//
// Registration is not transactional: if an instrument fails to register,
// the ones registered before it stay registered with p. Build Default once
// at startup, usually through Must.
func Default(p xmetrics.Provider, opts ...Option) (*DefaultMetrics, error) {
	c := newConfig("", "", opts)

	high, err := xmetrics.NormalizeBuckets(c.highBuckets)
	if err != nil {
		return nil, errors.Wrap(err, RequestDurationHighName)
	}
	low, err := xmetrics.NormalizeBuckets(c.lowBuckets)
	if err != nil {
		return nil, errors.Wrap(err, RequestDurationName)
	}

	var m DefaultMetrics
	if m.total, err = p.NewCounter(c.opts(RequestsTotalName,
		"Total number of requests by method, status and handler.",
		[]string{"method", "status", "handler"},
	)); err != nil {
		return nil, err
	}
	if m.requestSize, err = p.NewSummary(c.opts(RequestSizeName,
		"Content length of incoming requests by handler. "+
			"Only value of header is respected. Otherwise ignored. "+
			"No percentile calculated.",
		[]string{"handler"},
	)); err != nil {
		return nil, err
	}
	if m.respSize, err = p.NewSummary(c.opts(ResponseSizeName,
		"Content length of outgoing responses by handler. "+
			"Only value of header is respected. Otherwise ignored. "+
			"No percentile calculated.",
		[]string{"handler"},
	)); err != nil {
		return nil, err
	}
	if m.latencyHigh, err = p.NewHistogram(c.opts(RequestDurationHighName,
		"Latency with many buckets but no API specific labels. "+
			"Made for more accurate percentile calculations.",
		nil,
	), high); err != nil {
		return nil, err
	}
	if m.latencyLow, err = p.NewHistogram(c.opts(RequestDurationName,
		"Latency with only few buckets by handler. "+
			"Made to be only used if aggregation by handler is important.",
		[]string{"handler"},
	), low); err != nil {
		return nil, err
	}
	return &m, nil
}

// Observe implements Instrumentation.
func (m *DefaultMetrics) Observe(info Info) {
	handler := info.ModifiedHandler

	m.total.With("method", info.Method, "status", info.ModifiedStatus, "handler", handler).Add(1)

	reqSize, _ := info.RequestContentLength()
	m.requestSize.With("handler", handler).Observe(reqSize)

	respSize, _ := info.ResponseContentLength()
	m.respSize.With("handler", handler).Observe(respSize)

	m.latencyHigh.Observe(info.ModifiedDuration)
	m.latencyLow.With("handler", handler).Observe(info.ModifiedDuration)
}
