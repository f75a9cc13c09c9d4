package otel

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	xmetrics "github.com/heroku/instrumentator/go-kit/metrics"
)

func newTestProvider(t *testing.T, opts ...Option) (*Provider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	p := New(context.Background(), mp, opts...)
	t.Cleanup(p.Stop)
	return p, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return metricdata.Metrics{}
}

func TestCounter(t *testing.T) {
	p, reader := newTestProvider(t, WithAttributes(attribute.String("app", "web")))

	c, err := p.NewCounter(xmetrics.Opts{Name: "http_requests_total", Help: "Total requests.", LabelNames: []string{"handler"}})
	require.NoError(t, err)

	c.With("handler", "/users").Add(1)
	c.With("handler", "/users").Add(2)
	c.With("handler", "/items").Add(1)

	m := collect(t, reader, "http_requests_total")
	assert.Equal(t, "Total requests.", m.Description)

	sum, ok := m.Data.(metricdata.Sum[float64])
	require.True(t, ok, "unexpected data type %T", m.Data)
	require.Len(t, sum.DataPoints, 2)

	got := map[string]float64{}
	for _, dp := range sum.DataPoints {
		h, _ := dp.Attributes.Value("handler")
		app, _ := dp.Attributes.Value("app")
		assert.Equal(t, "web", app.AsString())
		got[h.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]float64{"/users": 3, "/items": 1}, got)
}

func TestGaugeSetAndAdd(t *testing.T) {
	p, reader := newTestProvider(t)

	g, err := p.NewGauge(xmetrics.Opts{Name: "http_requests_inprogress", LabelNames: []string{"method"}})
	require.NoError(t, err)

	g.With("method", "GET").Add(1)
	g.With("method", "GET").Add(1)
	g.With("method", "GET").Add(-1)
	g.With("method", "POST").Set(5)
	g.With("method", "POST").Set(3)

	m := collect(t, reader, "http_requests_inprogress")
	sum, ok := m.Data.(metricdata.Sum[float64])
	require.True(t, ok, "unexpected data type %T", m.Data)
	assert.False(t, sum.IsMonotonic)

	got := map[string]float64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value("method")
		got[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]float64{"GET": 1, "POST": 3}, got)
}

func TestHistogramBuckets(t *testing.T) {
	p, reader := newTestProvider(t)

	h, err := p.NewHistogram(xmetrics.Opts{Name: "http_request_duration_seconds"}, xmetrics.LowResBuckets)
	require.NoError(t, err)

	h.Observe(0.05)
	h.Observe(0.42)
	h.Observe(7)

	m := collect(t, reader, "http_request_duration_seconds")
	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "unexpected data type %T", m.Data)
	require.Len(t, hist.DataPoints, 1)

	dp := hist.DataPoints[0]
	assert.Equal(t, []float64{0.1, 0.5, 1}, dp.Bounds)
	assert.Equal(t, []uint64{1, 1, 0, 1}, dp.BucketCounts)
	assert.Equal(t, uint64(3), dp.Count)
	assert.InDelta(t, 7.47, dp.Sum, 1e-9)
}

func TestSummaryKeepsCountAndSum(t *testing.T) {
	p, reader := newTestProvider(t)

	s, err := p.NewSummary(xmetrics.Opts{Name: "http_request_size_bytes", LabelNames: []string{"handler"}})
	require.NoError(t, err)

	s.With("handler", "/").Observe(120)
	s.With("handler", "/").Observe(80)

	m := collect(t, reader, "http_request_size_bytes")
	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "unexpected data type %T", m.Data)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, float64(200), hist.DataPoints[0].Sum)
}

func TestDuplicateName(t *testing.T) {
	p, _ := newTestProvider(t)

	_, err := p.NewCounter(xmetrics.Opts{Name: "requests"})
	require.NoError(t, err)

	_, err = p.NewHistogram(xmetrics.Opts{Name: "requests"}, xmetrics.DefBuckets)
	assert.True(t, errors.Is(err, xmetrics.ErrDuplicateMetric), "got %v", err)

	_, err = p.NewCounter(xmetrics.Opts{Namespace: "app", Name: "requests"})
	assert.NoError(t, err)
}

func TestInvalidOpts(t *testing.T) {
	p, _ := newTestProvider(t)

	_, err := p.NewCounter(xmetrics.Opts{})
	assert.Error(t, err)

	_, err = p.NewGauge(xmetrics.Opts{Name: "g", LabelNames: []string{"a", "a"}})
	assert.Error(t, err)
}

func TestMakeAttributes(t *testing.T) {
	set := makeAttributes(nil, []string{"a", "1", "b"})
	v, ok := set.Value("b")
	require.True(t, ok)
	assert.Equal(t, "unknown", v.AsString())
	assert.Equal(t, 2, set.Len())
}
