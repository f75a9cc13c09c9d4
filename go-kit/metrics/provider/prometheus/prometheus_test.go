package prometheus

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xmetrics "github.com/heroku/instrumentator/go-kit/metrics"
)

func family(t *testing.T, p *Provider, name string) *dto.MetricFamily {
	t.Helper()

	mfs, err := p.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %s not gathered", name)
	return nil
}

func TestCounterLabels(t *testing.T) {
	p := New(nil)

	c, err := p.NewCounter(xmetrics.Opts{
		Name:       "http_requests_total",
		Help:       "Total number of requests by method, status and handler.",
		LabelNames: []string{"method", "status", "handler"},
	})
	require.NoError(t, err)

	c.With("method", "GET", "status", "2xx", "handler", "/users").Add(1)
	c.With("method", "GET", "status", "2xx", "handler", "/users").Add(1)

	expected := `
# HELP http_requests_total Total number of requests by method, status and handler.
# TYPE http_requests_total counter
http_requests_total{handler="/users",method="GET",status="2xx"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(p.Registry(), strings.NewReader(expected), "http_requests_total"))
}

func TestHistogramBuckets(t *testing.T) {
	p := New(nil)

	h, err := p.NewHistogram(xmetrics.Opts{
		Namespace:  "app",
		Name:       "http_request_duration_seconds",
		LabelNames: []string{"handler"},
	}, xmetrics.DefBuckets)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		h.With("handler", "/").Observe(0.42)
	}

	mf := family(t, p, "app_http_request_duration_seconds")
	require.Len(t, mf.GetMetric(), 1)
	hist := mf.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(3), hist.GetSampleCount())
	assert.InDelta(t, 1.26, hist.GetSampleSum(), 1e-9)

	// The trailing +Inf of DefBuckets is implicit in Prometheus.
	buckets := hist.GetBucket()
	require.Len(t, buckets, len(xmetrics.DefBuckets)-1)
	for _, b := range buckets {
		if b.GetUpperBound() == 0.5 {
			assert.Equal(t, uint64(3), b.GetCumulativeCount())
		}
		if b.GetUpperBound() == 0.25 {
			assert.Equal(t, uint64(0), b.GetCumulativeCount())
		}
	}
}

func TestSummaryCountAndSum(t *testing.T) {
	p := New(nil)

	s, err := p.NewSummary(xmetrics.Opts{Name: "http_request_size_bytes", LabelNames: []string{"handler"}})
	require.NoError(t, err)

	s.With("handler", "/").Observe(120)
	s.With("handler", "/").Observe(340)

	mf := family(t, p, "http_request_size_bytes")
	sum := mf.GetMetric()[0].GetSummary()
	assert.Equal(t, uint64(2), sum.GetSampleCount())
	assert.Equal(t, float64(460), sum.GetSampleSum())
	assert.Empty(t, sum.GetQuantile())
}

func TestGauge(t *testing.T) {
	p := New(nil)

	g, err := p.NewGauge(xmetrics.Opts{Name: "http_requests_inprogress"})
	require.NoError(t, err)
	g.Add(2)
	g.Add(-1)

	mf := family(t, p, "http_requests_inprogress")
	assert.Equal(t, float64(1), mf.GetMetric()[0].GetGauge().GetValue())
}

func TestDuplicateNames(t *testing.T) {
	p := New(nil)

	_, err := p.NewCounter(xmetrics.Opts{Name: "requests"})
	require.NoError(t, err)

	_, err = p.NewCounter(xmetrics.Opts{Name: "requests"})
	assert.True(t, errors.Is(err, xmetrics.ErrDuplicateMetric), "got %v", err)

	_, err = p.NewSummary(xmetrics.Opts{Name: "requests", LabelNames: []string{"handler"}})
	assert.True(t, errors.Is(err, xmetrics.ErrDuplicateMetric), "got %v", err)
}

func TestSharedRegistry(t *testing.T) {
	a := New(nil)
	b := New(a.Registry())

	_, err := a.NewCounter(xmetrics.Opts{Name: "requests"})
	require.NoError(t, err)

	_, err = b.NewCounter(xmetrics.Opts{Name: "requests"})
	assert.True(t, errors.Is(err, xmetrics.ErrDuplicateMetric), "got %v", err)
}

func TestHandler(t *testing.T) {
	p := New(nil)

	c, err := p.NewCounter(xmetrics.Opts{Name: "requests", Help: "Requests."})
	require.NoError(t, err)
	c.Add(1)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "requests 1")
}
