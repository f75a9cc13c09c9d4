package instrumentator

import (
	"github.com/go-kit/kit/metrics"

	xmetrics "github.com/heroku/instrumentator/go-kit/metrics"
)

// Size defaults.
const (
	RequestSizeName  = "http_request_size_bytes"
	RequestSizeHelp  = "Content bytes of requests."
	ResponseSizeName = "http_response_size_bytes"
	ResponseSizeHelp = "Content bytes of responses."
	CombinedSizeName = "http_combined_size_bytes"
	CombinedSizeHelp = "Content bytes of requests and responses."
)

// SizeMetric observes Content-Length header values into a summary. Requests
// without the header are skipped, not recorded as zero.
type SizeMetric struct {
	summary metrics.Histogram
	labels  labelSet
	size    func(Info) (float64, bool)
}

var _ Instrumentation = (*SizeMetric)(nil)

// RequestSize builds a summary of the request Content-Length.
func RequestSize(p xmetrics.Provider, opts ...Option) (*SizeMetric, error) {
	return newSize(p, RequestSizeName, RequestSizeHelp, Info.RequestContentLength, opts)
}

// ResponseSize builds a summary of the response Content-Length. Requests
// without a response are skipped.
func ResponseSize(p xmetrics.Provider, opts ...Option) (*SizeMetric, error) {
	return newSize(p, ResponseSizeName, ResponseSizeHelp, Info.ResponseContentLength, opts)
}

// CombinedSize builds a summary of the request and response Content-Length
// added together. If only one of them is known it is observed alone.
func CombinedSize(p xmetrics.Provider, opts ...Option) (*SizeMetric, error) {
	return newSize(p, CombinedSizeName, CombinedSizeHelp, combinedContentLength, opts)
}

func newSize(p xmetrics.Provider, name, help string, size func(Info) (float64, bool), opts []Option) (*SizeMetric, error) {
	c := newConfig(name, help, opts)

	l := newLabelSet(c.dims)
	s, err := p.NewSummary(c.opts(c.name, c.help, l.names))
	if err != nil {
		return nil, err
	}
	return &SizeMetric{summary: s, labels: l, size: size}, nil
}

// Observe implements Instrumentation.
func (m *SizeMetric) Observe(info Info) {
	n, ok := m.size(info)
	if !ok {
		return
	}
	bindHistogram(m.summary, m.labels, info).Observe(n)
}

func combinedContentLength(info Info) (float64, bool) {
	req, reqOK := info.RequestContentLength()
	resp, respOK := info.ResponseContentLength()
	return req + resp, reqOK || respOK
}
