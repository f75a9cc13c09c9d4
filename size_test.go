package instrumentator

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heroku/instrumentator/go-kit/metrics/testmetrics"
)

func sizedInfo(reqLength, respLength string, withResponse bool) Info {
	r := httptest.NewRequest("POST", "/items", nil)
	if reqLength != "" {
		r.Header.Set("Content-Length", reqLength)
	}
	info := Info{
		Request:         r,
		Method:          "POST",
		ModifiedHandler: "/items",
		ModifiedStatus:  "2xx",
	}
	if withResponse {
		info.Response = &Response{StatusCode: http.StatusOK, Header: http.Header{}}
		if respLength != "" {
			info.Response.Header.Set("Content-Length", respLength)
		}
	}
	return info
}

var itemsLabels = []string{"handler", "/items", "method", "POST", "status", "2xx"}

func TestRequestSize(t *testing.T) {
	p := testmetrics.NewProvider(t)
	m := Must(RequestSize(p))

	p.CheckRegistered(RequestSizeName, testmetrics.KindSummary, "handler", "method", "status")
	p.CheckHelp(RequestSizeName, RequestSizeHelp)

	m.Observe(sizedInfo("120", "", true))
	m.Observe(sizedInfo("", "340", true))
	m.Observe(sizedInfo("", "", false))

	p.CheckObservations(RequestSizeName, []float64{120}, itemsLabels...)
}

func TestResponseSize(t *testing.T) {
	p := testmetrics.NewProvider(t)
	m := Must(ResponseSize(p, WithDimensions(Handler)))

	p.CheckRegistered(ResponseSizeName, testmetrics.KindSummary, "handler")

	m.Observe(sizedInfo("120", "340", true))
	m.Observe(sizedInfo("120", "", true))
	m.Observe(sizedInfo("120", "340", false))

	p.CheckObservations(ResponseSizeName, []float64{340}, "handler", "/items")
}

func TestSizeSkipsWhenHeaderAbsent(t *testing.T) {
	p := testmetrics.NewProvider(t)
	req := Must(RequestSize(p))
	resp := Must(ResponseSize(p))
	combined := Must(CombinedSize(p))

	for _, info := range []Info{
		sizedInfo("", "", true),
		sizedInfo("", "", false),
		{},
	} {
		req.Observe(info)
		resp.Observe(info)
		combined.Observe(info)
	}

	p.CheckNoObservationsAnywhere(RequestSizeName)
	p.CheckNoObservationsAnywhere(ResponseSizeName)
	p.CheckNoObservationsAnywhere(CombinedSizeName)
}

func TestSizeSkipsMalformedHeader(t *testing.T) {
	p := testmetrics.NewProvider(t)
	req := Must(RequestSize(p))
	combined := Must(CombinedSize(p))

	for _, v := range []string{"abc", "-1", "1.5", "12 34"} {
		info := sizedInfo(v, "", true)
		req.Observe(info)
		combined.Observe(info)
	}
	p.CheckNoObservationsAnywhere(RequestSizeName)
	p.CheckNoObservationsAnywhere(CombinedSizeName)

	// A malformed response length does not hide a valid request length.
	combined.Observe(sizedInfo("120", "bogus", true))
	p.CheckObservations(CombinedSizeName, []float64{120}, itemsLabels...)
}

func TestCombinedSize(t *testing.T) {
	p := testmetrics.NewProvider(t)
	m := Must(CombinedSize(p))

	p.CheckRegistered(CombinedSizeName, testmetrics.KindSummary, "handler", "method", "status")
	p.CheckHelp(CombinedSizeName, CombinedSizeHelp)

	m.Observe(sizedInfo("120", "340", true))
	m.Observe(sizedInfo("120", "", true))
	m.Observe(sizedInfo("120", "340", false))
	m.Observe(sizedInfo("", "340", true))
	m.Observe(sizedInfo("", "", true))

	p.CheckObservations(CombinedSizeName, []float64{460, 120, 120, 340}, itemsLabels...)
}

func TestSizeWithoutLabels(t *testing.T) {
	p := testmetrics.NewProvider(t)
	m := Must(CombinedSize(p, WithDimensions()))

	p.CheckRegistered(CombinedSizeName, testmetrics.KindSummary)

	m.Observe(sizedInfo("0", "10", true))
	p.CheckObservations(CombinedSizeName, []float64{10})
}

func TestContentLength(t *testing.T) {
	tests := []struct {
		value  string
		want   float64
		wantOK bool
	}{
		{"", 0, false},
		{"0", 0, true},
		{"42", 42, true},
		{" 42 ", 42, true},
		{"-5", 0, false},
		{"4x", 0, false},
	}

	for _, tt := range tests {
		h := http.Header{}
		if tt.value != "" {
			h.Set("Content-Length", tt.value)
		}
		got, ok := contentLength(h)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("contentLength(%q) = %v, %v, want %v, %v", tt.value, got, ok, tt.want, tt.wantOK)
		}
	}
}
