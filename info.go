package instrumentator

import (
	"net/http"
	"strconv"
	"strings"
)

// Info is the view of one request/response cycle handed to every
// Instrumentation. The Modified fields are normalized by the caller and are
// never recomputed here.
type Info struct {
	// Request is the incoming request. It is read only.
	Request *http.Request

	// Response is nil when the request failed before a response was
	// produced.
	Response *Response

	// Method is the raw request method.
	Method string

	// ModifiedHandler is the route template, or a placeholder such as
	// "none" for requests that did not match a template.
	ModifiedHandler string

	// ModifiedStatus is the grouped status, e.g. "2xx".
	ModifiedStatus string

	// ModifiedDuration is the request duration in seconds.
	ModifiedDuration float64
}

// Response is the part of a written response the instrumentations read.
type Response struct {
	StatusCode int
	Header     http.Header
}

// RequestContentLength returns the value of the request Content-Length
// header. ok is false if the header is absent or malformed.
func (i Info) RequestContentLength() (n float64, ok bool) {
	if i.Request == nil {
		return 0, false
	}
	return contentLength(i.Request.Header)
}

// ResponseContentLength returns the value of the response Content-Length
// header. ok is false if there is no response or the header is absent or
// malformed.
func (i Info) ResponseContentLength() (n float64, ok bool) {
	if i.Response == nil {
		return 0, false
	}
	return contentLength(i.Response.Header)
}

// contentLength parses a Content-Length header. A value that is not a
// non-negative integer is treated like a missing header.
func contentLength(h http.Header) (float64, bool) {
	v := strings.TrimSpace(h.Get("Content-Length"))
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return float64(n), true
}
