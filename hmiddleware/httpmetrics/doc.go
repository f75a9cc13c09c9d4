// Package httpmetrics provides middleware that feeds completed HTTP requests
// into instrumentator.Instrumentation values.
//
// For each request the middleware resolves the chi route template, groups the
// status code into its class (e.g. "2xx"), optionally rounds the duration and
// hands the resulting instrumentator.Info to every registered instrumentation,
// in order:
//
//	p := prometheus.New(nil)
//	in, err := httpmetrics.New(p, httpmetrics.DefaultConfig())
//	...
//	in.Add(instrumentator.Must(instrumentator.Default(p)))
//	r := chi.NewRouter()
//	r.Use(in.Handler)
//
// Requests that did not match a route are reported with the "none" handler,
// unless configured otherwise, so arbitrary paths do not create new series.
package httpmetrics
