// Package instrumentator turns completed HTTP request/response pairs into
// metric observations.
//
// An Info describes one request with already normalized attributes: the
// route template (or a placeholder for untemplated paths), the status class
// and the rounded duration. Instrumentations observe an Info into one or
// more instruments built from a metrics.Provider:
//
//	p := prometheus.New(nil)
//	lat := instrumentator.Must(instrumentator.Latency(p,
//		instrumentator.WithDimensions(instrumentator.Handler, instrumentator.Method),
//	))
//	lat.Observe(info)
//
// The labels of an instrument are chosen with Dimensions and are always
// bound in the order handler, method, status.
//
// Producing Info values from a live server is the job of the
// hmiddleware/httpmetrics package.
package instrumentator
