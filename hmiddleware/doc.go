// Package hmiddleware contains Chi style HTTP middleware and request
// instrumentations that are not metrics.
//
// The metrics middleware lives in the httpmetrics subpackage.
package hmiddleware
