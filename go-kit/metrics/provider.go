/* Copyright (c) 2018 Salesforce
 * All rights reserved.
 * Licensed under the BSD 3-Clause license.
 * For full license text, see LICENSE.txt file in the repo root  or https://opensource.org/licenses/BSD-3-Clause
 */

// Package metrics defines the backend contract used by the instrumentator.
//
// It is a thin layer over the go-kit metric interfaces: a Provider knows how
// to build named, documented and labeled go-kit instruments for a specific
// backend (Prometheus, OpenTelemetry, l2met logs, ...). Instruments are
// registered exactly once; constructing two instruments with the same fully
// qualified name from one Provider is an error.
package metrics

import (
	"strings"

	"github.com/go-kit/kit/metrics"
	"github.com/pkg/errors"
)

// ErrDuplicateMetric is returned (wrapped) by a Provider when an instrument
// with the same fully qualified name was already constructed.
var ErrDuplicateMetric = errors.New("metric already registered")

// Opts describes an instrument.
type Opts struct {
	// Namespace, Subsystem and Name are joined with "_" to build the fully
	// qualified name. Only Name is required.
	Namespace string
	Subsystem string
	Name      string

	// Help documents the instrument.
	Help string

	// LabelNames are the label keys the instrument is partitioned by.
	// Observations on a labeled instrument must go through With, passing
	// key/value pairs in exactly this order.
	LabelNames []string
}

// FQName returns the fully qualified name of the instrument, following the
// Prometheus convention of joining the non-empty parts with "_".
func (o Opts) FQName() string {
	if o.Name == "" {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{o.Namespace, o.Subsystem, o.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_")
}

// Validate checks that the options describe a usable instrument.
func (o Opts) Validate() error {
	if o.Name == "" {
		return errors.New("metric name is required")
	}
	seen := make(map[string]bool, len(o.LabelNames))
	for _, l := range o.LabelNames {
		if l == "" {
			return errors.Errorf("metric %s: empty label name", o.FQName())
		}
		if seen[l] {
			return errors.Errorf("metric %s: duplicate label name %q", o.FQName(), l)
		}
		seen[l] = true
	}
	return nil
}

// DuplicateError wraps ErrDuplicateMetric with the offending name.
func DuplicateError(name string) error {
	return errors.Wrapf(ErrDuplicateMetric, "%s", name)
}

// Provider represents the different types of metrics that a backend can
// expose. The returned instruments are safe for concurrent use.
//
// Summaries are returned as go-kit Histograms: they accept observations, but
// keep only a running count and sum (no buckets, no quantiles).
type Provider interface {
	NewCounter(o Opts) (metrics.Counter, error)
	NewGauge(o Opts) (metrics.Gauge, error)
	NewHistogram(o Opts, buckets []float64) (metrics.Histogram, error)
	NewSummary(o Opts) (metrics.Histogram, error)
	Stop()
}
