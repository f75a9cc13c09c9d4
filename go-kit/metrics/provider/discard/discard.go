/* Copyright (c) 2018 Salesforce
 * All rights reserved.
 * Licensed under the BSD 3-Clause license.
 * For full license text, see LICENSE.txt file in the repo root  or https://opensource.org/licenses/BSD-3-Clause
 */

/*
Package discard provides a metrics.Provider whose instruments record
nothing. It is what the instrumentator falls back to when metrics are
disabled, so instrumentation functions can be constructed unconditionally.
*/
package discard

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"

	xmetrics "github.com/heroku/instrumentator/go-kit/metrics"
)

type discardProvider struct{}

var _ xmetrics.Provider = discardProvider{}

// New returns a provider that produces no-op metrics via the
// discarding backend. It validates options but never reports duplicates.
func New() xmetrics.Provider { return discardProvider{} }

// NewCounter implements Provider.
func (discardProvider) NewCounter(o xmetrics.Opts) (metrics.Counter, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return discard.NewCounter(), nil
}

// NewGauge implements Provider.
func (discardProvider) NewGauge(o xmetrics.Opts) (metrics.Gauge, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return discard.NewGauge(), nil
}

// NewHistogram implements Provider.
func (discardProvider) NewHistogram(o xmetrics.Opts, _ []float64) (metrics.Histogram, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return discard.NewHistogram(), nil
}

// NewSummary implements Provider.
func (discardProvider) NewSummary(o xmetrics.Opts) (metrics.Histogram, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return discard.NewHistogram(), nil
}

// Stop implements Provider.
func (discardProvider) Stop() {}
