/* Copyright (c) 2018 Salesforce
 * All rights reserved.
 * Licensed under the BSD 3-Clause license.
 * For full license text, see LICENSE.txt file in the repo root  or https://opensource.org/licenses/BSD-3-Clause
 */

// Package otel is a wrapper around Open-Telemetry's API for submitting metrics.
//
// This satisfies the instrumentator metrics.Provider type: instruments are
// created on a Meter of the supplied MeterProvider, and go-kit label values
// become attributes. Exporting (OTLP, stdout, ...) is configured on the
// MeterProvider by the caller.
package otel
