package instrumentator

import (
	xmetrics "github.com/heroku/instrumentator/go-kit/metrics"
)

type config struct {
	name      string
	help      string
	namespace string
	subsystem string
	dims      Dimensions

	buckets     []float64
	highBuckets []float64
	lowBuckets  []float64
}

func newConfig(name, help string, opts []Option) config {
	c := config{
		name:        name,
		help:        help,
		dims:        AllDimensions,
		buckets:     xmetrics.DefBuckets,
		highBuckets: xmetrics.HighResBuckets,
		lowBuckets:  xmetrics.LowResBuckets,
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// opts returns the instrument options for name, labeled by labels.
func (c config) opts(name, help string, labels []string) xmetrics.Opts {
	return xmetrics.Opts{
		Namespace:  c.namespace,
		Subsystem:  c.subsystem,
		Name:       name,
		Help:       help,
		LabelNames: labels,
	}
}

// Option configures the instruments built by a constructor.
type Option func(*config)

// WithName overrides the default metric name. The Default bundle ignores
// it.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithHelp overrides the default documentation string. The Default bundle
// ignores it.
func WithHelp(help string) Option {
	return func(c *config) {
		c.help = help
	}
}

// WithNamespace prefixes metric names with namespace.
func WithNamespace(namespace string) Option {
	return func(c *config) {
		c.namespace = namespace
	}
}

// WithSubsystem prefixes metric names with subsystem, after the namespace.
func WithSubsystem(subsystem string) Option {
	return func(c *config) {
		c.subsystem = subsystem
	}
}

// WithDimensions selects the labels of the instrument. Without this option
// all dimensions are used; WithDimensions() builds a label-free instrument.
// The Default bundle ignores it.
func WithDimensions(ds ...Dimension) Option {
	return func(c *config) {
		c.dims = NewDimensions(ds...)
	}
}

// WithBuckets sets the histogram buckets of Latency. A missing trailing
// +Inf bucket is appended.
func WithBuckets(buckets ...float64) Option {
	return func(c *config) {
		c.buckets = buckets
	}
}

// WithHighResBuckets sets the buckets of the label-free latency histogram
// of the Default bundle.
func WithHighResBuckets(buckets ...float64) Option {
	return func(c *config) {
		c.highBuckets = buckets
	}
}

// WithLowResBuckets sets the buckets of the per handler latency histogram
// of the Default bundle.
func WithLowResBuckets(buckets ...float64) Option {
	return func(c *config) {
		c.lowBuckets = buckets
	}
}
