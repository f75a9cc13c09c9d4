package instrumentator

import (
	"github.com/go-kit/kit/metrics"
)

// Instrumentation records an Info into its instruments. Observe must not
// block and is called concurrently.
type Instrumentation interface {
	Observe(info Info)
}

// Func adapts a function to the Instrumentation interface.
type Func func(info Info)

// Observe calls f(info).
func (f Func) Observe(info Info) {
	f(info)
}

// Must panics if err is non-nil. It is meant for process startup, where a
// duplicate metric name is a programming error.
func Must[T Instrumentation](i T, err error) T {
	if err != nil {
		panic(err)
	}
	return i
}

// bindHistogram binds the label values of info, or returns h as is when the
// instrument is label-free.
func bindHistogram(h metrics.Histogram, l labelSet, info Info) metrics.Histogram {
	if l.empty() {
		return h
	}
	return h.With(l.pairs(info)...)
}
