package runtimemetrics

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	kitmetrics "github.com/go-kit/kit/metrics"

	"github.com/heroku/instrumentator/go-kit/metrics"
)

// GCPauseBuckets are the upper bounds, in seconds, of the GC pause
// histogram.
var GCPauseBuckets = []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}

// Collector collects metrics about the Go runtime into go-kit metrics.
type Collector struct {
	// Goroutines counts the number of goroutines.
	Goroutines kitmetrics.Gauge

	// AllocBytes counts the bytes of allocated heap objects.
	AllocBytes kitmetrics.Gauge

	// SysBytes is the total bytes of memory obtained from the OS.
	//
	// It's likely that not all of this virtual address space reserved by the Go
	// runtime is backed by physical memory at any given moment.
	SysBytes kitmetrics.Gauge

	// TotalAllocBytes is the cumulative total of bytes allocated for heap
	// objects.
	TotalAllocBytes kitmetrics.Gauge

	// Mallocs is the total count of heap objects ever allocated.
	Mallocs kitmetrics.Gauge

	// Frees is the total count of heap objects ever freed.
	Frees kitmetrics.Gauge

	// GCPauseDuration reports observed GC pause times in seconds.
	GCPauseDuration kitmetrics.Histogram

	// NextGCBytes is the target heap size of the next GC cycle.
	NextGCBytes kitmetrics.Gauge

	// lastGCNum tracks the last GC cycle number so Collect can update
	// GCPauseDuration with only new observations.
	lastGCNum int64
}

// NewCollector returns a collector whose metrics are registered with p.
func NewCollector(p metrics.Provider) (*Collector, error) {
	var (
		c   Collector
		err error
	)

	gauges := []struct {
		g    *kitmetrics.Gauge
		name string
		help string
	}{
		{&c.Goroutines, "runtime_goroutines", "Number of goroutines that currently exist."},
		{&c.AllocBytes, "runtime_mem_alloc_bytes", "Bytes of allocated heap objects."},
		{&c.SysBytes, "runtime_mem_sys_bytes", "Bytes of memory obtained from the OS."},
		{&c.TotalAllocBytes, "runtime_mem_total_alloc_bytes", "Cumulative bytes allocated for heap objects."},
		{&c.Mallocs, "runtime_mem_mallocs", "Cumulative count of heap objects allocated."},
		{&c.Frees, "runtime_mem_frees", "Cumulative count of heap objects freed."},
		{&c.NextGCBytes, "runtime_gc_next_target_heap_size_bytes", "Target heap size of the next GC cycle."},
	}
	for _, g := range gauges {
		if *g.g, err = p.NewGauge(metrics.Opts{Name: g.name, Help: g.help}); err != nil {
			return nil, err
		}
	}

	buckets, err := metrics.NormalizeBuckets(GCPauseBuckets)
	if err != nil {
		return nil, err
	}
	c.GCPauseDuration, err = p.NewHistogram(metrics.Opts{
		Name: "runtime_gc_pause_seconds",
		Help: "Duration of GC stop-the-world pauses in seconds.",
	}, buckets)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// Run collects every interval until ctx is canceled.
func (c *Collector) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	c.Collect()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			c.Collect()
		}
	}
}

// Collect calls into the runtime to update its internal metrics.
func (c *Collector) Collect() {
	c.Goroutines.Set(float64(runtime.NumGoroutine()))

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	c.AllocBytes.Set(float64(ms.Alloc))
	c.SysBytes.Set(float64(ms.Sys))
	c.TotalAllocBytes.Set(float64(ms.TotalAlloc))
	c.Mallocs.Set(float64(ms.Mallocs))
	c.Frees.Set(float64(ms.Frees))
	c.NextGCBytes.Set(float64(ms.NextGC))

	var gs debug.GCStats
	debug.ReadGCStats(&gs)

	// More GCs may have run since the last collection than the runtime
	// keeps pause data for. Observe whatever is available.
	unobserved := int(gs.NumGC - c.lastGCNum)
	if unobserved > len(gs.Pause) {
		unobserved = len(gs.Pause)
	}

	for i := 0; i < unobserved; i++ {
		c.GCPauseDuration.Observe(gs.Pause[i].Seconds())
	}

	c.lastGCNum = gs.NumGC
}
