// Package runtimemetrics exposes a go-kit metrics collector for Go runtime
// metrics, for backends that do not collect them natively.
//
// It collects the following metrics:
//
//	runtime_goroutines - number of goroutines
//	runtime_mem_alloc_bytes - allocated bytes for heap objects
//	runtime_mem_sys_bytes - bytes requested from OS (may not all be used)
//	runtime_mem_total_alloc_bytes - cumulative total allocated bytes for heap objects
//	runtime_mem_mallocs - cumulative number of heap allocations
//	runtime_mem_frees - cumulative number of freed heap objects
//	runtime_gc_pause_seconds - histogram of GC pause durations
//	runtime_gc_next_target_heap_size_bytes - target heap size of the next GC cycle
package runtimemetrics
