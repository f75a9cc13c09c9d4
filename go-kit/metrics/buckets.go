package metrics

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// DefBuckets are the default Prometheus latency buckets, in seconds,
	// terminated by the +Inf overflow bucket.
	DefBuckets = []float64{.005, .01, .025, .05, .075, .1, .25, .5, .75, 1, 2.5, 5, 7.5, 10, math.Inf(+1)}

	// HighResBuckets is a fine grained latency distribution in seconds, meant
	// for label-free histograms where percentiles are computed over all
	// routes combined.
	HighResBuckets = []float64{
		0.01, 0.025, 0.05, 0.075,
		0.1, 0.25, 0.5, 0.75,
		1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5, 7.5,
		10, 30, 60,
	}

	// LowResBuckets is a coarse latency distribution in seconds, meant for
	// histograms partitioned by route where every bucket is multiplied by
	// the number of distinct label values.
	LowResBuckets = []float64{0.1, 0.5, 1}
)

// NormalizeBuckets returns a copy of buckets that ends with the +Inf
// overflow bucket. It is idempotent: normalizing an already normalized slice
// returns an equal slice.
//
// Empty slices, NaN bounds and bounds that are not strictly ascending are
// rejected.
func NormalizeBuckets(buckets []float64) ([]float64, error) {
	if len(buckets) == 0 {
		return nil, errors.New("buckets: at least one bucket is required")
	}
	for i, b := range buckets {
		if math.IsNaN(b) {
			return nil, errors.Errorf("buckets: bound %d is NaN", i)
		}
		if i > 0 && b <= buckets[i-1] {
			return nil, errors.Errorf("buckets: bound %d (%v) must be greater than %v", i, b, buckets[i-1])
		}
	}

	out := make([]float64, len(buckets), len(buckets)+1)
	copy(out, buckets)
	if !math.IsInf(out[len(out)-1], +1) {
		out = append(out, math.Inf(+1))
	}
	return out, nil
}

// FiniteBounds returns the bounds of normalized buckets without the
// implicit +Inf overflow bucket, for backends that add it themselves.
func FiniteBounds(buckets []float64) []float64 {
	if n := len(buckets); n > 0 && math.IsInf(buckets[n-1], +1) {
		return buckets[:n-1]
	}
	return buckets
}
