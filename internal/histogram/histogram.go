package histogram

import (
	"fmt"
	"math"
)

// DefaultBins is the bucket count used when the caller does not request one.
const DefaultBins = 256

// Result holds the outcome of one histogram computation. Buckets is nil for
// degenerate input (all samples identical); in that case the result carries
// only Min and Max.
type Result struct {
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Buckets []uint64 `json:"buckets,omitempty"`
}

// Compute scans samples once for the minimum and maximum, then distributes
// the samples across bins buckets spanning [min, max]. A non-positive bins
// selects DefaultBins.
//
// The bucket index for a sample is floor((v-min)/(max-min) * (bins-1)), so
// the minimum always lands in bucket 0 and the maximum in bucket bins-1.
// When max == min the bucket pass is skipped entirely and Buckets is nil.
//
// NaN samples lose every comparison in the min/max scan and are silently
// ignored there; non-finite input is not rejected. Callers that need strict
// validation must pre-filter.
func Compute(samples []float64, bins int) (Result, error) {
	if len(samples) == 0 {
		return Result{}, fmt.Errorf("empty sample buffer")
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, v := range samples {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	if maxVal-minVal == 0 {
		return Result{Min: minVal, Max: maxVal}, nil
	}

	buckets := make([]uint64, bins)
	scale := float64(bins-1) / (maxVal - minVal)
	for _, v := range samples {
		idx := int((v - minVal) * scale)
		idx = max(0, min(idx, bins-1))
		buckets[idx]++
	}

	return Result{Min: minVal, Max: maxVal, Buckets: buckets}, nil
}
