package histogram

import (
	"math"
	"reflect"
	"testing"
)

func TestCompute_EvenSpread(t *testing.T) {
	result, err := Compute([]float64{1, 2, 3, 4}, 4)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if result.Min != 1 || result.Max != 4 {
		t.Errorf("range: got [%v, %v], want [1, 4]", result.Min, result.Max)
	}
	want := []uint64{1, 1, 1, 1}
	if !reflect.DeepEqual(result.Buckets, want) {
		t.Errorf("buckets: got %v, want %v", result.Buckets, want)
	}
}

func TestCompute_SumEqualsSampleCount(t *testing.T) {
	cases := []struct {
		name    string
		samples []float64
		bins    int
	}{
		{"pixels", []float64{0, 12, 12, 200, 255, 37, 37, 37, 91}, 16},
		{"negative range", []float64{-5.5, -1, 0, 3.25, 8}, 4},
		{"two values many bins", []float64{1, 100}, 256},
		{"repeats", []float64{2, 2, 2, 2, 9}, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Compute(tc.samples, tc.bins)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if len(result.Buckets) != tc.bins {
				t.Fatalf("bucket count: got %d, want %d", len(result.Buckets), tc.bins)
			}
			var sum uint64
			for _, c := range result.Buckets {
				sum += c
			}
			if sum != uint64(len(tc.samples)) {
				t.Errorf("bucket sum: got %d, want %d", sum, len(tc.samples))
			}
		})
	}
}

func TestCompute_ExtremesLandInEndBuckets(t *testing.T) {
	result, err := Compute([]float64{3, 7, 4.2, 5.9, 7, 3}, 8)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if result.Buckets[0] < 1 {
		t.Errorf("first bucket: got %d, want >= 1 (holds the minimum)", result.Buckets[0])
	}
	last := result.Buckets[len(result.Buckets)-1]
	if last < 1 {
		t.Errorf("last bucket: got %d, want >= 1 (holds the maximum)", last)
	}
}

func TestCompute_DegenerateInput(t *testing.T) {
	result, err := Compute([]float64{5, 5, 5}, 64)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if result.Min != 5 || result.Max != 5 {
		t.Errorf("range: got [%v, %v], want [5, 5]", result.Min, result.Max)
	}
	if result.Buckets != nil {
		t.Errorf("buckets: got %v, want nil for zero-range input", result.Buckets)
	}
}

func TestCompute_DefaultBins(t *testing.T) {
	result, err := Compute([]float64{0, 255}, 0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(result.Buckets) != DefaultBins {
		t.Errorf("bucket count: got %d, want %d", len(result.Buckets), DefaultBins)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	samples := []float64{9, 1, 4, 4, 7.5, 2.25, 9, 0.1}

	first, err := Compute(samples, 32)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	second, err := Compute(samples, 32)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n first: %+v\nsecond: %+v", first, second)
	}
}

func TestCompute_NaNIgnoredInRangeScan(t *testing.T) {
	result, err := Compute([]float64{math.NaN(), 2, 8, math.NaN()}, 4)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if result.Min != 2 || result.Max != 8 {
		t.Errorf("range: got [%v, %v], want [2, 8]", result.Min, result.Max)
	}
}

func TestCompute_EmptyBuffer(t *testing.T) {
	if _, err := Compute(nil, 16); err == nil {
		t.Error("Compute(nil): expected error, got nil")
	}
	if _, err := Compute([]float64{}, 16); err == nil {
		t.Error("Compute(empty): expected error, got nil")
	}
}
