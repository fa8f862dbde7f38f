package worker

import (
	"io"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"pixelprobe/internal/histogram"
	"pixelprobe/internal/logger"
)

func newDispatcher(t *testing.T, defaultBins, maxSamples int) *Dispatcher {
	t.Helper()
	log := logger.NewZerolog(io.Discard, zerolog.Disabled)
	return NewDispatcher(log, defaultBins, maxSamples)
}

func TestDispatch_ComputeHistogram(t *testing.T) {
	d := newDispatcher(t, 0, 0)

	resp, ok := d.Dispatch(Request{
		Type:    TypeComputeHistogram,
		Data:    []float64{1, 2, 3, 4},
		Options: &Options{Bins: 4},
	})
	if !ok {
		t.Fatal("Dispatch: expected a reply")
	}
	if resp.Type != TypeHistogramResult {
		t.Errorf("reply type: got %q, want %q", resp.Type, TypeHistogramResult)
	}

	result, ok := resp.Payload.(histogram.Result)
	if !ok {
		t.Fatalf("payload: got %T, want histogram.Result", resp.Payload)
	}
	if result.Min != 1 || result.Max != 4 {
		t.Errorf("range: got [%v, %v], want [1, 4]", result.Min, result.Max)
	}
	if want := []uint64{1, 1, 1, 1}; !reflect.DeepEqual(result.Buckets, want) {
		t.Errorf("buckets: got %v, want %v", result.Buckets, want)
	}
}

func TestDispatch_DefaultBins(t *testing.T) {
	d := newDispatcher(t, 0, 0)

	resp, ok := d.Dispatch(Request{Type: TypeComputeHistogram, Data: []float64{0, 255}})
	if !ok {
		t.Fatal("Dispatch: expected a reply")
	}
	result := resp.Payload.(histogram.Result)
	if len(result.Buckets) != histogram.DefaultBins {
		t.Errorf("bucket count: got %d, want %d", len(result.Buckets), histogram.DefaultBins)
	}
}

func TestDispatch_ConfiguredDefaultBins(t *testing.T) {
	d := newDispatcher(t, 32, 0)

	resp, _ := d.Dispatch(Request{Type: TypeComputeHistogram, Data: []float64{0, 255}})
	result := resp.Payload.(histogram.Result)
	if len(result.Buckets) != 32 {
		t.Errorf("bucket count: got %d, want 32", len(result.Buckets))
	}

	d.SetDefaultBins(8)
	resp, _ = d.Dispatch(Request{Type: TypeComputeHistogram, Data: []float64{0, 255}})
	result = resp.Payload.(histogram.Result)
	if len(result.Buckets) != 8 {
		t.Errorf("bucket count after reload: got %d, want 8", len(result.Buckets))
	}
}

func TestDispatch_ApplyFilterStub(t *testing.T) {
	d := newDispatcher(t, 0, 0)

	resp, ok := d.Dispatch(Request{Type: TypeApplyFilter, Data: []float64{1, 2, 3}})
	if !ok {
		t.Fatal("Dispatch: expected a reply")
	}
	if resp.Type != TypeFilterComplete {
		t.Errorf("reply type: got %q, want %q", resp.Type, TypeFilterComplete)
	}
	if resp.Payload != nil {
		t.Errorf("payload: got %v, want nil", resp.Payload)
	}
}

func TestDispatch_UnknownTypeIsSilent(t *testing.T) {
	d := newDispatcher(t, 0, 0)

	if _, ok := d.Dispatch(Request{Type: "UNKNOWN", Data: []float64{1}}); ok {
		t.Error("Dispatch: unrecognized type must produce no reply")
	}
}

func TestDispatch_EmptyBufferIsSilent(t *testing.T) {
	d := newDispatcher(t, 0, 0)

	if _, ok := d.Dispatch(Request{Type: TypeComputeHistogram}); ok {
		t.Error("Dispatch: empty buffer must produce no reply")
	}
}

func TestDispatch_SampleLimit(t *testing.T) {
	d := newDispatcher(t, 0, 3)

	if _, ok := d.Dispatch(Request{Type: TypeComputeHistogram, Data: []float64{1, 2, 3, 4}}); ok {
		t.Error("Dispatch: over-limit buffer must produce no reply")
	}
	if _, ok := d.Dispatch(Request{Type: TypeComputeHistogram, Data: []float64{1, 2, 3}}); !ok {
		t.Error("Dispatch: at-limit buffer must be accepted")
	}
}

func TestDispatch_Deterministic(t *testing.T) {
	d := newDispatcher(t, 0, 0)
	req := Request{Type: TypeComputeHistogram, Data: []float64{5, 1, 9, 9, 2.5}, Options: &Options{Bins: 16}}

	first, _ := d.Dispatch(req)
	second, _ := d.Dispatch(req)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("replies differ:\n first: %+v\nsecond: %+v", first, second)
	}
}
