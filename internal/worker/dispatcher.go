package worker

import (
	"fmt"
	"sync"

	"pixelprobe/internal/histogram"
	"pixelprobe/internal/logger"
)

// Inbound message discriminators.
const (
	TypeComputeHistogram = "COMPUTE_HISTOGRAM"
	TypeApplyFilter      = "APPLY_FILTER"
)

// Outbound message discriminators.
const (
	TypeHistogramResult = "HISTOGRAM_RESULT"
	TypeFilterComplete  = "FILTER_COMPLETE"
)

// Request is one inbound work message. Data carries the sample buffer for
// histogram requests; Options is optional.
type Request struct {
	Type    string    `json:"type"`
	Data    []float64 `json:"data,omitempty"`
	Options *Options  `json:"options,omitempty"`
}

// Options carries per-request tuning. Bins selects the bucket count; zero or
// absent falls back to the dispatcher's configured default.
type Options struct {
	Bins int `json:"bins,omitempty"`
}

// Response is the single reply produced for a recognized request. Payload is
// a histogram.Result for HISTOGRAM_RESULT and nil (JSON null) for
// FILTER_COMPLETE.
type Response struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Dispatcher routes inbound messages to the histogram engine. It is an
// explicitly constructed object with no lifecycle of its own; a single
// instance is safe for concurrent use since each request carries its own
// buffer and produces its own result.
type Dispatcher struct {
	logger logger.Logger

	mu          sync.RWMutex
	defaultBins int
	maxSamples  int
}

// NewDispatcher creates a dispatcher. defaultBins is used when a histogram
// request carries no bin option; non-positive values select
// histogram.DefaultBins. maxSamples caps the accepted buffer length, zero
// meaning unlimited.
func NewDispatcher(log logger.Logger, defaultBins, maxSamples int) *Dispatcher {
	if defaultBins <= 0 {
		defaultBins = histogram.DefaultBins
	}
	return &Dispatcher{
		logger:      log,
		defaultBins: defaultBins,
		maxSamples:  maxSamples,
	}
}

// SetDefaultBins updates the fallback bucket count. Used on config reload.
func (d *Dispatcher) SetDefaultBins(bins int) {
	if bins <= 0 {
		bins = histogram.DefaultBins
	}
	d.mu.Lock()
	d.defaultBins = bins
	d.mu.Unlock()
}

// Dispatch handles one request and reports whether a reply should be sent.
// Unrecognized discriminators and rejected inputs produce no reply; the
// boundary has no error messages.
func (d *Dispatcher) Dispatch(req Request) (Response, bool) {
	switch req.Type {
	case TypeComputeHistogram:
		return d.computeHistogram(req)

	case TypeApplyFilter:
		// Placeholder acknowledgment; no transformation is performed.
		return Response{Type: TypeFilterComplete, Payload: nil}, true

	default:
		d.logger.Debug("Dispatcher", "ignoring unrecognized message type", map[string]interface{}{
			"type": req.Type,
		})
		return Response{}, false
	}
}

func (d *Dispatcher) computeHistogram(req Request) (Response, bool) {
	d.mu.RLock()
	bins := d.defaultBins
	maxSamples := d.maxSamples
	d.mu.RUnlock()

	if req.Options != nil && req.Options.Bins > 0 {
		bins = req.Options.Bins
	}

	if maxSamples > 0 && len(req.Data) > maxSamples {
		d.logger.Warning("Dispatcher", "sample buffer exceeds configured limit", map[string]interface{}{
			"samples":     len(req.Data),
			"max_samples": maxSamples,
		})
		return Response{}, false
	}

	result, err := histogram.Compute(req.Data, bins)
	if err != nil {
		d.logger.Error("Dispatcher", fmt.Errorf("histogram computation rejected: %w", err), map[string]interface{}{
			"samples": len(req.Data),
			"bins":    bins,
		})
		return Response{}, false
	}

	d.logger.Debug("Dispatcher", "histogram computed", map[string]interface{}{
		"samples": len(req.Data),
		"bins":    bins,
		"min":     result.Min,
		"max":     result.Max,
	})

	return Response{Type: TypeHistogramResult, Payload: result}, true
}
