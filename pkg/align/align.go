// Package align shifts a captured stream so that its sync marker lands on
// the sample index of the reference stream's marker.
package align

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/takepatcher/pkg/audio"
	"github.com/xaionaro-go/takepatcher/pkg/marker"
	"github.com/xaionaro-go/takepatcher/pkg/patcherr"
	"github.com/xaionaro-go/takepatcher/pkg/syncer"
	"github.com/xaionaro-go/takepatcher/pkg/wavfile"
)

// DefaultMarkerGain is the factor the marker window of the aligned stream
// is boosted by, to make it visible in a waveform view.
const DefaultMarkerGain = 10000

type Config struct {
	// MarkerGain multiplies the marker window of the aligned stream.
	// 1 leaves the samples untouched.
	MarkerGain float64

	// CrossCheckWindow limits the audit cross-correlation to this much
	// audio right after the marker. Zero means the whole remainder.
	CrossCheckWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		MarkerGain:       DefaultMarkerGain,
		CrossCheckWindow: 2 * time.Second,
	}
}

// SyncerFactory builds a syncer for the given sample rate.
type SyncerFactory func(audio.SampleRate) (syncer.Syncer, error)

type Engine struct {
	Config
	Locator *marker.Locator

	// CrossCheck, if set, is used to audit the alignment. Its result is
	// only reported, it never changes the aligned stream.
	CrossCheck SyncerFactory
}

func NewEngine(cfg Config, locator *marker.Locator) *Engine {
	return &Engine{
		Config:  cfg,
		Locator: locator,
	}
}

// DiffStats is the absolute difference between the reference and the
// aligned stream over the region after the marker window.
type DiffStats struct {
	Mean    float64
	Max     float64
	Samples int
}

func (d *DiffStats) String() string {
	if d == nil {
		return "n/a"
	}
	return fmt.Sprintf("mean=%.6f max=%.6f", d.Mean, d.Max)
}

type Result struct {
	// Aligned has exactly as many samples as the reference.
	Aligned []float64

	// Offset is ReferenceMarker - SubjectMarker: positive values mean
	// silence was prepended to the subject.
	Offset int

	ReferenceMarker int
	SubjectMarker   int

	// Diff is nil if there is nothing after the marker window.
	Diff *DiffStats

	// CrossCheck is nil unless the engine has a CrossCheck syncer.
	CrossCheck *syncer.ShiftResult
}

// Align aligns subject to reference by their sync markers.
func (e *Engine) Align(
	ctx context.Context,
	reference *wavfile.Sequence,
	subject *wavfile.Sequence,
) (*Result, error) {
	if reference.SampleRate != subject.SampleRate {
		return nil, patcherr.Format("sample rates differ: %d vs %d", reference.SampleRate, subject.SampleRate)
	}

	refMarker, ok := e.Locator.Find(reference.Samples)
	if !ok {
		return nil, patcherr.Alignment("sync marker not found in the reference stream")
	}
	subjMarker, ok := e.Locator.Find(subject.Samples)
	if !ok {
		return nil, patcherr.Alignment("sync marker not found in the subject stream")
	}

	offset := refMarker - subjMarker
	logger.Debugf(ctx, "markers: reference@%d subject@%d; offset %d", refMarker, subjMarker, offset)

	result := &Result{
		Aligned:         Shift(subject.Samples, offset, len(reference.Samples)),
		Offset:          offset,
		ReferenceMarker: refMarker,
		SubjectMarker:   subjMarker,
	}

	compareStart := refMarker + marker.Length
	result.Diff = Diff(reference.Samples, result.Aligned, compareStart)

	if e.CrossCheck != nil {
		shift, err := e.crossCheck(ctx, reference, result.Aligned, compareStart)
		if err != nil {
			logger.Warnf(ctx, "unable to cross-check the alignment: %v", err)
		} else {
			result.CrossCheck = shift
		}
	}

	if !BoostMarker(result.Aligned, refMarker, e.MarkerGain) {
		logger.Warnf(ctx, "the marker window at %d is out of bounds of %d samples, not boosting it", refMarker, len(result.Aligned))
	}

	return result, nil
}

func (e *Engine) crossCheck(
	ctx context.Context,
	reference *wavfile.Sequence,
	aligned []float64,
	start int,
) (*syncer.ShiftResult, error) {
	end := len(reference.Samples)
	if e.CrossCheckWindow > 0 {
		window := int(e.CrossCheckWindow.Seconds() * float64(reference.SampleRate))
		if start+window < end {
			end = start + window
		}
	}
	if start >= end {
		return nil, fmt.Errorf("no audio after the marker")
	}

	s, err := e.CrossCheck(reference.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the syncer: %w", err)
	}
	results, err := s.CalculateShiftBetween(ctx, reference.Samples[start:end], aligned[start:end])
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("expected exactly one result, got %d", len(results))
	}
	logger.Debugf(ctx, "cross-check over %d samples: shift %.2f, confidence %.3f", end-start, results[0].Shift, results[0].Confidence)
	return &results[0], nil
}

// Shift moves samples right by offset (prepending zeros) or left by
// -offset (dropping samples), then zero-pads or truncates the result to
// exactly length samples. The input is not modified.
func Shift(samples []float64, offset int, length int) []float64 {
	out := make([]float64, length)
	if offset >= 0 {
		if offset < length {
			copy(out[offset:], samples)
		}
		return out
	}
	if -offset < len(samples) {
		copy(out, samples[-offset:])
	}
	return out
}

// Diff computes the absolute difference statistics of a and b over
// [start, min(len(a), len(b))). It returns nil for an empty region.
func Diff(a, b []float64, start int) *DiffStats {
	end := min(len(a), len(b))
	if start < 0 {
		start = 0
	}
	if start >= end {
		return nil
	}
	var sum, maxDiff float64
	for i := start; i < end; i++ {
		d := math.Abs(a[i] - b[i])
		sum += d
		if d > maxDiff {
			maxDiff = d
		}
	}
	return &DiffStats{
		Mean:    sum / float64(end-start),
		Max:     maxDiff,
		Samples: end - start,
	}
}

// BoostMarker multiplies the marker window starting at idx by gain. It
// returns false (and changes nothing) if the window does not fit.
func BoostMarker(samples []float64, idx int, gain float64) bool {
	if idx < 0 || idx+marker.Length > len(samples) {
		return false
	}
	for i := idx; i < idx+marker.Length; i++ {
		samples[i] *= gain
	}
	return true
}
