// Package gccphat estimates the lag between two takes with the
// generalized cross-correlation with phase transform.
//
// The spectra are whitened before the inverse transform, so the peak
// depends on the phase only and is insensitive to gain differences. The
// patcher uses it to audit a marker-based alignment: a correctly aligned
// take yields a lag close to zero.
package gccphat

import (
	"context"
	"fmt"

	"github.com/mjibson/go-dsp/fft"
	"github.com/xaionaro-go/takepatcher/pkg/audio"
	"github.com/xaionaro-go/takepatcher/pkg/syncer"
)

const (
	DefaultMinFreq = 100
	DefaultMaxFreq = 12000
)

type Syncer struct {
	SampleRate audio.SampleRate

	// MinFreq and MaxFreq bound the band taking part in the correlation.
	MinFreq float64
	MaxFreq float64
}

var _ syncer.Syncer = (*Syncer)(nil)

func NewSyncer(
	sampleRate audio.SampleRate,
) (*Syncer, error) {
	if sampleRate == 0 {
		return nil, fmt.Errorf("sample rate is mandatory")
	}
	return &Syncer{
		SampleRate: sampleRate,
		MinFreq:    DefaultMinFreq,
		MaxFreq:    DefaultMaxFreq,
	}, nil
}

// fftSize is the smallest power of two that fits the linear correlation
// of n1 and n2 samples.
func fftSize(n1, n2 int) int {
	n := 1
	for n < n1+n2-1 {
		n <<= 1
	}
	return n
}

func spectrum(samples []float64, size int) []complex128 {
	padded := make([]complex128, size)
	for idx, v := range samples {
		padded[idx] = complex(v, 0)
	}
	return fft.FFT(padded)
}

func (s *Syncer) CalculateShiftBetween(
	ctx context.Context,
	reference []float64,
	comparisons ...[]float64,
) ([]syncer.ShiftResult, error) {
	if len(reference) == 0 {
		return nil, fmt.Errorf("the reference track is empty")
	}

	// the reference spectrum is reused while the comparisons fit into it
	var (
		refSize     int
		refSpectrum []complex128
	)

	results := make([]syncer.ShiftResult, 0, len(comparisons))
	for idx, comparison := range comparisons {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(comparison) == 0 {
			return nil, fmt.Errorf("comparison track #%d is empty", idx)
		}

		size := fftSize(len(reference), len(comparison))
		if size != refSize {
			refSize = size
			refSpectrum = spectrum(reference, size)
		}

		shift, confidence, err := CrossCorrelate(
			refSpectrum,
			spectrum(comparison, size),
			float64(s.SampleRate),
			s.MinFreq, s.MaxFreq,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to correlate comparison track #%d: %w", idx, err)
		}
		results = append(results, syncer.ShiftResult{
			Shift:      shift,
			Confidence: confidence,
		})
	}
	return results, nil
}
