package gccphat

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// whitenFloor drops bins 60 dB below the strongest cross-spectrum bin.
const whitenFloor = 1e-3

// bandBins converts the frequency band to FFT bin indices of a size-n
// transform. Zero bounds mean "unbounded".
func bandBins(n int, sampleRate, minFreq, maxFreq float64) (lo, hi int) {
	lo, hi = 0, n/2
	if minFreq > 0 {
		lo = int(minFreq * float64(n) / sampleRate)
	}
	if maxFreq > 0 && maxFreq < sampleRate/2 {
		hi = int(maxFreq * float64(n) / sampleRate)
	}
	return lo, hi
}

// whiten returns the phase-only cross spectrum comp*conj(ref) limited to
// the band [lo, hi], and the count of bins that took part.
func whiten(ref, comp []complex128, lo, hi int) ([]complex128, int) {
	n := len(ref)
	cross := make([]complex128, n)
	peak := 0.0
	for k := range cross {
		cross[k] = comp[k] * cmplx.Conj(ref[k])
		peak = math.Max(peak, cmplx.Abs(cross[k]))
	}
	floor := peak * whitenFloor

	active := 0
	for k, v := range cross {
		bin := k
		if k > n/2 {
			bin = n - k
		}
		mag := cmplx.Abs(v)
		if bin < lo || bin > hi || mag <= floor || mag <= 1e-12 {
			cross[k] = 0
			continue
		}
		cross[k] = v / complex(mag, 0)
		active++
	}
	return cross, active
}

// argmaxAbs returns the index and the magnitude of the largest |x[i]|.
func argmaxAbs(x []complex128) (int, float64) {
	idx, val := 0, -1.0
	for i, v := range x {
		if m := cmplx.Abs(v); m > val {
			idx, val = i, m
		}
	}
	return idx, val
}

// refinePeak fits a parabola through the peak and its neighbours and
// returns the fractional correction to the peak index.
func refinePeak(x []complex128, idx int) float64 {
	if idx <= 0 || idx >= len(x)-1 {
		return 0
	}
	left, mid, right := cmplx.Abs(x[idx-1]), cmplx.Abs(x[idx]), cmplx.Abs(x[idx+1])
	curvature := left - 2*mid + right
	if math.Abs(curvature) <= 1e-12 {
		return 0
	}
	return (left - right) / (2 * curvature)
}

// CrossCorrelate estimates how many samples the comparison leads the
// reference by, given the spectra of both (same size). The band is
// limited to [minFreq, maxFreq] Hz; zero bounds disable the limit.
//
// A positive shift means the comparison is ahead. The confidence is the
// height of the correlation peak relative to a perfect match, in [0, 1].
func CrossCorrelate(
	ref, comp []complex128,
	sampleRate float64,
	minFreq, maxFreq float64,
) (shift float64, confidence float64, _err error) {
	if sampleRate <= 0 {
		return 0, 0, fmt.Errorf("the sample rate must be positive, got %v", sampleRate)
	}
	if len(ref) != len(comp) {
		return 0, 0, fmt.Errorf("the spectra sizes differ: %d != %d", len(ref), len(comp))
	}
	n := len(ref)

	lo, hi := bandBins(n, sampleRate, minFreq, maxFreq)
	cross, active := whiten(ref, comp, lo, hi)
	if active == 0 {
		return 0, 0, nil
	}

	correlation := fft.IFFT(cross)
	peakIdx, peakVal := argmaxAbs(correlation)

	// the correlation is circular: the upper half holds negative lags
	lag := float64(peakIdx)
	if peakIdx > n/2 {
		lag -= float64(n)
	}
	lag += refinePeak(correlation, peakIdx)

	// a perfect match peaks at active/n
	confidence = math.Min(peakVal*float64(n)/float64(active), 1)
	return -lag, confidence, nil
}
