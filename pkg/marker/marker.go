// Package marker finds the synthetic sync marker that the capture tool
// injects into both the reference and the captured streams.
package marker

import (
	"math"
)

// Length is the amount of samples in a Marker.
const Length = 16

// DefaultTolerance is the absolute per-sample tolerance of a match.
const DefaultTolerance = 1e-6

// Marker is a fixed sequence of sample values without any audio meaning,
// used purely as a fiducial.
type Marker [Length]float64

// Default is the marker injected by the capture tool.
var Default = Marker{
	1.23e-5, -2.34e-5, 3.45e-5, -4.56e-5,
	5.67e-5, -6.78e-5, 7.89e-5, -8.90e-5,
	9.01e-5, -1.23e-5, 1.35e-5, -2.46e-5,
	3.57e-5, -4.68e-5, 5.79e-5, -6.80e-5,
}

// Locator scans sample sequences for a Marker.
type Locator struct {
	Marker    Marker
	Tolerance float64
}

func NewLocator(m Marker, tolerance float64) *Locator {
	return &Locator{
		Marker:    m,
		Tolerance: tolerance,
	}
}

// Find returns the smallest index i such that every samples[i+j] is
// strictly within Tolerance of Marker[j]. It returns (-1, false) if
// there is no such index.
//
// The scan is a plain O(N*Length) comparison: the marker is injected
// verbatim, so no correlation is involved.
func (l *Locator) Find(samples []float64) (int, bool) {
	for i := 0; i+Length <= len(samples); i++ {
		if l.MatchesAt(samples, i) {
			return i, true
		}
	}
	return -1, false
}

// MatchesAt reports whether the marker starts exactly at samples[idx].
func (l *Locator) MatchesAt(samples []float64, idx int) bool {
	if idx < 0 || idx+Length > len(samples) {
		return false
	}
	for j, want := range l.Marker {
		// written as a negated "<" so that NaN samples never match
		if !(math.Abs(samples[idx+j]-want) < l.Tolerance) {
			return false
		}
	}
	return true
}

// Inject copies the marker into samples at idx. It is what the capture
// side does; here it is used to build fixtures.
func (m Marker) Inject(samples []float64, idx int) {
	copy(samples[idx:], m[:])
}
