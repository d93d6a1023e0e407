// Package syncer defines the lag estimators used to audit alignments.
package syncer

import (
	"context"
)

type ShiftResult struct {
	// Shift is in samples; positive means the comparison is ahead of
	// the reference.
	Shift float64

	// Confidence is in [0, 1].
	Confidence float64
}

// Syncer estimates the lag between single-channel tracks sharing one
// sample rate.
type Syncer interface {
	// CalculateShiftBetween returns one ShiftResult per comparison track,
	// in order.
	CalculateShiftBetween(
		ctx context.Context,
		reference []float64,
		comparisons ...[]float64,
	) ([]ShiftResult, error)
}
