package gccphat

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noise(seed int64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

func TestCalculateShiftBetween(t *testing.T) {
	s, err := NewSyncer(48000)
	require.NoError(t, err)

	base := noise(1, 6000)
	reference := base[1000:5000]

	type testCase struct {
		name       string
		comparison []float64
		wantShift  float64
	}
	for _, tc := range []testCase{
		{name: "aligned", comparison: base[1000:5000], wantShift: 0},
		{name: "early by 25", comparison: base[1025:5025], wantShift: 25},
		{name: "late by 40", comparison: base[960:4960], wantShift: -40},
	} {
		t.Run(tc.name, func(t *testing.T) {
			results, err := s.CalculateShiftBetween(context.Background(), reference, tc.comparison)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.InDelta(t, tc.wantShift, results[0].Shift, 0.5)
			assert.Greater(t, results[0].Confidence, 0.4)
		})
	}
}

func TestCalculateShiftBetweenGainInsensitive(t *testing.T) {
	s, err := NewSyncer(48000)
	require.NoError(t, err)

	reference := noise(2, 4096)
	quiet := make([]float64, len(reference))
	for i, v := range reference {
		quiet[i] = v * 1e-3
	}

	results, err := s.CalculateShiftBetween(context.Background(), reference, quiet, reference)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.InDelta(t, 0, r.Shift, 0.5)
	}
}

func TestCalculateShiftBetweenErrors(t *testing.T) {
	s, err := NewSyncer(48000)
	require.NoError(t, err)

	_, err = s.CalculateShiftBetween(context.Background(), nil, []float64{1})
	assert.Error(t, err)

	_, err = s.CalculateShiftBetween(context.Background(), []float64{1}, []float64{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.CalculateShiftBetween(ctx, []float64{1}, []float64{1})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewSyncer(0)
	assert.Error(t, err)
}
