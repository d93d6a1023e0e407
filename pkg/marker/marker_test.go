package marker

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noise(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

func TestFind(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	l := NewLocator(Default, DefaultTolerance)

	for _, k := range []int{0, 1, 17, 500, 1000 - Length} {
		samples := noise(rng, 1000)
		Default.Inject(samples, k)
		idx, ok := l.Find(samples)
		require.True(t, ok, "k=%d", k)
		require.Equal(t, k, idx)
	}
}

func TestFindNotFound(t *testing.T) {
	l := NewLocator(Default, DefaultTolerance)

	idx, ok := l.Find(make([]float64, 1000))
	assert.False(t, ok)
	assert.Equal(t, -1, idx)

	idx, ok = l.Find(Default[:Length-1])
	assert.False(t, ok)
	assert.Equal(t, -1, idx)

	idx, ok = l.Find(nil)
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}

func TestFindReturnsFirstOccurrence(t *testing.T) {
	samples := make([]float64, 200)
	Default.Inject(samples, 120)
	Default.Inject(samples, 40)

	idx, ok := NewLocator(Default, DefaultTolerance).Find(samples)
	require.True(t, ok)
	assert.Equal(t, 40, idx)
}

func TestTolerance(t *testing.T) {
	samples := make([]float64, 64)
	Default.Inject(samples, 10)
	samples[15] += 0.9e-6

	l := NewLocator(Default, DefaultTolerance)
	idx, ok := l.Find(samples)
	require.True(t, ok)
	assert.Equal(t, 10, idx)

	samples[15] += 0.2e-6
	_, ok = l.Find(samples)
	assert.False(t, ok)

	// a looser locator accepts the same sequence
	_, ok = NewLocator(Default, 1e-5).Find(samples)
	assert.True(t, ok)

	// a single window: NaN never matches, whatever the tolerance
	window := make([]float64, Length)
	Default.Inject(window, 0)
	_, ok = NewLocator(Default, 1).Find(window)
	require.True(t, ok)
	window[Length-1] = math.NaN()
	_, ok = NewLocator(Default, 1).Find(window)
	assert.False(t, ok)
}

func TestCustomMarker(t *testing.T) {
	var m Marker
	for i := range m {
		m[i] = float64(i+1) / 100
	}
	samples := make([]float64, 100)
	m.Inject(samples, 33)
	Default.Inject(samples, 5)

	idx, ok := NewLocator(m, DefaultTolerance).Find(samples)
	require.True(t, ok)
	assert.Equal(t, 33, idx)
}
