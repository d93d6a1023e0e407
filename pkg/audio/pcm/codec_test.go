package pcm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/takepatcher/pkg/audio/types"
)

func TestCodecRoundTrip(t *testing.T) {
	for format := types.PCMFormatU8; format < types.EndOfPCMFormat; format++ {
		t.Run(format.String(), func(t *testing.T) {
			buf := make([]byte, format.Size())
			// one step of an 8-bit sample is the coarsest resolution
			delta := 1.0 / 127
			if format != types.PCMFormatU8 {
				delta = 1.0 / 32767
			}
			for _, v := range []float64{-1, -0.5, -0.25, 0, 0.125, 0.5, 0.75} {
				require.NoError(t, Encode(format, buf, v))
				got, err := Decode(format, buf)
				require.NoError(t, err)
				assert.InDelta(t, v, got, delta, "value %v", v)
			}
		})
	}
}

func TestDecodeAll(t *testing.T) {
	payload := []byte{0xFF, 0xFF, 0x7F, 0x01, 0x00, 0x80, 0x12}
	samples, err := DecodeAll(types.PCMFormatS24LE, payload)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 1.0, samples[0])
	assert.Equal(t, -1.0, samples[1])
}

func TestCodecErrors(t *testing.T) {
	_, err := Decode(types.PCMFormatS24LE, []byte{0x00})
	assert.Error(t, err)
	assert.Error(t, Encode(types.PCMFormatFloat64LE, make([]byte, 4), 0))
	_, err = DecodeAll(types.PCMFormatUndefined, []byte{0x00})
	assert.Error(t, err)
}
