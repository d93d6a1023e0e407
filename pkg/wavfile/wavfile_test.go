package wavfile

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/takepatcher/internal/wavtest"
	"github.com/xaionaro-go/takepatcher/pkg/audio"
	"github.com/xaionaro-go/takepatcher/pkg/audio/pcm"
	"github.com/xaionaro-go/takepatcher/pkg/patcherr"
	"github.com/xaionaro-go/takepatcher/pkg/riff"
)

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i%200-100) / 100
	}
	return out
}

func TestReadFileMonoS24(t *testing.T) {
	samples := ramp(4800)
	path := wavtest.WriteMonoS24(t, t.TempDir(), "mono.wav", 48000, samples)

	seq, err := ReadFile(path, riff.Options{})
	require.NoError(t, err)
	assert.Equal(t, audio.SampleRate(48000), seq.SampleRate)
	assert.Equal(t, audio.Channel(1), seq.Channels)
	assert.Equal(t, audio.PCMFormatS24LE, seq.PCMFormat)
	assert.Equal(t, 4800, seq.Frames())
	assert.Equal(t, 100*time.Millisecond, seq.Duration())
	require.Len(t, seq.Samples, len(samples))
	for i := range samples {
		require.InDelta(t, samples[i], seq.Samples[i], 1.0/pcm.S24FullScale, "sample #%d", i)
	}
}

func TestReadFileSelectsFirstChannel(t *testing.T) {
	left := ramp(100)
	right := make([]float64, 100)
	for i := range right {
		right[i] = 0.5
	}
	path := wavtest.WritePCM(t, t.TempDir(), "stereo.wav", 44100, 24, [][]float64{left, right})

	seq, err := ReadFile(path, riff.Options{})
	require.NoError(t, err)
	assert.Equal(t, audio.Channel(2), seq.Channels)
	require.Len(t, seq.Samples, 100)
	for i := range left {
		require.InDelta(t, left[i], seq.Samples[i], 1.0/pcm.S24FullScale)
	}
}

func TestDecodeFloat32(t *testing.T) {
	values := []float32{0.25, -0.5, 1.5, 1.23e-5}
	payload := make([]byte, 0, len(values)*4)
	for _, v := range values {
		payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(v))
	}
	b := wavtest.Container(
		wavtest.FmtChunk(wavtest.FormatFloat, 1, 48000, 32),
		wavtest.Chunk{ID: "data", Payload: payload},
	)

	seq, err := Decode(b, riff.Options{})
	require.NoError(t, err)
	assert.Equal(t, audio.PCMFormatFloat32LE, seq.PCMFormat)
	require.Len(t, seq.Samples, len(values))
	for i, v := range values {
		assert.Equal(t, float64(v), seq.Samples[i])
	}
}

func TestProbeErrors(t *testing.T) {
	_, err := Decode([]byte("definitely not a wave file"), riff.Options{})
	assert.True(t, patcherr.IsFormat(err), "%v", err)

	_, err = ReadFile(t.TempDir()+"/missing.wav", riff.Options{})
	assert.True(t, patcherr.IsIO(err), "%v", err)
}
