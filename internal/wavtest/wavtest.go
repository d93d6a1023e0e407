// Package wavtest writes WAVE fixtures for tests.
package wavtest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/takepatcher/pkg/audio/pcm"
)

const (
	FormatPCM   = 1
	FormatFloat = 3
)

// Chunk is a raw chunk to be written verbatim.
type Chunk struct {
	ID      string
	Payload []byte

	// DeclaredLength overrides len(Payload) in the chunk header when non-zero.
	DeclaredLength uint32
}

// FmtChunk builds a canonical 16-byte "fmt " chunk.
func FmtChunk(audioFormat uint16, channels uint16, sampleRate uint32, bitDepth uint16) Chunk {
	p := make([]byte, 16)
	blockAlign := channels * bitDepth / 8
	binary.LittleEndian.PutUint16(p[0:], audioFormat)
	binary.LittleEndian.PutUint16(p[2:], channels)
	binary.LittleEndian.PutUint32(p[4:], sampleRate)
	binary.LittleEndian.PutUint32(p[8:], sampleRate*uint32(blockAlign))
	binary.LittleEndian.PutUint16(p[12:], blockAlign)
	binary.LittleEndian.PutUint16(p[14:], bitDepth)
	return Chunk{ID: "fmt ", Payload: p}
}

// DataS24 builds a "data" chunk of mono 24-bit samples.
func DataS24(samples []float64) Chunk {
	return Chunk{ID: "data", Payload: pcm.AppendS24LE(nil, samples)}
}

// Container serializes the RIFF header followed by the chunks, without
// any padding between them.
func Container(chunks ...Chunk) []byte {
	var body []byte
	body = append(body, "WAVE"...)
	for _, chunk := range chunks {
		length := chunk.DeclaredLength
		if length == 0 {
			length = uint32(len(chunk.Payload))
		}
		body = append(body, chunk.ID...)
		body = binary.LittleEndian.AppendUint32(body, length)
		body = append(body, chunk.Payload...)
	}

	out := make([]byte, 0, 8+len(body))
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))
	return append(out, body...)
}

// WriteContainer writes Container(chunks...) into dir/name and returns the path.
func WriteContainer(t testing.TB, dir, name string, chunks ...Chunk) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, Container(chunks...), 0o644))
	return path
}

// WriteMonoS24 writes a mono 24-bit PCM WAVE file with the go-audio encoder.
func WriteMonoS24(t testing.TB, dir, name string, sampleRate int, samples []float64) string {
	t.Helper()
	return WritePCM(t, dir, name, sampleRate, 24, [][]float64{samples})
}

// WritePCM writes an integer PCM WAVE file; channels[i] holds the
// samples of the i-th channel, all channels must have the same length.
func WritePCM(t testing.TB, dir, name string, sampleRate, bitDepth int, channels [][]float64) string {
	t.Helper()
	require.NotEmpty(t, channels)

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	frames := len(channels[0])
	fullScale := float64(int64(1)<<(bitDepth-1) - 1)
	data := make([]int, 0, frames*len(channels))
	for idx := 0; idx < frames; idx++ {
		for _, ch := range channels {
			require.Len(t, ch, frames)
			v := ch[idx]
			if bitDepth == 24 {
				data = append(data, int(pcm.S24FromFloat(v)))
				continue
			}
			data = append(data, int(v*fullScale))
		}
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, len(channels), FormatPCM)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: len(channels),
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, enc.Close())
	return path
}

// ReadFile is os.ReadFile failing the test on error.
func ReadFile(t testing.TB, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}
