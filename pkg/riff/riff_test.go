package riff

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/takepatcher/internal/wavtest"
	"github.com/xaionaro-go/takepatcher/pkg/patcherr"
)

func TestLocateData(t *testing.T) {
	t.Run("fmt_then_data", func(t *testing.T) {
		b := wavtest.Container(
			wavtest.FmtChunk(wavtest.FormatPCM, 1, 48000, 24),
			wavtest.DataS24(make([]float64, 100)),
		)
		chunk, err := LocateData(bytes.NewReader(b), Options{})
		require.NoError(t, err)
		// 12 header + 8 fmt header + 16 fmt payload + 8 data header
		assert.Equal(t, int64(44), chunk.Offset)
		assert.Equal(t, uint32(300), chunk.Length)
		assert.Equal(t, DataChunkID, chunk.ID)
		assert.Equal(t, int64(344), chunk.End())
	})

	t.Run("extra_chunks_before_data", func(t *testing.T) {
		b := wavtest.Container(
			wavtest.FmtChunk(wavtest.FormatPCM, 1, 48000, 24),
			wavtest.Chunk{ID: "JUNK", Payload: make([]byte, 28)},
			wavtest.Chunk{ID: "bext", Payload: make([]byte, 602)},
			wavtest.DataS24(make([]float64, 10)),
		)
		chunk, err := LocateData(bytes.NewReader(b), Options{})
		require.NoError(t, err)
		assert.Equal(t, int64(12+8+16+8+28+8+602+8), chunk.Offset)
		assert.Equal(t, uint32(30), chunk.Length)
	})

	t.Run("odd_chunk_without_padding", func(t *testing.T) {
		b := wavtest.Container(
			wavtest.Chunk{ID: "odd ", Payload: make([]byte, 3)},
			wavtest.DataS24(make([]float64, 2)),
		)
		chunk, err := LocateData(bytes.NewReader(b), Options{})
		require.NoError(t, err)
		assert.Equal(t, int64(12+8+3+8), chunk.Offset)

		// a padding-aware scan desynchronizes on unpadded files
		_, err = LocateData(bytes.NewReader(b), Options{PadOddChunks: true})
		assert.True(t, patcherr.IsFormat(err), "%v", err)
	})

	t.Run("odd_chunk_with_padding", func(t *testing.T) {
		b := wavtest.Container(
			wavtest.Chunk{ID: "odd ", Payload: make([]byte, 4), DeclaredLength: 3},
			wavtest.DataS24(make([]float64, 2)),
		)
		chunk, err := LocateData(bytes.NewReader(b), Options{PadOddChunks: true})
		require.NoError(t, err)
		assert.Equal(t, int64(12+8+4+8), chunk.Offset)
		assert.Equal(t, uint32(6), chunk.Length)
	})

	t.Run("no_data_chunk", func(t *testing.T) {
		b := wavtest.Container(
			wavtest.FmtChunk(wavtest.FormatPCM, 1, 48000, 24),
			wavtest.Chunk{ID: "LIST", Payload: make([]byte, 10)},
		)
		_, err := LocateData(bytes.NewReader(b), Options{})
		require.Error(t, err)
		assert.True(t, patcherr.IsFormat(err), "%v", err)
	})

	t.Run("truncated_header", func(t *testing.T) {
		_, err := LocateData(bytes.NewReader([]byte("RIFF\x00\x00")), Options{})
		assert.True(t, patcherr.IsFormat(err), "%v", err)
	})

	t.Run("header_is_not_validated", func(t *testing.T) {
		b := wavtest.Container(wavtest.DataS24(make([]float64, 4)))
		copy(b, "XXXX")
		copy(b[8:], "YYYY")
		chunk, err := LocateData(bytes.NewReader(b), Options{})
		require.NoError(t, err)
		assert.Equal(t, int64(20), chunk.Offset)
	})
}

func TestLocateDataFile(t *testing.T) {
	dir := t.TempDir()
	path := wavtest.WriteMonoS24(t, dir, "take.wav", 48000, make([]float64, 50))

	chunk, err := LocateDataFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, uint32(150), chunk.Length)

	payload, err := ReadPayload(bytes.NewReader(wavtest.ReadFile(t, path)), chunk)
	require.NoError(t, err)
	assert.Len(t, payload, 150)

	_, err = LocateDataFile(dir+"/missing.wav", Options{})
	assert.True(t, patcherr.IsIO(err), "%v", err)
}

func TestReadPayloadTruncated(t *testing.T) {
	b := wavtest.Container(wavtest.Chunk{ID: "data", Payload: make([]byte, 6), DeclaredLength: 60})
	chunk, err := LocateData(bytes.NewReader(b), Options{})
	require.NoError(t, err)

	_, err = ReadPayload(bytes.NewReader(b), chunk)
	assert.True(t, patcherr.IsFormat(err), "%v", err)
}

// readerAtOnly hides the Size method of the wrapped reader.
type readerAtOnly struct {
	io.ReaderAt
}

func TestReadPayloadBogusLength(t *testing.T) {
	b := wavtest.Container(wavtest.Chunk{ID: "data", Payload: make([]byte, 6), DeclaredLength: math.MaxUint32})
	chunk, err := LocateData(bytes.NewReader(b), Options{})
	require.NoError(t, err)
	require.Equal(t, uint32(math.MaxUint32), chunk.Length)

	_, err = ReadPayload(bytes.NewReader(b), chunk)
	assert.True(t, patcherr.IsFormat(err), "%v", err)

	_, err = ReadPayload(readerAtOnly{bytes.NewReader(b)}, chunk)
	assert.True(t, patcherr.IsFormat(err), "%v", err)
}

func TestReadPayloadUnknownSize(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6}
	b := wavtest.Container(wavtest.Chunk{ID: "data", Payload: payload})
	chunk, err := LocateData(bytes.NewReader(b), Options{})
	require.NoError(t, err)

	got, err := ReadPayload(readerAtOnly{bytes.NewReader(b)}, chunk)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
