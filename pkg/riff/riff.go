// Package riff locates chunks inside RIFF-style containers (WAVE files)
// without interpreting them.
//
// The 12-byte container header is skipped unvalidated and the chunks are
// walked linearly by their declared lengths.
package riff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xaionaro-go/takepatcher/pkg/patcherr"
)

const (
	HeaderSize      = 12
	ChunkHeaderSize = 8
)

var DataChunkID = [4]byte{'d', 'a', 't', 'a'}

// Chunk is the byte range of a chunk payload within a container.
type Chunk struct {
	ID [4]byte

	// Offset is the absolute position of the first payload byte (right
	// after the 8-byte chunk header).
	Offset int64

	// Length is the declared payload length.
	Length uint32
}

func (c Chunk) End() int64 {
	return c.Offset + int64(c.Length)
}

func (c Chunk) String() string {
	return fmt.Sprintf("%q@%d+%d", c.ID[:], c.Offset, c.Length)
}

type Options struct {
	// PadOddChunks makes the scanner skip the word-alignment byte after
	// odd-length payloads, as canonical RIFF requires. It is off by
	// default: the files this tool patches are scanned without padding.
	PadOddChunks bool
}

// LocateData finds the "data" chunk.
func LocateData(r io.ReadSeeker, opts Options) (Chunk, error) {
	return Locate(r, DataChunkID, opts)
}

// LocateDataFile opens the file at path and finds its "data" chunk.
func LocateDataFile(path string, opts Options) (Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return Chunk{}, patcherr.IO("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	chunk, err := LocateData(f, opts)
	if err != nil {
		return Chunk{}, fmt.Errorf("unable to locate the data chunk of '%s': %w", path, err)
	}
	return chunk, nil
}

// Locate rewinds r and returns the first chunk with the given id.
func Locate(r io.ReadSeeker, id [4]byte, opts Options) (Chunk, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Chunk{}, patcherr.IO("unable to rewind: %w", err)
	}

	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if isEOF(err) {
			return Chunk{}, patcherr.Format("the container is shorter than its %d-byte header", HeaderSize)
		}
		return Chunk{}, patcherr.IO("unable to read the container header: %w", err)
	}

	for {
		var chunkHeader [ChunkHeaderSize]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if isEOF(err) {
				return Chunk{}, patcherr.Format("reached the end of the container without finding a %q chunk", id[:])
			}
			return Chunk{}, patcherr.IO("unable to read a chunk header: %w", err)
		}

		var chunkID [4]byte
		copy(chunkID[:], chunkHeader[:4])
		length := binary.LittleEndian.Uint32(chunkHeader[4:])

		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return Chunk{}, patcherr.IO("unable to get the current position: %w", err)
		}

		if chunkID == id {
			return Chunk{
				ID:     chunkID,
				Offset: pos,
				Length: length,
			}, nil
		}

		skip := int64(length)
		if opts.PadOddChunks && length%2 == 1 {
			skip++
		}
		if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
			return Chunk{}, patcherr.IO("unable to skip chunk %q of %d bytes: %w", chunkID[:], length, err)
		}
	}
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// ReadPayload reads the whole payload of the chunk.
//
// The declared length is checked against the size of r before anything
// is allocated, when r reports its size (*bytes.Reader, *os.File and
// alike). Otherwise the payload is read incrementally, so a bogus length
// costs no more memory than the data actually present.
func ReadPayload(r io.ReaderAt, chunk Chunk) ([]byte, error) {
	size, known, err := sizeOf(r)
	if err != nil {
		return nil, patcherr.IO("unable to get the size of the source: %w", err)
	}
	if !known {
		payload, err := io.ReadAll(io.NewSectionReader(r, chunk.Offset, int64(chunk.Length)))
		if err != nil {
			return nil, patcherr.IO("unable to read chunk %s: %w", chunk, err)
		}
		if len(payload) != int(chunk.Length) {
			return nil, patcherr.Format("chunk %s is truncated: got %d bytes", chunk, len(payload))
		}
		return payload, nil
	}

	if chunk.End() > size {
		return nil, patcherr.Format("chunk %s is truncated: the source has %d bytes", chunk, size)
	}
	payload := make([]byte, chunk.Length)
	n, err := r.ReadAt(payload, chunk.Offset)
	if n == len(payload) {
		return payload, nil
	}
	if isEOF(err) {
		return nil, patcherr.Format("chunk %s is truncated: got %d bytes", chunk, n)
	}
	return nil, patcherr.IO("unable to read chunk %s: %w", chunk, err)
}

func sizeOf(r io.ReaderAt) (int64, bool, error) {
	switch r := r.(type) {
	case interface{ Size() int64 }:
		return r.Size(), true, nil
	case interface{ Stat() (os.FileInfo, error) }:
		stat, err := r.Stat()
		if err != nil {
			return 0, false, err
		}
		return stat.Size(), true, nil
	}
	return 0, false, nil
}
