// Package patch rewrites the audio payload of a reference WAVE file with
// an aligned take, leaving every other byte of the file as it was.
package patch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/takepatcher/pkg/audio"
	"github.com/xaionaro-go/takepatcher/pkg/patcherr"
	"github.com/xaionaro-go/takepatcher/pkg/riff"
	"github.com/xaionaro-go/takepatcher/pkg/wavfile"
)

// Request describes a single payload rewrite.
type Request struct {
	Path string

	// Data is the located "data" chunk of the file at Path.
	Data riff.Chunk

	// ReferenceMarker is the sample index of the marker in the reference.
	ReferenceMarker int

	// Aligned is the take already aligned to the reference.
	Aligned []float64

	// Format is the sample format of the payload; undefined means S24LE.
	Format audio.PCMFormat
}

type Patcher struct{}

func NewPatcher() *Patcher {
	return &Patcher{}
}

// CheckReference verifies the payload layout the patcher relies on:
// a single channel of 24-bit integer samples.
func CheckReference(info wavfile.Info) error {
	if info.PCMFormat != audio.PCMFormatS24LE {
		return patcherr.Format("only 24-bit integer PCM references can be patched, got %s", info.PCMFormat)
	}
	if info.Channels != 1 {
		return patcherr.Format("only mono references can be patched, got %d channels", info.Channels)
	}
	return nil
}

// Patch replaces the payload of the "data" chunk of req.Path.
//
// The new file is staged next to the original and renamed over it, so a
// failure leaves the original intact. The file keeps its size and mode.
func (p *Patcher) Patch(ctx context.Context, req Request) (_err error) {
	logger.Debugf(ctx, "Patch(%s, %s, marker@%d)", req.Path, req.Data, req.ReferenceMarker)
	defer func() { logger.Debugf(ctx, "/Patch(%s): %v", req.Path, _err) }()

	src, err := os.Open(req.Path)
	if err != nil {
		return patcherr.IO("unable to open '%s': %w", req.Path, err)
	}
	defer src.Close()

	stat, err := src.Stat()
	if err != nil {
		return patcherr.IO("unable to stat '%s': %w", req.Path, err)
	}
	if req.Data.End() > stat.Size() {
		return patcherr.Format("chunk %s exceeds the file size %d", req.Data, stat.Size())
	}

	original, err := riff.ReadPayload(src, req.Data)
	if err != nil {
		return err
	}

	format := req.Format
	if format == audio.PCMFormatUndefined {
		format = audio.PCMFormatS24LE
	}
	payload, err := BuildPayload(original, format, req.ReferenceMarker, req.Aligned)
	if err != nil {
		return err
	}

	if err := replaceFile(req.Path, src, stat, req.Data, payload); err != nil {
		return err
	}
	logger.Debugf(ctx, "rewrote %d payload bytes of '%s' (%d kept before the marker)", len(payload), req.Path, req.ReferenceMarker*int(format.Size()))
	return nil
}

// replaceFile writes src with the chunk payload replaced into a temporary
// file in the same directory and renames it over path.
func replaceFile(
	path string,
	src io.ReaderAt,
	stat os.FileInfo,
	chunk riff.Chunk,
	payload []byte,
) (_err error) {
	if int64(len(payload)) != int64(chunk.Length) {
		return fmt.Errorf("internal error: payload length %d does not match the chunk length %d", len(payload), chunk.Length)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return patcherr.IO("unable to create a temporary file next to '%s': %w", path, err)
	}
	defer func() {
		if _err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	var written int64
	n, err := io.Copy(tmp, io.NewSectionReader(src, 0, chunk.Offset))
	written += n
	if err != nil {
		return patcherr.IO("unable to copy the bytes before the payload: %w", err)
	}
	m, err := tmp.Write(payload)
	written += int64(m)
	if err != nil {
		return patcherr.IO("unable to write the payload: %w", err)
	}
	n, err = io.Copy(tmp, io.NewSectionReader(src, chunk.End(), stat.Size()-chunk.End()))
	written += n
	if err != nil {
		return patcherr.IO("unable to copy the bytes after the payload: %w", err)
	}
	if written != stat.Size() {
		return patcherr.IO("size mismatch: source %d bytes, staged %d bytes", stat.Size(), written)
	}

	if err := tmp.Chmod(stat.Mode().Perm()); err != nil {
		return patcherr.IO("unable to set the mode of '%s': %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		return patcherr.IO("unable to sync '%s': %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return patcherr.IO("unable to close '%s': %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return patcherr.IO("unable to replace '%s': %w", path, err)
	}
	return nil
}
