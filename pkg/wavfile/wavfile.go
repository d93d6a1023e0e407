// Package wavfile reads WAVE files into single-channel sample sequences.
package wavfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/wav"
	"github.com/xaionaro-go/takepatcher/pkg/audio"
	"github.com/xaionaro-go/takepatcher/pkg/audio/pcm"
	"github.com/xaionaro-go/takepatcher/pkg/audio/planar"
	"github.com/xaionaro-go/takepatcher/pkg/audio/types"
	"github.com/xaionaro-go/takepatcher/pkg/patcherr"
	"github.com/xaionaro-go/takepatcher/pkg/riff"
)

const (
	formatTagPCM        = 0x0001
	formatTagFloat      = 0x0003
	formatTagExtensible = 0xFFFE
)

var fmtChunkID = [4]byte{'f', 'm', 't', ' '}

type ReadSeekerAt interface {
	io.ReadSeeker
	io.ReaderAt
}

// Info describes the layout of a WAVE file.
type Info struct {
	SampleRate audio.SampleRate
	Channels   audio.Channel
	PCMFormat  audio.PCMFormat
	Data       riff.Chunk
}

// Frames is the amount of complete frames in the data chunk.
func (i Info) Frames() int {
	frameSize := int(i.Channels) * int(i.PCMFormat.Size())
	if frameSize == 0 {
		return 0
	}
	return int(i.Data.Length) / frameSize
}

func (i Info) Duration() time.Duration {
	return i.SampleRate.Duration(i.Frames())
}

func (i Info) Encoding() audio.EncodingPCM {
	return audio.EncodingPCM{
		PCMFormat:  i.PCMFormat,
		SampleRate: i.SampleRate,
	}
}

// Sequence is the first channel of a WAVE file as floating-point samples.
type Sequence struct {
	Info
	Samples []float64
}

// Probe reads the format of a WAVE file and locates its data chunk.
func Probe(r io.ReadSeeker, opts riff.Options) (Info, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Info{}, patcherr.IO("unable to rewind: %w", err)
	}
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return Info{}, patcherr.Format("not a valid WAVE file: %w", err)
		}
		return Info{}, patcherr.Format("not a valid WAVE file")
	}

	isFloat, err := isFloatFormat(r, d.WavAudioFormat, opts)
	if err != nil {
		return Info{}, err
	}
	pcmFormat, err := types.PCMFormatFromWAV(isFloat, uint(d.BitDepth))
	if err != nil {
		return Info{}, patcherr.FormatError{Err: err}
	}
	if d.SampleRate == 0 {
		return Info{}, patcherr.Format("the sample rate is zero")
	}

	data, err := riff.LocateData(r, opts)
	if err != nil {
		return Info{}, err
	}

	return Info{
		SampleRate: audio.SampleRate(d.SampleRate),
		Channels:   audio.Channel(d.NumChans),
		PCMFormat:  pcmFormat,
		Data:       data,
	}, nil
}

// isFloatFormat resolves the sample type, looking into the sub-format of
// WAVE_FORMAT_EXTENSIBLE headers, which the decoder does not interpret.
func isFloatFormat(r io.ReadSeeker, formatTag uint16, opts riff.Options) (bool, error) {
	switch formatTag {
	case formatTagPCM:
		return false, nil
	case formatTagFloat:
		return true, nil
	case formatTagExtensible:
	default:
		return false, patcherr.Format("unsupported WAVE format tag 0x%04X", formatTag)
	}

	chunk, err := riff.Locate(r, fmtChunkID, opts)
	if err != nil {
		return false, err
	}
	if chunk.Length < 26 {
		return false, patcherr.Format("the extensible fmt chunk is too short: %d bytes", chunk.Length)
	}
	var subFormat [2]byte
	if _, err := r.Seek(chunk.Offset+24, io.SeekStart); err != nil {
		return false, patcherr.IO("unable to seek to the sub-format: %w", err)
	}
	if _, err := io.ReadFull(r, subFormat[:]); err != nil {
		return false, patcherr.Format("unable to read the sub-format: %w", err)
	}
	switch tag := binary.LittleEndian.Uint16(subFormat[:]); tag {
	case formatTagPCM:
		return false, nil
	case formatTagFloat:
		return true, nil
	default:
		return false, patcherr.Format("unsupported WAVE sub-format 0x%04X", tag)
	}
}

func ProbeFile(path string, opts riff.Options) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, patcherr.IO("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	info, err := Probe(f, opts)
	if err != nil {
		return Info{}, fmt.Errorf("unable to probe '%s': %w", path, err)
	}
	return info, nil
}

// Read decodes the first channel of the WAVE file.
func Read(r ReadSeekerAt, opts riff.Options) (*Sequence, error) {
	info, err := Probe(r, opts)
	if err != nil {
		return nil, err
	}

	payload, err := riff.ReadPayload(r, info.Data)
	if err != nil {
		return nil, err
	}

	sampleSize := info.PCMFormat.Size()
	firstChannel := planar.ExtractChannel(info.Channels, sampleSize, 0, payload)
	samples, err := pcm.DecodeAll(info.PCMFormat, firstChannel)
	if err != nil {
		return nil, patcherr.FormatError{Err: err}
	}

	return &Sequence{
		Info:    info,
		Samples: samples,
	}, nil
}

func ReadFile(path string, opts riff.Options) (*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, patcherr.IO("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	seq, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	return seq, nil
}

// Decode reads a WAVE file held in memory.
func Decode(b []byte, opts riff.Options) (*Sequence, error) {
	return Read(bytes.NewReader(b), opts)
}
