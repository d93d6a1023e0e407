// Package pcm converts between floating-point samples and their on-disk
// integer/float PCM representations.
package pcm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/xaionaro-go/takepatcher/pkg/audio/types"
)

// Decode interprets the first format.Size() bytes of p as a single sample.
func Decode(f types.PCMFormat, p []byte) (float64, error) {
	if uint(len(p)) < f.Size() || f.Size() == 0 {
		return 0, fmt.Errorf("unable to decode %s from %d bytes", f, len(p))
	}
	switch f {
	case types.PCMFormatU8:
		return (float64(p[0]) - 128) / 128, nil
	case types.PCMFormatS16LE:
		return float64(int16(binary.LittleEndian.Uint16(p))) / 32768, nil
	case types.PCMFormatS16BE:
		return float64(int16(binary.BigEndian.Uint16(p))) / 32768, nil
	case types.PCMFormatS24LE:
		return DecodeS24LE(p), nil
	case types.PCMFormatS24BE:
		return DecodeS24LE([]byte{p[2], p[1], p[0]}), nil
	case types.PCMFormatS32LE:
		return float64(int32(binary.LittleEndian.Uint32(p))) / 2147483648, nil
	case types.PCMFormatS32BE:
		return float64(int32(binary.BigEndian.Uint32(p))) / 2147483648, nil
	case types.PCMFormatS64LE:
		return float64(int64(binary.LittleEndian.Uint64(p))) / 9223372036854775808, nil
	case types.PCMFormatS64BE:
		return float64(int64(binary.BigEndian.Uint64(p))) / 9223372036854775808, nil
	case types.PCMFormatFloat32LE:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(p))), nil
	case types.PCMFormatFloat32BE:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(p))), nil
	case types.PCMFormatFloat64LE:
		return math.Float64frombits(binary.LittleEndian.Uint64(p)), nil
	case types.PCMFormatFloat64BE:
		return math.Float64frombits(binary.BigEndian.Uint64(p)), nil
	}
	return 0, fmt.Errorf("unknown format: %v", f)
}

// DecodeAll decodes a packed single-channel payload. A trailing partial
// sample is ignored.
func DecodeAll(f types.PCMFormat, payload []byte) ([]float64, error) {
	size := int(f.Size())
	if size == 0 {
		return nil, fmt.Errorf("unknown format: %v", f)
	}
	out := make([]float64, len(payload)/size)
	for idx := range out {
		v, err := Decode(f, payload[idx*size:])
		if err != nil {
			return nil, fmt.Errorf("unable to decode sample #%d: %w", idx, err)
		}
		out[idx] = v
	}
	return out, nil
}

// Encode writes v into the first format.Size() bytes of p.
//
// S24LE goes through EncodeS24LE, so it truncates toward zero like the
// payload patcher does; the other integer formats round to nearest.
func Encode(f types.PCMFormat, p []byte, v float64) error {
	if uint(len(p)) < f.Size() || f.Size() == 0 {
		return fmt.Errorf("unable to encode %s into %d bytes", f, len(p))
	}
	switch f {
	case types.PCMFormatU8:
		p[0] = byte(math.Round(clamp(v)*127 + 128))
	case types.PCMFormatS16LE:
		binary.LittleEndian.PutUint16(p, uint16(int16(math.Round(clamp(v)*32767))))
	case types.PCMFormatS16BE:
		binary.BigEndian.PutUint16(p, uint16(int16(math.Round(clamp(v)*32767))))
	case types.PCMFormatS24LE:
		EncodeS24LE(p, v)
	case types.PCMFormatS24BE:
		var le [3]byte
		EncodeS24LE(le[:], v)
		p[0], p[1], p[2] = le[2], le[1], le[0]
	case types.PCMFormatS32LE:
		binary.LittleEndian.PutUint32(p, uint32(int32(math.Round(clamp(v)*2147483647))))
	case types.PCMFormatS32BE:
		binary.BigEndian.PutUint32(p, uint32(int32(math.Round(clamp(v)*2147483647))))
	case types.PCMFormatS64LE:
		binary.LittleEndian.PutUint64(p, uint64(s64FromFloat(v)))
	case types.PCMFormatS64BE:
		binary.BigEndian.PutUint64(p, uint64(s64FromFloat(v)))
	case types.PCMFormatFloat32LE:
		binary.LittleEndian.PutUint32(p, math.Float32bits(float32(v)))
	case types.PCMFormatFloat32BE:
		binary.BigEndian.PutUint32(p, math.Float32bits(float32(v)))
	case types.PCMFormatFloat64LE:
		binary.LittleEndian.PutUint64(p, math.Float64bits(v))
	case types.PCMFormatFloat64BE:
		binary.BigEndian.PutUint64(p, math.Float64bits(v))
	default:
		return fmt.Errorf("unknown format: %v", f)
	}
	return nil
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	case math.IsNaN(v):
		return 0
	}
	return v
}

// float64 cannot represent math.MaxInt64, so the full-scale ends are
// special-cased to avoid an out-of-range conversion.
func s64FromFloat(v float64) int64 {
	v = clamp(v)
	switch v {
	case 1:
		return math.MaxInt64
	case -1:
		return -math.MaxInt64
	}
	return int64(v * 9223372036854775807)
}
