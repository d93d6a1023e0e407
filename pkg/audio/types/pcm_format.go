package types

import (
	"fmt"
)

type PCMFormat uint

const (
	PCMFormatUndefined = PCMFormat(iota)
	PCMFormatU8
	PCMFormatS16LE
	PCMFormatS16BE
	PCMFormatS24LE
	PCMFormatS24BE
	PCMFormatS32LE
	PCMFormatS32BE
	PCMFormatS64LE
	PCMFormatS64BE
	PCMFormatFloat32LE
	PCMFormatFloat32BE
	PCMFormatFloat64LE
	PCMFormatFloat64BE
	EndOfPCMFormat
)

// Size returns the amount of bytes a single sample of a single channel takes.
func (f PCMFormat) Size() uint {
	switch f {
	case PCMFormatU8:
		return 1
	case PCMFormatS16LE, PCMFormatS16BE:
		return 2
	case PCMFormatS24LE, PCMFormatS24BE:
		return 3
	case PCMFormatS32LE, PCMFormatS32BE, PCMFormatFloat32LE, PCMFormatFloat32BE:
		return 4
	case PCMFormatS64LE, PCMFormatS64BE, PCMFormatFloat64LE, PCMFormatFloat64BE:
		return 8
	}
	return 0
}

func (f PCMFormat) IsFloat() bool {
	switch f {
	case PCMFormatFloat32LE, PCMFormatFloat32BE, PCMFormatFloat64LE, PCMFormatFloat64BE:
		return true
	}
	return false
}

func (f PCMFormat) String() string {
	switch f {
	case PCMFormatUndefined:
		return "undefined"
	case PCMFormatU8:
		return "u8"
	case PCMFormatS16LE:
		return "s16le"
	case PCMFormatS16BE:
		return "s16be"
	case PCMFormatS24LE:
		return "s24le"
	case PCMFormatS24BE:
		return "s24be"
	case PCMFormatS32LE:
		return "s32le"
	case PCMFormatS32BE:
		return "s32be"
	case PCMFormatS64LE:
		return "s64le"
	case PCMFormatS64BE:
		return "s64be"
	case PCMFormatFloat32LE:
		return "f32le"
	case PCMFormatFloat32BE:
		return "f32be"
	case PCMFormatFloat64LE:
		return "f64le"
	case PCMFormatFloat64BE:
		return "f64be"
	}
	return fmt.Sprintf("unknown_format_%d", uint(f))
}

// PCMFormatFromWAV maps a WAVE format tag and a bit depth to a PCMFormat.
// WAVE payloads are always little-endian; 8-bit payloads are unsigned.
func PCMFormatFromWAV(isFloat bool, bitDepth uint) (PCMFormat, error) {
	if isFloat {
		switch bitDepth {
		case 32:
			return PCMFormatFloat32LE, nil
		case 64:
			return PCMFormatFloat64LE, nil
		}
		return PCMFormatUndefined, fmt.Errorf("unsupported float bit depth: %d", bitDepth)
	}
	switch bitDepth {
	case 8:
		return PCMFormatU8, nil
	case 16:
		return PCMFormatS16LE, nil
	case 24:
		return PCMFormatS24LE, nil
	case 32:
		return PCMFormatS32LE, nil
	case 64:
		return PCMFormatS64LE, nil
	}
	return PCMFormatUndefined, fmt.Errorf("unsupported integer bit depth: %d", bitDepth)
}
