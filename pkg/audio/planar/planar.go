// Package planar picks single channels out of interleaved sample payloads.
package planar

import (
	"github.com/xaionaro-go/takepatcher/pkg/audio"
)

// ExtractChannel returns the plane of the channel ch out of interleaved
// frames. A trailing partial frame is ignored.
func ExtractChannel(channels audio.Channel, sampleSize uint, ch audio.Channel, input []byte) []byte {
	if channels == 0 || ch >= channels {
		return nil
	}
	frameSize := int(channels) * int(sampleSize)
	frames := len(input) / frameSize
	if channels == 1 {
		return input[:frames*frameSize]
	}

	output := make([]byte, frames*int(sampleSize))
	inOffset := int(ch) * int(sampleSize)
	for frame := 0; frame < frames; frame++ {
		copy(
			output[frame*int(sampleSize):(frame+1)*int(sampleSize)],
			input[frame*frameSize+inOffset:],
		)
	}
	return output
}
