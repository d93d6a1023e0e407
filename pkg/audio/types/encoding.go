package types

import (
	"fmt"
	"time"
)

type SampleRate uint32

type Channel uint32

type Encoding interface {
	fmt.Stringer
	BytesPerSample() uint
}

type EncodingPCM struct {
	PCMFormat  PCMFormat
	SampleRate SampleRate
}

var _ Encoding = EncodingPCM{}

func (e EncodingPCM) String() string {
	return fmt.Sprintf("pcm:%s:%d", e.PCMFormat, e.SampleRate)
}

func (e EncodingPCM) BytesPerSample() uint {
	return e.PCMFormat.Size()
}

// Duration returns the playback duration of the given amount of frames.
func (r SampleRate) Duration(frames int) time.Duration {
	if r == 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(r)
}
