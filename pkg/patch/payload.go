package patch

import (
	"github.com/xaionaro-go/takepatcher/pkg/audio"
	"github.com/xaionaro-go/takepatcher/pkg/audio/pcm"
	"github.com/xaionaro-go/takepatcher/pkg/patcherr"
)

// BuildPayload produces the patched payload of a mono stream in the given
// sample format: the first refMarker samples of original are kept
// verbatim, the rest is replaced by aligned[refMarker:]. The result
// always has exactly len(original) bytes: a short patch is completed with
// the original trailing bytes, a long one is truncated.
//
// S24LE samples are truncated toward zero (see pcm.EncodeS24LE).
func BuildPayload(original []byte, format audio.PCMFormat, refMarker int, aligned []float64) ([]byte, error) {
	sampleSize := int(format.Size())
	if sampleSize == 0 {
		return nil, patcherr.Format("unable to patch a payload in format %s", format)
	}
	if refMarker < 0 {
		return nil, patcherr.Format("negative marker index %d", refMarker)
	}
	preambleBytes := refMarker * sampleSize
	if preambleBytes > len(original) {
		return nil, patcherr.Format("the marker at sample %d is beyond the %d-byte payload", refMarker, len(original))
	}

	var patch []float64
	if refMarker < len(aligned) {
		patch = aligned[refMarker:]
	}

	payload := make([]byte, preambleBytes+len(patch)*sampleSize)
	copy(payload, original[:preambleBytes])
	for idx, v := range patch {
		offset := preambleBytes + idx*sampleSize
		if err := pcm.Encode(format, payload[offset:offset+sampleSize], v); err != nil {
			return nil, patcherr.Format("unable to encode sample #%d: %w", refMarker+idx, err)
		}
	}

	switch {
	case len(payload) < len(original):
		payload = append(payload, original[len(payload):]...)
	case len(payload) > len(original):
		payload = payload[:len(original)]
	}
	return payload, nil
}
