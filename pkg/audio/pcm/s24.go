package pcm

const (
	// S24FullScale is the positive full-scale value of a 24-bit sample (2^23-1).
	S24FullScale = 8388607

	// S24Size is the amount of bytes of an encoded 24-bit sample.
	S24Size = 3
)

// S24FromFloat clamps v to [-1, 1] and scales it to the 24-bit range,
// truncating toward zero.
func S24FromFloat(v float64) int32 {
	return int32(clamp(v) * S24FullScale)
}

// EncodeS24LE writes the truncated 24-bit value of v into p[0:3],
// little-endian. The result is bit-exact across runs: 1.0 encodes to
// FF FF 7F and -1.0 to 01 00 80.
func EncodeS24LE(p []byte, v float64) {
	val := S24FromFloat(v)
	p[0] = byte(val)
	p[1] = byte(val >> 8)
	p[2] = byte(val >> 16)
}

// AppendS24LE appends the 24-bit encoding of every sample to dst.
func AppendS24LE(dst []byte, samples []float64) []byte {
	var buf [S24Size]byte
	for _, v := range samples {
		EncodeS24LE(buf[:], v)
		dst = append(dst, buf[:]...)
	}
	return dst
}

// DecodeS24LE interprets p[0:3] as a sign-extended little-endian 24-bit
// value and scales it back by S24FullScale.
func DecodeS24LE(p []byte) float64 {
	val := int32(uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16)
	if val&0x800000 != 0 {
		val |= -16777216
	}
	return float64(val) / S24FullScale
}
