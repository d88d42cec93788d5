// Package testdata provides synthetic frame fixtures for tests. Real frames
// are produced by the detection backend; tests only need byte payloads that
// look like JPEG data and differ between sequence positions.
package testdata

// FrameJPEG returns a synthetic JPEG-marked payload for the given sequence
// position. Payloads with different positions compare unequal.
func FrameJPEG(seq int) []byte {
	return []byte{
		0xFF, 0xD8, // SOI
		byte(seq >> 8), byte(seq),
		'f', 'r', 'a', 'm', 'e',
		0xFF, 0xD9, // EOI
	}
}

// FrameSequence returns n consecutive synthetic frames starting at position 0.
func FrameSequence(n int) [][]byte {
	frames := make([][]byte, n)
	for i := range frames {
		frames[i] = FrameJPEG(i)
	}
	return frames
}
