package camkit

import "encoding/binary"

// Built-in unpackers for trivially packed modes. Device models with
// interleaved or padded layouts supply their own UnpackFunc in the catalog.

// UnpackCopy copies the raw frame verbatim into the mode's only stream.
// Suitable for modes that multiplex nothing.
func UnpackCopy(dest [][]byte, mode *SubdeviceMode, frame []byte) {
	copy(dest[0], frame)
}

// UnpackPlanes splits a raw frame holding one tightly packed plane per
// stream, in the mode's stream declaration order.
func UnpackPlanes(dest [][]byte, mode *SubdeviceMode, frame []byte) {
	offset := 0
	for i, sm := range mode.Streams {
		size := ImageSize(sm.Width, sm.Height, sm.Format)
		copy(dest[i], frame[offset:offset+size])
		offset += size
	}
}

// TrailingFrameNumber decodes a little-endian frame counter from the last
// four bytes of the raw frame, the spot several imager firmwares use.
func TrailingFrameNumber(mode *SubdeviceMode, frame []byte) int {
	return int(binary.LittleEndian.Uint32(frame[len(frame)-4:]))
}
