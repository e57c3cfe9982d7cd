// Package uvc abstracts the hardware transport of a multi-sensor video
// device: claiming independent capture units ("subdevices"), pushing modes
// down to them, and receiving raw frames through asynchronous callbacks.
//
// The package ships a Video4Linux2-backed implementation on Linux; on other
// platforms only the interfaces are available, for use with test or
// simulated devices.
package uvc

// FrameFunc receives one raw hardware frame. Invoked asynchronously, zero
// or more times, until StopStreaming takes effect. Frames for a single
// subdevice are delivered sequentially; different subdevices may deliver
// concurrently.
type FrameFunc func(frame []byte)

// Device is one physical multi-sensor device.
type Device interface {
	// ClaimSubdevice opens the capture unit with the given index for
	// exclusive use. Fails if the unit is busy or absent.
	ClaimSubdevice(index int) (Handle, error)

	// SetStreamIntent pushes a device-wide hint describing the aggregate
	// of active logical streams, one bit per stream. Distinct from any
	// single subdevice's mode.
	SetStreamIntent(mask uint8) error

	Close() error
}

// Handle is one claimed subdevice. A handle cannot be reconfigured while
// streaming.
type Handle interface {
	// SetMode pushes resolution, pixel format (as a fourcc code), and
	// frame rate down to the hardware.
	SetMode(width, height int, fourcc uint32, fps int) error

	// StartStreaming begins frame delivery to the callback.
	StartStreaming(cb FrameFunc)

	// StopStreaming halts frame delivery. Idempotent.
	StopStreaming()

	Close() error
}
