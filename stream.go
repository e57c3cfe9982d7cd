//////////////////////////////////////////////////////////////////////////////
//
// Logical stream identities, pixel formats, and per-stream requests
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package camkit

import "fmt"

// Stream identifies one application-visible video feed produced by the
// camera. The set is closed: a device model's catalog maps each stream to
// the subdevice that serves it, or declares it unsupported.
type Stream int

const (
	StreamDepth Stream = iota
	StreamColor
	StreamInfrared
	StreamInfrared2

	streamCount
)

func (s Stream) String() string {
	switch s {
	case StreamDepth:
		return "depth"
	case StreamColor:
		return "color"
	case StreamInfrared:
		return "infrared"
	case StreamInfrared2:
		return "infrared2"
	}
	return fmt.Sprintf("stream(%d)", int(s))
}

// Format is the pixel layout of a stream's images.
type Format int

const (
	// FormatAny in a request means the catalog may pick any format the
	// serving mode produces.
	FormatAny Format = iota
	FormatZ16
	FormatYUYV
	FormatRGB8
	FormatBGR8
	FormatRGBA8
	FormatY8
	FormatY16
)

func (f Format) String() string {
	switch f {
	case FormatAny:
		return "any"
	case FormatZ16:
		return "z16"
	case FormatYUYV:
		return "yuyv"
	case FormatRGB8:
		return "rgb8"
	case FormatBGR8:
		return "bgr8"
	case FormatRGBA8:
		return "rgba8"
	case FormatY8:
		return "y8"
	case FormatY16:
		return "y16"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// BytesPerPixel for the format. FormatAny has no defined size.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatZ16, FormatYUYV, FormatY16:
		return 2
	case FormatRGB8, FormatBGR8:
		return 3
	case FormatRGBA8:
		return 4
	case FormatY8:
		return 1
	}
	return 0
}

// FourCC returns the V4L2/UVC pixel format code pushed down to the
// hardware transport when a mode using this format is configured.
func (f Format) FourCC() uint32 {
	switch f {
	case FormatZ16:
		return fourcc('Z', '1', '6', ' ')
	case FormatYUYV:
		return fourcc('Y', 'U', 'Y', 'V')
	case FormatRGB8:
		return fourcc('R', 'G', 'B', '3')
	case FormatBGR8:
		return fourcc('B', 'G', 'R', '3')
	case FormatRGBA8:
		return fourcc('A', 'B', '2', '4')
	case FormatY8:
		return fourcc('G', 'R', 'E', 'Y')
	case FormatY16:
		return fourcc('Y', '1', '6', ' ')
	}
	return 0
}

func fourcc(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

// ImageSize returns the byte size of one image of the given geometry.
func ImageSize(width, height int, format Format) int {
	return width * height * format.BytesPerPixel()
}

// Preset names a canned request the catalog may declare per stream.
type Preset int

const (
	PresetBestQuality Preset = iota
	PresetLargestImage
	PresetHighestFramerate

	presetCount
)

// StreamRequest captures what the application asked of one logical stream.
// Requests are only mutable while the session is unconfigured; once any
// subdevice has been opened they are frozen until a full reset.
type StreamRequest struct {
	Enabled bool
	Width   int
	Height  int
	Format  Format
	FPS     int
}

// satisfiedBy reports whether a stream mode delivers what was requested.
// FormatAny in the request matches any format the mode produces.
func (r StreamRequest) satisfiedBy(m StreamMode) bool {
	if !r.Enabled {
		return true
	}
	if r.Format != FormatAny && r.Format != m.Format {
		return false
	}
	return r.Width == m.Width && r.Height == m.Height && r.FPS == m.FPS
}
