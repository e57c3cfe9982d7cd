//////////////////////////////////////////////////////////////////////////////
//
// Static device-model catalog: subdevice modes and mode selection
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package camkit

import (
	"github.com/pkg/errors"
)

// UnpackFunc demultiplexes one raw hardware frame into the back buffers of
// every logical stream the mode carries. dest holds one destination slice
// per entry in the mode's stream list, in declaration order.
type UnpackFunc func(dest [][]byte, mode *SubdeviceMode, frame []byte)

// FrameNumberFunc decodes the hardware frame counter embedded in a raw
// frame. Optional per mode.
type FrameNumberFunc func(mode *SubdeviceMode, frame []byte) int

// StreamMode describes one logical stream as produced by a subdevice mode.
type StreamMode struct {
	Stream          Stream
	Width           int
	Height          int
	Format          Format
	FPS             int
	IntrinsicsIndex int
}

// SubdeviceMode is one fixed hardware configuration a subdevice can be set
// to: the geometry pushed to the transport plus the list of logical streams
// the resulting frames multiplex. Catalog data is read-only; the session
// never mutates it.
type SubdeviceMode struct {
	Subdevice int
	Width     int
	Height    int
	Format    Format
	FPS       int
	Streams   []StreamMode

	Unpack      UnpackFunc
	FrameNumber FrameNumberFunc // nil if the mode carries no counter
}

// provides reports whether the mode produces the given logical stream.
func (m *SubdeviceMode) provides(s Stream) bool {
	for _, sm := range m.Streams {
		if sm.Stream == s {
			return true
		}
	}
	return false
}

// StreamConstraint declares a set of streams of which at most one may be
// enabled in the same session. Device models whose subdevices share
// internal bandwidth or optics declare these.
type StreamConstraint struct {
	Exclusive []Stream
}

// StaticInfo is the device-model catalog: which subdevice serves each
// stream, the modes each subdevice supports, per-stream presets, and
// inter-stream constraints.
type StaticInfo struct {
	Name string

	// StreamSubdevices maps each logical stream to the subdevice index
	// serving it, or -1 if this model does not produce the stream.
	StreamSubdevices [streamCount]int

	SubdeviceModes []SubdeviceMode

	// Presets[stream][preset].Enabled marks the preset as available.
	Presets [streamCount][presetCount]StreamRequest

	Constraints []StreamConstraint
}

// MaxSubdevice returns the highest subdevice index any mode refers to.
func (info *StaticInfo) MaxSubdevice() int {
	max := 0
	for i := range info.SubdeviceModes {
		if sd := info.SubdeviceModes[i].Subdevice; sd > max {
			max = sd
		}
	}
	return max
}

// ValidateRequests checks the enabled requests against the catalog's
// inter-stream constraints.
func (info *StaticInfo) ValidateRequests(requests *[streamCount]StreamRequest) error {
	for _, c := range info.Constraints {
		var enabled []Stream
		for _, s := range c.Exclusive {
			if requests[s].Enabled {
				enabled = append(enabled, s)
			}
		}
		if len(enabled) > 1 {
			return errors.Wrapf(ErrIncompatibleStreams,
				"%v and %v cannot be enabled together", enabled[0], enabled[1])
		}
	}
	return nil
}

// SelectMode picks the mode for the given subdevice that satisfies every
// outstanding enabled request assigned to it. Among covering modes the
// smallest wins: fewest multiplexed streams, then smallest frame area.
// Returns nil if no stream assigned to the subdevice is requested, or if
// no mode covers the requests.
func (info *StaticInfo) SelectMode(requests *[streamCount]StreamRequest, subdevice int) *SubdeviceMode {
	var wanted []Stream
	for s := Stream(0); s < streamCount; s++ {
		if requests[s].Enabled && info.StreamSubdevices[s] == subdevice {
			wanted = append(wanted, s)
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	var best *SubdeviceMode
	for i := range info.SubdeviceModes {
		mode := &info.SubdeviceModes[i]
		if mode.Subdevice != subdevice || !info.covers(mode, requests, wanted) {
			continue
		}
		if best == nil || smaller(mode, best) {
			best = mode
		}
	}
	return best
}

func (info *StaticInfo) covers(mode *SubdeviceMode, requests *[streamCount]StreamRequest, wanted []Stream) bool {
	for _, s := range wanted {
		found := false
		for _, sm := range mode.Streams {
			if sm.Stream == s && requests[s].satisfiedBy(sm) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func smaller(a, b *SubdeviceMode) bool {
	if len(a.Streams) != len(b.Streams) {
		return len(a.Streams) < len(b.Streams)
	}
	return a.Width*a.Height < b.Width*b.Height
}
