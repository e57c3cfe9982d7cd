//////////////////////////////////////////////////////////////////////////////
//
// Camera session orchestrator: resolves stream requests against the device
// catalog, drives subdevice lifecycles, and synchronizes frame delivery
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package camkit

import (
	"github.com/pkg/errors"

	"github.com/lanikai/camkit/internal/logging"
	"github.com/lanikai/camkit/internal/uvc"
)

var log = logging.DefaultLogger.WithTag("camkit")

// Camera is one session against a physical multi-sensor device. It owns the
// subdevice handles and the stream buffers for every logical stream, and is
// driven from a single application thread; only the frame callbacks run
// concurrently with it, and those touch nothing but the stream buffers.
//
// The session moves through three states: unconfigured (requests mutable),
// configured (subdevices open, requests frozen), capturing (hardware
// streaming). Once any subdevice has been opened, requests stay frozen
// until Reset.
type Camera struct {
	device uvc.Device
	info   *StaticInfo
	source CalibrationSource

	requests   [streamCount]StreamRequest
	subdevices []*subdevice // indexed by subdevice number, nil = not needed
	streams    [streamCount]*streamBuffer

	calib       CalibrationData
	firstOpened bool // set when the first subdevice is claimed, cleared only by Reset
	capturing   bool
}

// New binds a session to one physical device described by the given
// catalog. Calibration is fetched lazily from source, once, when the first
// subdevice is opened.
func New(device uvc.Device, info *StaticInfo, source CalibrationSource) *Camera {
	return &Camera{
		device:     device,
		info:       info,
		source:     source,
		subdevices: make([]*subdevice, info.MaxSubdevice()+1),
	}
}

// EnableStream requests the given stream at an explicit geometry. Valid
// only before any subdevice has been opened.
func (c *Camera) EnableStream(stream Stream, width, height int, format Format, fps int) error {
	if c.firstOpened {
		return ErrReconfiguration
	}
	if c.info.StreamSubdevices[stream] == -1 {
		return errors.Wrapf(ErrStreamUnsupported, "%v", stream)
	}
	c.requests[stream] = StreamRequest{true, width, height, format, fps}
	return nil
}

// EnableStreamPreset requests the given stream using a catalog-declared
// preset.
func (c *Camera) EnableStreamPreset(stream Stream, preset Preset) error {
	if c.firstOpened {
		return ErrReconfiguration
	}
	req := c.info.Presets[stream][preset]
	if !req.Enabled {
		return errors.Wrapf(ErrStreamUnsupported, "%v has no such preset", stream)
	}
	c.requests[stream] = req
	return nil
}

// DisableStream withdraws a request. Subject to the same gating as
// EnableStream.
func (c *Camera) DisableStream(stream Stream) error {
	if c.firstOpened {
		return ErrReconfiguration
	}
	c.requests[stream] = StreamRequest{}
	return nil
}

// IsStreamEnabled reports whether the stream is currently requested.
func (c *Camera) IsStreamEnabled(stream Stream) bool {
	return c.requests[stream].Enabled
}

// ConfigureEnabledStreams resolves the outstanding requests into subdevice
// modes, opens the subdevices they need, and binds stream buffers. On the
// first call it also fetches calibration.
//
// Configuration is all-or-nothing: if any subdevice fails to open or accept
// its mode, every subdevice opened during the call is closed again and the
// error returned. The session then requires Reset before reconfiguring.
func (c *Camera) ConfigureEnabledStreams() error {
	for i, sd := range c.subdevices {
		if sd != nil {
			sd.close()
			c.subdevices[i] = nil
		}
	}
	for s := range c.streams {
		c.streams[s] = nil
	}

	if !c.firstOpened {
		if err := c.info.ValidateRequests(&c.requests); err != nil {
			return err
		}

		for i := range c.subdevices {
			mode := c.info.SelectMode(&c.requests, i)
			if mode == nil {
				continue
			}

			sd, err := openSubdevice(c.device, i)
			if err != nil {
				c.closeSubdevices()
				return err
			}
			c.firstOpened = true
			c.subdevices[i] = sd
			log.Debug("subdevice %d: %dx%d %v @%d fps, %d stream(s)",
				i, mode.Width, mode.Height, mode.Format, mode.FPS, len(mode.Streams))

			// One buffer per stream the mode produces. Streams the
			// application asked for become visible through the session;
			// bundled ones stay internal but still receive frames.
			buffers := make([]*streamBuffer, len(mode.Streams))
			for j, sm := range mode.Streams {
				buffers[j] = newStreamBuffer()
				if c.requests[sm.Stream].Enabled {
					c.streams[sm.Stream] = buffers[j]
				}
			}

			if err := sd.configure(mode, buffers); err != nil {
				c.closeSubdevices()
				return err
			}
		}
	}

	if len(c.calib.Intrinsics) == 0 && c.firstOpened {
		calib, err := c.source.RetrieveCalibration()
		if err != nil {
			return errors.Wrap(err, "retrieve calibration")
		}
		c.calib = calib
	}
	return nil
}

// StartCapture configures outstanding requests if not yet configured,
// pushes the aggregate stream intent to the device, and starts streaming on
// every open subdevice.
func (c *Camera) StartCapture() error {
	if !c.firstOpened {
		if err := c.ConfigureEnabledStreams(); err != nil {
			return err
		}
	}

	if err := c.device.SetStreamIntent(c.streamIntent()); err != nil {
		return errors.Wrap(err, "set stream intent")
	}
	for _, sd := range c.subdevices {
		if sd != nil {
			sd.startStreaming()
		}
	}
	c.capturing = true
	return nil
}

// StopCapture halts streaming on every open subdevice. Handles stay open; a
// later StartCapture resumes without re-resolving modes.
func (c *Camera) StopCapture() {
	for _, sd := range c.subdevices {
		if sd != nil {
			sd.stopStreaming()
		}
	}
	c.capturing = false
}

// WaitAllStreams blocks until the fastest bound stream delivers its next
// frame, and takes whatever frame each slower stream last committed. The
// resulting set is best-effort coherent: slower streams may repeat or lag,
// but never delay the caller beyond the fastest stream's frame interval.
// No-op unless capturing.
func (c *Camera) WaitAllStreams() {
	if !c.capturing {
		return
	}

	maxFPS := 0
	for _, b := range c.streams {
		if b != nil && b.mode.FPS > maxFPS {
			maxFPS = b.mode.FPS
		}
	}

	for _, b := range c.streams {
		if b == nil {
			continue
		}
		if b.mode.FPS == maxFPS {
			b.waitFrame()
		} else {
			b.consumerPoll()
		}
	}
}

// FrameData returns the stream's current front image. Valid until the next
// WaitAllStreams call; the producer never touches it in between.
func (c *Camera) FrameData(stream Stream) ([]byte, error) {
	b := c.streams[stream]
	if b == nil {
		return nil, errors.Wrapf(ErrStreamNotEnabled, "%v", stream)
	}
	return b.front.pixels, nil
}

// FrameNumber returns the hardware counter stamped on the stream's front
// image, or 0 if the mode carries no counter.
func (c *Camera) FrameNumber(stream Stream) (int, error) {
	b := c.streams[stream]
	if b == nil {
		return 0, errors.Wrapf(ErrStreamNotEnabled, "%v", stream)
	}
	return b.front.number, nil
}

// BoundStreamMode returns the mode the stream was bound with during
// configuration.
func (c *Camera) BoundStreamMode(stream Stream) (StreamMode, error) {
	b := c.streams[stream]
	if b == nil {
		return StreamMode{}, errors.Wrapf(ErrStreamNotEnabled, "%v", stream)
	}
	return b.mode, nil
}

// StreamIntrinsics returns the cached intrinsics record for the stream's
// bound mode.
func (c *Camera) StreamIntrinsics(stream Stream) (Intrinsics, error) {
	b := c.streams[stream]
	if b == nil {
		return Intrinsics{}, errors.Wrapf(ErrStreamNotEnabled, "%v", stream)
	}
	return c.calib.Intrinsics[b.mode.IntrinsicsIndex], nil
}

// StreamExtrinsics composes the relative transform taking points in the
// 'from' stream's frame to the 'to' stream's frame. Calibration must have
// been fetched, i.e. the session must have been configured.
func (c *Camera) StreamExtrinsics(from, to Stream) Extrinsics {
	transform := c.calib.StreamPoses[from].inverse().mul(c.calib.StreamPoses[to])

	var ex Extrinsics
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			ex.Rotation[col*3+row] = transform.Orientation[col][row]
		}
		ex.Translation[col] = transform.Position[col]
	}
	return ex
}

// Reset is the explicit full reset: closes every subdevice, drops every
// bound buffer, and unfreezes stream requests so mode resolution starts
// over. Cached calibration survives; it is fetched at most once per
// session.
func (c *Camera) Reset() {
	c.StopCapture()
	c.closeSubdevices()
	c.firstOpened = false
}

// Close releases all hardware resources. The session must not be used
// afterwards.
func (c *Camera) Close() error {
	c.Reset()
	return c.device.Close()
}

func (c *Camera) closeSubdevices() {
	for i, sd := range c.subdevices {
		if sd != nil {
			sd.close()
			c.subdevices[i] = nil
		}
	}
	for s := range c.streams {
		c.streams[s] = nil
	}
}

// streamIntent aggregates the bound streams into the device-wide hint
// pushed before streaming starts, one bit per logical stream.
func (c *Camera) streamIntent() uint8 {
	var mask uint8
	for s := Stream(0); s < streamCount; s++ {
		if c.streams[s] != nil {
			mask |= 1 << uint(s)
		}
	}
	return mask
}
