//////////////////////////////////////////////////////////////////////////////
//
// Subdevice handle: one claimed hardware capture unit and its capture state
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package camkit

import (
	"github.com/pkg/errors"

	"github.com/lanikai/camkit/internal/uvc"
)

// captureState is everything the asynchronous frame callback needs: the
// active mode and the buffers it feeds. It is allocated separately from the
// subdevice so the callback closure can hold its own reference; frames
// already in flight when the subdevice is closed still land in valid
// buffers, with the garbage collector providing the shared lifetime.
type captureState struct {
	mode    *SubdeviceMode
	buffers []*streamBuffer
}

// subdevice owns one claimed hardware capture unit.
type subdevice struct {
	handle uvc.Handle
	state  *captureState
}

// openSubdevice claims the capture unit with the given index. Fails if the
// transport rejects the claim (busy, not present).
func openSubdevice(device uvc.Device, index int) (*subdevice, error) {
	handle, err := device.ClaimSubdevice(index)
	if err != nil {
		return nil, errors.Wrapf(err, "claim subdevice %d", index)
	}
	return &subdevice{handle: handle}, nil
}

// configure pushes the mode down to the transport and binds the stream
// buffers, one per stream the mode multiplexes, sizing each for its stream
// mode. Must be called before startStreaming.
func (sd *subdevice) configure(mode *SubdeviceMode, buffers []*streamBuffer) error {
	if len(buffers) != len(mode.Streams) {
		panic("camkit: one stream buffer required per stream mode")
	}

	if err := sd.handle.SetMode(mode.Width, mode.Height, mode.Format.FourCC(), mode.FPS); err != nil {
		return errors.Wrapf(err, "set mode %dx%d %v @%d fps on subdevice %d",
			mode.Width, mode.Height, mode.Format, mode.FPS, mode.Subdevice)
	}

	if sd.state == nil {
		sd.state = new(captureState)
	}
	sd.state.mode = mode
	sd.state.buffers = buffers
	for i, b := range buffers {
		b.setMode(mode.Streams[i])
	}
	return nil
}

// startStreaming registers the frame callback with the transport. The
// closure captures the capture state, not the subdevice: the transport may
// still invoke it with a frame in flight after the subdevice is closed.
func (sd *subdevice) startStreaming() {
	s := sd.state
	sd.handle.StartStreaming(func(raw []byte) {
		// Unpack the raw frame into every stream's back buffer.
		dest := make([][]byte, len(s.buffers))
		for i, b := range s.buffers {
			dest[i] = b.backPixels()
		}
		s.mode.Unpack(dest, s.mode, raw)

		// Stamp the hardware frame counter, if this mode carries one.
		if s.mode.FrameNumber != nil {
			number := s.mode.FrameNumber(s.mode, raw)
			for _, b := range s.buffers {
				b.setBackNumber(number)
			}
		}

		for _, b := range s.buffers {
			b.producerCommit()
		}
	})
}

// stopStreaming halts frame delivery. Safe to call repeatedly.
func (sd *subdevice) stopStreaming() {
	sd.handle.StopStreaming()
}

// close stops streaming and releases the hardware handle.
func (sd *subdevice) close() {
	sd.handle.StopStreaming()
	sd.handle.Close()
}
