package camkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectModePrefersSmallestCover(t *testing.T) {
	info := testInfo()
	var requests [streamCount]StreamRequest
	requests[StreamDepth] = StreamRequest{true, 4, 4, FormatZ16, 15}
	requests[StreamInfrared] = StreamRequest{true, 4, 4, FormatY8, 15}

	// Both depth and infrared at 15 fps: only the bundle covers them.
	mode := info.SelectMode(&requests, 0)
	if assert.NotNil(t, mode) {
		assert.Equal(t, 2, len(mode.Streams))
	}

	// Depth alone at 30 fps: the single-stream mode wins over the bundle.
	requests[StreamInfrared] = StreamRequest{}
	requests[StreamDepth] = StreamRequest{true, 4, 4, FormatZ16, 30}
	mode = info.SelectMode(&requests, 0)
	if assert.NotNil(t, mode) {
		assert.Equal(t, 1, len(mode.Streams))
		assert.Equal(t, 30, mode.FPS)
	}
}

func TestSelectModeNoRequests(t *testing.T) {
	info := testInfo()
	var requests [streamCount]StreamRequest

	// Nothing requested for the subdevice means nothing to open, not an
	// error.
	assert.Nil(t, info.SelectMode(&requests, 0))
	assert.Nil(t, info.SelectMode(&requests, 1))
}

func TestSelectModeNoCover(t *testing.T) {
	info := testInfo()
	var requests [streamCount]StreamRequest
	requests[StreamDepth] = StreamRequest{true, 640, 480, FormatZ16, 30}

	// Requested geometry exists in no mode.
	assert.Nil(t, info.SelectMode(&requests, 0))
}

func TestSelectModeFormatAny(t *testing.T) {
	info := testInfo()
	var requests [streamCount]StreamRequest
	requests[StreamDepth] = StreamRequest{true, 4, 4, FormatAny, 60}

	mode := info.SelectMode(&requests, 0)
	if assert.NotNil(t, mode) {
		assert.Equal(t, 60, mode.FPS)
		assert.Equal(t, FormatZ16, mode.Streams[0].Format)
	}
}

func TestValidateRequests(t *testing.T) {
	info := testInfo()
	var requests [streamCount]StreamRequest

	assert.Nil(t, info.ValidateRequests(&requests))

	requests[StreamInfrared] = StreamRequest{true, 4, 4, FormatY8, 15}
	assert.Nil(t, info.ValidateRequests(&requests))

	requests[StreamColor] = StreamRequest{true, 4, 4, FormatYUYV, 30}
	assert.NotNil(t, info.ValidateRequests(&requests))
}

func TestMaxSubdevice(t *testing.T) {
	assert.Equal(t, 1, testInfo().MaxSubdevice())
}

func TestImageSize(t *testing.T) {
	assert.Equal(t, 640*480*2, ImageSize(640, 480, FormatZ16))
	assert.Equal(t, 640*480*3, ImageSize(640, 480, FormatRGB8))
	assert.Equal(t, 640*480, ImageSize(640, 480, FormatY8))
}

func TestUnpackPlanes(t *testing.T) {
	mode := &SubdeviceMode{
		Streams: []StreamMode{
			{StreamDepth, 2, 2, FormatZ16, 30, 0},
			{StreamInfrared, 2, 2, FormatY8, 30, 1},
		},
	}
	frame := []byte{1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2}
	dest := [][]byte{make([]byte, 8), make([]byte, 4)}

	UnpackPlanes(dest, mode, frame)
	assert.Equal(t, []byte{1, 1, 1, 1, 1, 1, 1, 1}, dest[0])
	assert.Equal(t, []byte{2, 2, 2, 2}, dest[1])
}
