// Video4Linux is a Linux-specific API. Only build if GOOS=linux.
// +build linux

package uvc

// Kernel ABI for the subset of videodev2.h this package speaks. Ioctl
// numbers and struct layouts are for 64-bit architectures.
// See https://github.com/torvalds/linux/blob/master/include/uapi/linux/videodev2.h

const (
	VIDIOC_S_FMT     = 0xc0d05605
	VIDIOC_REQBUFS   = 0xc0145608
	VIDIOC_QUERYBUF  = 0xc0585609
	VIDIOC_QBUF      = 0xc058560f
	VIDIOC_DQBUF     = 0xc0585611
	VIDIOC_STREAMON  = 0x40045612
	VIDIOC_STREAMOFF = 0x40045613
	VIDIOC_S_PARM    = 0xc0cc5616
)

const (
	V4L2_BUF_TYPE_VIDEO_CAPTURE = 1
	V4L2_FIELD_ANY              = 0
	V4L2_MEMORY_MMAP            = 1
)

type v4l2_format struct {
	typ uint32
	_   uint32 // alignment, fmt union is 8-byte aligned
	fmt v4l2_pix_format
}

type v4l2_pix_format struct {
	width        uint32
	height       uint32
	pixelformat  uint32
	field        uint32
	bytesperline uint32
	sizeimage    uint32
	colorspace   uint32
	priv         uint32
	flags        uint32
	ycbcr_enc    uint32
	quantization uint32
	xfer_func    uint32

	_ [152]byte // pad the v4l2_format union to 200 bytes
}

type v4l2_streamparm struct {
	typ     uint32
	capture v4l2_captureparm
}

type v4l2_captureparm struct {
	capability   uint32
	capturemode  uint32
	timeperframe v4l2_fract
	extendedmode uint32
	readbuffers  uint32

	_ [176]byte // pad the parm union
}

type v4l2_fract struct {
	numerator   uint32
	denominator uint32
}

type v4l2_requestbuffers struct {
	count        uint32
	typ          uint32
	memory       uint32
	capabilities uint32
	flags        uint8
	reserved     [3]uint8
}

type v4l2_buffer struct {
	index     uint32
	typ       uint32
	bytesused uint32
	flags     uint32
	field     uint32
	_         [20]byte // struct timeval, 8-byte aligned
	timecode  v4l2_timecode
	sequence  uint32
	memory    uint32
	offset    uint32 // m union: mmap offset
	_         [4]byte
	length    uint32
	_         [12]byte // reserved2, request_fd, tail padding
}

type v4l2_timecode struct {
	typ      uint32
	flags    uint32
	frames   uint8
	seconds  uint8
	minutes  uint8
	hours    uint8
	userbits [4]uint8
}
