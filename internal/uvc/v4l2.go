// +build linux

package uvc

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
	errors "golang.org/x/xerrors"

	"github.com/lanikai/camkit/internal/logging"
)

var log = logging.DefaultLogger.WithTag("uvc")

// OpenV4L2 returns a Device whose subdevice index N maps to the video node
// "<prefix><first+N>", e.g. /dev/video2 for prefix "/dev/video", first 2,
// index 0. Multi-sensor cameras enumerate one node per capture unit.
func OpenV4L2(prefix string, first int) Device {
	return &v4l2Device{prefix: prefix, first: first}
}

type v4l2Device struct {
	prefix string
	first  int
}

func (d *v4l2Device) ClaimSubdevice(index int) (Handle, error) {
	path := fmt.Sprintf("%s%d", d.prefix, d.first+index)
	fd, err := unix.Open(path, unix.O_RDWR, 0666)
	if err != nil {
		return nil, errors.Errorf("open %s: %v", path, err)
	}
	log.Debug("claimed %s as subdevice %d", path, index)
	return &v4l2Handle{path: path, fd: fd}, nil
}

// SetStreamIntent is accepted but not forwarded: plain V4L2 has no
// device-wide intent control. Devices that need one (extension-unit
// controls on the first claimed node) wrap this implementation.
func (d *v4l2Device) SetStreamIntent(mask uint8) error {
	log.Debug("stream intent %08b", mask)
	return nil
}

func (d *v4l2Device) Close() error {
	return nil
}

// A claimed V4L2 video node.
type v4l2Handle struct {
	path string
	fd   int

	mu        sync.Mutex
	streaming bool
	mmap      []byte        // single memory-mapped kernel buffer
	done      chan struct{} // closed when the pump goroutine exits
}

func (h *v4l2Handle) ioctl(request uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		uintptr(h.fd),
		uintptr(request),
		uintptr(arg),
	)
	if errno != 0 {
		return errno
	}
	return nil
}

func (h *v4l2Handle) SetMode(width, height int, fourcc uint32, fps int) error {
	pfmt := v4l2_pix_format{
		width:       uint32(width),
		height:      uint32(height),
		pixelformat: fourcc,
		field:       V4L2_FIELD_ANY,
	}
	format := v4l2_format{
		typ: V4L2_BUF_TYPE_VIDEO_CAPTURE,
		fmt: pfmt,
	}
	if err := h.ioctl(VIDIOC_S_FMT, unsafe.Pointer(&format)); err != nil {
		return errors.Errorf("%s: VIDIOC_S_FMT: %v", h.path, err)
	}

	parm := v4l2_streamparm{
		typ: V4L2_BUF_TYPE_VIDEO_CAPTURE,
		capture: v4l2_captureparm{
			timeperframe: v4l2_fract{numerator: 1, denominator: uint32(fps)},
		},
	}
	if err := h.ioctl(VIDIOC_S_PARM, unsafe.Pointer(&parm)); err != nil {
		return errors.Errorf("%s: VIDIOC_S_PARM: %v", h.path, err)
	}
	return nil
}

func (h *v4l2Handle) requestBuffers(n int) error {
	rb := v4l2_requestbuffers{
		count:  uint32(n),
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	return h.ioctl(VIDIOC_REQBUFS, unsafe.Pointer(&rb))
}

func (h *v4l2Handle) queryBuffer(n uint32) (length, offset uint32, err error) {
	qb := v4l2_buffer{
		index:  n,
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	if err = h.ioctl(VIDIOC_QUERYBUF, unsafe.Pointer(&qb)); err != nil {
		return
	}
	return qb.length, qb.offset, nil
}

func (h *v4l2Handle) enqueue(index int) error {
	qbuf := v4l2_buffer{
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
		index:  uint32(index),
	}
	return h.ioctl(VIDIOC_QBUF, unsafe.Pointer(&qbuf))
}

func (h *v4l2Handle) dequeue() (int, error) {
	dqbuf := v4l2_buffer{
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	err := h.ioctl(VIDIOC_DQBUF, unsafe.Pointer(&dqbuf))
	return int(dqbuf.bytesused), err
}

// StartStreaming maps a kernel buffer and spawns the pump goroutine, which
// delivers one callback invocation per dequeued frame until streaming is
// stopped. Frames for this handle are delivered sequentially.
func (h *v4l2Handle) StartStreaming(cb FrameFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.streaming {
		return
	}

	if err := h.start(); err != nil {
		log.Error("%s: start streaming: %v", h.path, err)
		return
	}
	h.streaming = true
	h.done = make(chan struct{})

	go h.pump(cb, h.done)
}

func (h *v4l2Handle) start() error {
	if err := h.requestBuffers(1); err != nil {
		return errors.Errorf("VIDIOC_REQBUFS: %v", err)
	}

	length, offset, err := h.queryBuffer(0)
	if err != nil {
		return errors.Errorf("VIDIOC_QUERYBUF: %v", err)
	}
	h.mmap, err = unix.Mmap(
		h.fd,
		int64(offset),
		int(length),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED,
	)
	if err != nil {
		return err
	}

	if err := h.enqueue(0); err != nil {
		return errors.Errorf("VIDIOC_QBUF: %v", err)
	}

	typ := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
	if err := h.ioctl(VIDIOC_STREAMON, unsafe.Pointer(&typ)); err != nil {
		return errors.Errorf("VIDIOC_STREAMON: %v", err)
	}
	return nil
}

func (h *v4l2Handle) pump(cb FrameFunc, done chan struct{}) {
	defer close(done)
	for {
		n, err := h.dequeue()
		if err != nil {
			// STREAMOFF unblocks the pending dequeue with an error.
			log.Debug("%s: dequeue: %v", h.path, err)
			return
		}

		// Copy out of the memory-mapped buffer so it can be requeued
		// before the callback finishes with the frame.
		frame := append([]byte(nil), h.mmap[:n]...)

		if err := h.enqueue(0); err != nil {
			log.Warn("%s: enqueue: %v", h.path, err)
			return
		}
		cb(frame)
	}
}

// StopStreaming disables the stream and waits for the pump goroutine to
// exit before unmapping. Safe to call repeatedly.
func (h *v4l2Handle) StopStreaming() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.streaming {
		return
	}
	h.streaming = false

	typ := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
	if err := h.ioctl(VIDIOC_STREAMOFF, unsafe.Pointer(&typ)); err != nil {
		log.Warn("%s: VIDIOC_STREAMOFF: %v", h.path, err)
	}
	<-h.done

	if h.mmap != nil {
		if err := unix.Munmap(h.mmap); err != nil {
			log.Warn("%s: munmap: %v", h.path, err)
		}
		h.mmap = nil
	}
	if err := h.requestBuffers(0); err != nil {
		log.Warn("%s: release buffers: %v", h.path, err)
	}
}

func (h *v4l2Handle) Close() error {
	h.StopStreaming()
	return unix.Close(h.fd)
}
