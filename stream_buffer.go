//////////////////////////////////////////////////////////////////////////////
//
// Triple-buffered frame holder bridging the capture callback and the
// polling application thread
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package camkit

import "sync"

// A frame is one image slot plus the hardware frame counter stamped on it.
type frame struct {
	pixels []byte
	number int
}

// streamBuffer holds three frames for one logical stream. The producer (the
// capture callback) writes into back and commits; the consumer (the
// application thread) polls and reads front. The two only ever meet at
// middle, and only to swap storage under the lock, so neither side waits on
// the other and the critical section stays constant-time no matter the
// image size.
type streamBuffer struct {
	mu    sync.Mutex
	avail *sync.Cond

	mode    StreamMode
	front   *frame // consumer-exclusive between swaps
	middle  *frame // latest complete frame, touched only under mu
	back    *frame // producer-exclusive between swaps
	updated bool
}

func newStreamBuffer() *streamBuffer {
	b := &streamBuffer{
		front:  new(frame),
		middle: new(frame),
		back:   new(frame),
	}
	b.avail = sync.NewCond(&b.mu)
	return b
}

// setMode sizes all three slots for the given stream mode and resets the
// frame counter. Must not be called while streaming.
func (b *streamBuffer) setMode(mode StreamMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mode = mode
	size := ImageSize(mode.Width, mode.Height, mode.Format)
	for _, f := range []*frame{b.front, b.middle, b.back} {
		f.pixels = make([]byte, size)
		f.number = 0
	}
	b.updated = false
}

// backPixels exposes the producer's write target. Only the capture callback
// may touch it, and only between commits.
func (b *streamBuffer) backPixels() []byte {
	return b.back.pixels
}

func (b *streamBuffer) setBackNumber(n int) {
	b.back.number = n
}

// producerCommit publishes the back frame as the latest complete frame.
// A storage swap, never a copy, so the hardware callback path never stalls
// on a slow consumer.
func (b *streamBuffer) producerCommit() {
	b.mu.Lock()
	b.back, b.middle = b.middle, b.back
	b.updated = true
	b.mu.Unlock()
	b.avail.Signal()
}

// consumerPoll takes the latest complete frame into front, if there is one.
// Never blocks; returns false immediately when nothing new has been
// committed since the last poll.
func (b *streamBuffer) consumerPoll() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.updated {
		return false
	}
	b.front, b.middle = b.middle, b.front
	b.updated = false
	return true
}

// waitFrame blocks until the producer commits a frame, then takes it into
// front. Used only for the pacing stream of a frame-set wait.
func (b *streamBuffer) waitFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for !b.updated {
		b.avail.Wait()
	}
	b.front, b.middle = b.middle, b.front
	b.updated = false
}
