package camkit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testMode() StreamMode {
	return StreamMode{Stream: StreamDepth, Width: 4, Height: 4, Format: FormatZ16, FPS: 30}
}

func TestPollWithoutCommit(t *testing.T) {
	b := newStreamBuffer()
	b.setMode(testMode())

	// Repeated polls with nothing committed all report no frame and leave
	// the front image untouched.
	for i := 0; i < 3; i++ {
		assert.False(t, b.consumerPoll())
	}
	assert.Equal(t, 0, b.front.number)
	assert.Equal(t, make([]byte, 32), b.front.pixels)
}

func TestCommitThenPoll(t *testing.T) {
	b := newStreamBuffer()
	b.setMode(testMode())

	back := b.backPixels()
	for i := range back {
		back[i] = 0xAB
	}
	b.setBackNumber(7)
	b.producerCommit()

	assert.True(t, b.consumerPoll())
	assert.Equal(t, 7, b.front.number)
	assert.Equal(t, byte(0xAB), b.front.pixels[0])

	// Nothing new since the last poll.
	assert.False(t, b.consumerPoll())
	assert.Equal(t, 7, b.front.number)
}

func TestCommitOverwritesUnconsumed(t *testing.T) {
	b := newStreamBuffer()
	b.setMode(testMode())

	// Two commits with no poll in between: the consumer sees only the
	// latest frame, and the producer never waits for it.
	b.setBackNumber(1)
	b.producerCommit()
	b.setBackNumber(2)
	b.producerCommit()

	assert.True(t, b.consumerPoll())
	assert.Equal(t, 2, b.front.number)
	assert.False(t, b.consumerPoll())
}

func TestSetModeResets(t *testing.T) {
	b := newStreamBuffer()
	b.setMode(testMode())

	b.setBackNumber(42)
	b.producerCommit()

	b.setMode(testMode())
	assert.False(t, b.consumerPoll())
	assert.Equal(t, 0, b.front.number)
}

func TestWaitFrameBlocksUntilCommit(t *testing.T) {
	b := newStreamBuffer()
	b.setMode(testMode())

	released := make(chan struct{})
	go func() {
		b.waitFrame()
		close(released)
	}()

	select {
	case <-released:
		t.Fatal("waitFrame returned with no committed frame")
	case <-time.After(20 * time.Millisecond):
	}

	b.setBackNumber(3)
	b.producerCommit()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("waitFrame did not wake on commit")
	}
	assert.Equal(t, 3, b.front.number)
}

func TestConcurrentProducerConsumer(t *testing.T) {
	b := newStreamBuffer()
	b.setMode(testMode())

	const frames = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func(b *streamBuffer) {
		defer wg.Done()
		for i := 1; i <= frames; i++ {
			b.setBackNumber(i)
			b.producerCommit()
		}
	}(b)

	// Frame numbers observed by the consumer never go backwards, even as
	// the producer runs flat out.
	last := 0
	for last < frames {
		if b.consumerPoll() {
			if b.front.number < last {
				t.Fatalf("frame number went backwards: %d after %d", b.front.number, last)
			}
			last = b.front.number
		}
	}
	wg.Wait()
}
