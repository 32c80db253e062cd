// Package frame hands RGB frames from the render loop to the output worker.
// It holds a single buffer and the sequence number of the last write; the
// lock covers only the copy in either direction.
package frame

import (
	"fmt"
	"sync"
)

type Channel struct {
	mu  sync.Mutex
	buf []byte
	seq uint64
}

// NewChannel sizes the buffer for a width x height RGB frame. Before the
// first Write, readers see a black frame at sequence 0.
func NewChannel(width, height int) *Channel {
	return &Channel{buf: make([]byte, width*height*3)}
}

// Size is the frame length in bytes.
func (c *Channel) Size() int { return len(c.buf) }

// Write replaces the buffer contents and stores seq. It panics when frame
// has the wrong length.
func (c *Channel) Write(frame []byte, seq uint64) {
	if len(frame) != len(c.buf) {
		panic(fmt.Sprintf("frame: write of %d bytes into %d byte channel", len(frame), len(c.buf)))
	}
	c.mu.Lock()
	copy(c.buf, frame)
	c.seq = seq
	c.mu.Unlock()
}

// Read returns a private copy of the buffer and its sequence number.
func (c *Channel) Read() ([]byte, uint64) {
	out := make([]byte, len(c.buf))
	seq := c.ReadInto(out)
	return out, seq
}

// ReadInto copies the buffer into dst, which must be at least Size bytes,
// and returns the sequence number.
func (c *Channel) ReadInto(dst []byte) uint64 {
	c.mu.Lock()
	copy(dst, c.buf)
	seq := c.seq
	c.mu.Unlock()
	return seq
}

// Seq reports the sequence number of the last write.
func (c *Channel) Seq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}
