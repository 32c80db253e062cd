package led

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

// Link abstracts an LED output sink.
type Link interface {
	// Write pushes one encoded frame, delimiter included.
	Write(frame []byte) error
	// Close releases resources.
	Close() error
}

var ErrClosed = errors.New("led: link closed")

// Stream writes frames to any byte stream. The serial link is a Stream over
// a serial port. Close does not wait for a write in progress; closing the
// underlying writer is what unblocks it.
type Stream struct {
	mu     sync.Mutex // serializes writes
	w      io.WriteCloser
	closed atomic.Bool
}

func NewStream(w io.WriteCloser) *Stream { return &Stream{w: w} }

func (s *Stream) Write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return ErrClosed
	}
	for len(frame) > 0 {
		n, err := s.w.Write(frame)
		if err != nil {
			if s.closed.Load() {
				return ErrClosed
			}
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		frame = frame[n:]
	}
	return nil
}

func (s *Stream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.w.Close()
}

// Sim is a link with no hardware behind it. It counts frames and keeps the
// last one for previews and tests.
type Sim struct {
	mu     sync.Mutex
	frames uint64
	bytes  uint64
	last   []byte
	closed bool
}

func NewSim() *Sim { return &Sim{} }

func (s *Sim) Write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.frames++
	s.bytes += uint64(len(frame))
	s.last = append(s.last[:0], frame...)
	return nil
}

func (s *Sim) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Frames is the number of frames written so far.
func (s *Sim) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Last returns a copy of the most recent frame.
func (s *Sim) Last() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.last...)
}

func (s *Sim) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
