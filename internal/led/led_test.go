package led

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/coreman2200/funtimes-aurora/internal/frame"
	"github.com/coreman2200/funtimes-aurora/internal/layout"
)

func TestGammaLUTEndpoints(t *testing.T) {
	lut := GammaLUT(2.5)
	assert.EqualValues(t, 0, lut[0])
	assert.EqualValues(t, 255, lut[255])
	assert.EqualValues(t, 46, lut[128])

	linear := GammaLUT(1)
	for i := range linear {
		require.EqualValues(t, i, linear[i])
	}
}

func TestEncodeClampsAndDelimits(t *testing.T) {
	enc := NewEncoder(layout.Snake{Width: 2, Height: 1, LeftToRight: true}, 1)
	out := enc.Encode([]byte{255, 254, 0, 10, 20, 30})
	assert.Equal(t, []byte{254, 254, 0, 10, 20, 30, Delimiter}, out)
	for _, b := range out[:len(out)-1] {
		assert.NotEqual(t, byte(Delimiter), b)
	}
}

func TestEncodeSnake(t *testing.T) {
	enc := NewEncoder(layout.Snake{Width: 2, Height: 2, LeftToRight: true}, 1)
	out := enc.Encode([]byte{
		1, 1, 1, 2, 2, 2,
		3, 3, 3, 4, 4, 4,
	})
	assert.Equal(t, []byte{1, 1, 1, 2, 2, 2, 4, 4, 4, 3, 3, 3, Delimiter}, out)
}

type nopCloser struct{ bytes.Buffer }

func (nopCloser) Close() error { return nil }

func TestStreamWritesFrame(t *testing.T) {
	var buf nopCloser
	s := NewStream(&buf)
	require.NoError(t, s.Write([]byte{1, 2, Delimiter}))
	require.NoError(t, s.Close())
	assert.Equal(t, []byte{1, 2, Delimiter}, buf.Bytes())
	assert.ErrorIs(t, s.Write([]byte{1}), ErrClosed)
}

func TestSPIStripsDelimiter(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSPI(spitest.NewRecordRaw(&buf), 2, 2500*physic.KiloHertz)
	require.NoError(t, err)
	require.NoError(t, s.Write([]byte{10, 20, 30, 40, 50, 60, Delimiter}))
	assert.GreaterOrEqual(t, buf.Len(), 2*3*3)
}

func TestSPIRejectsEmptyStrip(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewSPI(spitest.NewRecordRaw(&buf), 0, 0)
	assert.Error(t, err)
}

func newTestWorker(t *testing.T, link Link, fps int) (*Worker, *frame.Channel) {
	t.Helper()
	ch := frame.NewChannel(2, 2)
	enc := NewEncoder(layout.Snake{Width: 2, Height: 2, LeftToRight: true}, 2.5)
	w := NewWorker(ch, enc, func() (Link, error) { return link, nil }, fps)
	return w, ch
}

func TestWorkerTransmitsOncePerSequence(t *testing.T) {
	sim := NewSim()
	w, ch := newTestWorker(t, sim, 200)
	frameA := bytes.Repeat([]byte{255}, ch.Size())
	ch.Write(frameA, 1)

	w.Start()
	require.Eventually(t, func() bool { return sim.Frames() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, sim.Frames())
	assert.Positive(t, w.Stats().Skipped)

	last := sim.Last()
	require.Len(t, last, ch.Size()+1)
	assert.EqualValues(t, MaxLevel, last[0])
	assert.EqualValues(t, Delimiter, last[len(last)-1])

	ch.Write(make([]byte, ch.Size()), 2)
	require.Eventually(t, func() bool { return sim.Frames() == 2 }, time.Second, time.Millisecond)
	assert.EqualValues(t, 2, w.Stats().LastSeq)

	require.NoError(t, w.Stop(time.Second))
	assert.True(t, sim.Closed())
	assert.False(t, w.Stats().Running)
}

func TestWorkerFirstReadTransmitsBlack(t *testing.T) {
	sim := NewSim()
	w, ch := newTestWorker(t, sim, 100)
	w.Start()
	defer w.Stop(time.Second)

	require.Eventually(t, func() bool { return sim.Frames() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, append(make([]byte, ch.Size()), Delimiter), sim.Last())
}

func TestWorkerOpenFailureExits(t *testing.T) {
	ch := frame.NewChannel(1, 1)
	w := NewWorker(ch, NewEncoder(layout.Snake{Width: 1, Height: 1}, 1),
		func() (Link, error) { return nil, errors.New("no device") }, 40)
	w.Start()
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not exit")
	}
	ch.Write([]byte{1, 2, 3}, 1)
	assert.NoError(t, w.Stop(10*time.Millisecond))
}

// blockingLink hangs in Write until closed.
type blockingLink struct {
	entered chan struct{}
	closed  chan struct{}
}

func (b *blockingLink) Write([]byte) error {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.closed
	return ErrClosed
}

func (b *blockingLink) Close() error {
	close(b.closed)
	return nil
}

// stalledPort is a serial port whose writes hang until it is closed.
type stalledPort struct {
	entered chan struct{}
	closed  chan struct{}
}

func (p *stalledPort) Write(b []byte) (int, error) {
	select {
	case p.entered <- struct{}{}:
	default:
	}
	<-p.closed
	return 0, errors.New("port closed")
}

func (p *stalledPort) Close() error {
	close(p.closed)
	return nil
}

func TestWorkerStopClosesStalledStream(t *testing.T) {
	port := &stalledPort{entered: make(chan struct{}, 1), closed: make(chan struct{})}
	w, _ := newTestWorker(t, NewStream(port), 40)
	w.Start()
	<-port.entered

	stopped := make(chan error, 1)
	go func() { stopped <- w.Stop(20 * time.Millisecond) }()
	select {
	case err := <-stopped:
		assert.ErrorIs(t, err, ErrStopTimeout)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a stalled stream")
	}
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker still running after forced close")
	}
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	port := &stalledPort{entered: make(chan struct{}, 1), closed: make(chan struct{})}
	s := NewStream(port)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Write([]byte{1}), ErrClosed)
}

func TestWorkerStopTimeoutForcesClose(t *testing.T) {
	link := &blockingLink{entered: make(chan struct{}, 1), closed: make(chan struct{})}
	w, _ := newTestWorker(t, link, 40)
	w.Start()
	<-link.entered

	err := w.Stop(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrStopTimeout)
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker still running after forced close")
	}
	assert.EqualValues(t, 1, w.Stats().Errors)
}
