package led

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-aurora/internal/frame"
)

// ErrStopTimeout is returned by Stop when the worker did not exit within the
// grace period. The link has been force-closed in that case.
var ErrStopTimeout = errors.New("led: output worker did not stop in time")

// Opener connects the hardware link. It runs on the worker's thread.
type Opener func() (Link, error)

// Stats are cumulative worker counters.
type Stats struct {
	Sent    uint64 `json:"sent" msgpack:"sent"`
	Skipped uint64 `json:"skipped" msgpack:"skipped"`
	Errors  uint64 `json:"errors" msgpack:"errors"`
	LastSeq uint64 `json:"last_seq" msgpack:"last_seq"`
	Running bool   `json:"running" msgpack:"running"`
}

// Worker paces frames from a frame.Channel onto a Link. It owns every
// hardware write and never blocks the producer: the only shared state is the
// channel.
type Worker struct {
	ch     *frame.Channel
	enc    *Encoder
	open   Opener
	period time.Duration
	log    zerolog.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	linkMu    sync.Mutex
	link      Link
	closeOnce sync.Once

	sent, skipped, errs, lastSeq atomic.Uint64
	running                      atomic.Bool
}

func NewWorker(ch *frame.Channel, enc *Encoder, open Opener, fps int) *Worker {
	if fps <= 0 {
		fps = 40
	}
	return &Worker{
		ch:     ch,
		enc:    enc,
		open:   open,
		period: time.Second / time.Duration(fps),
		log:    log.With().Str("component", "output").Logger(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (w *Worker) Start() { go w.run() }

// Done is closed once the worker has exited.
func (w *Worker) Done() <-chan struct{} { return w.done }

func (w *Worker) Stats() Stats {
	return Stats{
		Sent:    w.sent.Load(),
		Skipped: w.skipped.Load(),
		Errors:  w.errs.Load(),
		LastSeq: w.lastSeq.Load(),
		Running: w.running.Load(),
	}
}

// Stop signals the worker and waits up to grace for it to exit.
func (w *Worker) Stop(grace time.Duration) error {
	w.stopOnce.Do(func() { close(w.stop) })
	t := time.NewTimer(grace)
	defer t.Stop()
	select {
	case <-w.done:
		return nil
	case <-t.C:
		w.log.Warn().Dur("grace", grace).Msg("output worker stuck; closing link")
		w.closeLink()
		return ErrStopTimeout
	}
}

func (w *Worker) closeLink() {
	w.linkMu.Lock()
	l := w.link
	w.linkMu.Unlock()
	if l == nil {
		return
	}
	w.closeOnce.Do(func() {
		if err := l.Close(); err != nil {
			w.log.Warn().Err(err).Msg("link close")
		}
	})
}

func (w *Worker) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)

	link, err := w.open()
	if err != nil {
		w.log.Error().Err(err).Msg("link open failed; output disabled")
		return
	}
	w.linkMu.Lock()
	w.link = link
	w.linkMu.Unlock()
	defer w.closeLink()

	w.running.Store(true)
	defer w.running.Store(false)
	w.log.Info().Dur("period", w.period).Msg("output worker started")

	buf := make([]byte, w.ch.Size())
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	var last uint64
	first := true
	for {
		select {
		case <-w.stop:
			return
		default:
		}
		start := time.Now()

		seq := w.ch.ReadInto(buf)
		if first || seq != last {
			if err := link.Write(w.enc.Encode(buf)); err != nil {
				if w.errs.Add(1)%100 == 1 {
					w.log.Warn().Err(err).Uint64("seq", seq).Msg("link write failed")
				}
			} else {
				w.sent.Add(1)
			}
			last, first = seq, false
			w.lastSeq.Store(seq)
		} else {
			w.skipped.Add(1)
		}

		wait := w.period - time.Since(start)
		if wait <= 0 {
			continue
		}
		timer.Reset(wait)
		select {
		case <-w.stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
