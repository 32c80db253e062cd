package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-aurora/internal/diagnostics"
	"github.com/coreman2200/funtimes-aurora/internal/frame"
	"github.com/coreman2200/funtimes-aurora/internal/layout"
	"github.com/coreman2200/funtimes-aurora/internal/render"
	"github.com/coreman2200/funtimes-aurora/internal/render/post"
	"github.com/coreman2200/funtimes-aurora/internal/render/scenes/custom"
	"github.com/coreman2200/funtimes-aurora/internal/sequence"
	"github.com/coreman2200/funtimes-aurora/internal/tests"
)

// Core is the producer side: it ticks the playlist, asks the manager for a
// frame and publishes it on the frame channel. It never touches hardware.
type Core struct {
	Mgr    *render.Manager
	Ch     *frame.Channel
	Seq    *sequence.Player
	Diag   *diagnostics.Hub
	Layout layout.Snake

	fps       int
	seq       uint64
	customs   []*custom.Drawer
	customDir string
	limit     post.Limiter
	limBuf    []byte

	mu       sync.Mutex
	paint    []byte
	test     *tests.Runner
	testBuf  []byte
	prevMode render.Mode
}

// CustomDir is the directory custom definitions were loaded from.
func (c *Core) CustomDir() string { return c.customDir }

// CustomDefinition returns the definition behind a registered custom
// drawer. An empty name means the active drawer.
func (c *Core) CustomDefinition(name string) (*custom.Definition, error) {
	if name == "" {
		name = c.Mgr.Active()
	}
	d, ok := c.Mgr.Drawer(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", render.ErrUnknownDrawer, name)
	}
	cd, ok := d.(*custom.Drawer)
	if !ok {
		return nil, fmt.Errorf("%q is not a custom drawer", name)
	}
	return cd.Definition(), nil
}

// SetPaint stores the latest externally supplied frame used in paint mode.
// Stored frames are never modified in place.
func (c *Core) SetPaint(rgb []byte) error {
	if len(rgb) != c.Ch.Size() {
		return fmt.Errorf("paint frame is %d bytes, want %d", len(rgb), c.Ch.Size())
	}
	buf := append([]byte(nil), rgb...)
	c.mu.Lock()
	c.paint = buf
	c.mu.Unlock()
	return nil
}

// RunTest switches to paint mode and plays a wiring check. The previous
// mode is restored when it completes.
func (c *Core) RunTest(kind tests.Kind, hold int) error {
	r, err := tests.NewRunner(tests.Plan{Kind: kind, Hold: hold})
	if err != nil {
		c.Diag.Push(diagnostics.Diagnostic{
			Severity: diagnostics.Warn, Code: "TEST.UNKNOWN", Summary: "Unknown test name",
			Evidence: map[string]any{"name": kind},
		})
		return err
	}
	c.mu.Lock()
	if c.test == nil {
		c.prevMode = c.Mgr.Mode()
	}
	c.test = r
	c.testBuf = make([]byte, c.Ch.Size())
	c.mu.Unlock()
	_ = c.Mgr.SetMode(render.ModePaint)
	c.Diag.Push(diagnostics.Diagnostic{Severity: diagnostics.Info, Code: "TEST.RUNNING", Summary: "Running test", Detail: string(kind)})
	return nil
}

// external returns the frame handed to the manager in paint mode.
func (c *Core) external() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.test != nil {
		if c.test.Step(c.Layout, c.testBuf) {
			return c.testBuf
		}
		c.test = nil
		_ = c.Mgr.SetMode(c.prevMode)
		c.Diag.Push(diagnostics.Diagnostic{Severity: diagnostics.Info, Code: "TEST.DONE", Summary: "Test complete"})
	}
	if c.paint == nil {
		return nil
	}
	return c.paint
}

// Step produces one frame: playlist tick, manager frame, channel write.
func (c *Core) Step(dt float64) uint64 {
	c.Seq.Tick(dt)
	f := c.Mgr.Frame(c.external())
	if c.limit.Enabled() {
		// manager and paint buffers are shared; limit a copy
		c.limBuf = append(c.limBuf[:0], f...)
		c.limit.Apply(c.limBuf)
		f = c.limBuf
	}
	c.seq++
	c.Ch.Write(f, c.seq)
	return c.seq
}

// Run drives Step at the configured rate until ctx is done.
func (c *Core) Run(ctx context.Context) {
	fps := c.fps
	if fps <= 0 {
		fps = 40
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	last := time.Now()
	log.Info().Int("fps", fps).Msg("render loop started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Uint64("frames", c.seq).Msg("render loop stopped")
			return
		case now := <-ticker.C:
			c.Step(now.Sub(last).Seconds())
			last = now
		}
	}
}

// Close releases custom drawer sandboxes. Call after Run has returned.
func (c *Core) Close() {
	for _, d := range c.customs {
		d.Close()
	}
	c.customs = nil
}
