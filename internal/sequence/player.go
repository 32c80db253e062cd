package sequence

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrEmptyProgram = errors.New("program has no clips")

// Player owns the current Program timeline and uses Hooks to drive the
// drawer manager. It is safe for concurrent use.
type Player struct {
	mu    sync.Mutex
	state PlayerState
	prog  Program
	idx   int
	local float64 // seconds into the current clip
	hooks Hooks
	log   zerolog.Logger
}

// NewPlayer constructs a Player with provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{
		state: Idle,
		hooks: h,
		log:   log.With().Str("component", "playlist").Logger(),
	}
}

// Load replaces the current program and resets to Idle. Clips with a
// non-positive duration are rejected along with empty programs.
func (p *Player) Load(prog Program) error {
	if len(prog.Clips) == 0 {
		return ErrEmptyProgram
	}
	for i, c := range prog.Clips {
		if c.DurationS <= 0 {
			return fmt.Errorf("clip %s has no duration", clipLabel(i, c))
		}
		for _, env := range c.Params {
			env.Sort()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prog = prog
	p.idx = 0
	p.local = 0
	p.state = Idle
	return nil
}

// Start moves to Running and activates the current clip.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Running || len(p.prog.Clips) == 0 {
		return
	}
	if p.state == Idle {
		p.enter(p.idx)
	}
	p.state = Running
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.state == Running {
		p.state = Paused
	}
	p.mu.Unlock()
}

// Stop stops and rewinds to the first clip.
func (p *Player) Stop() {
	p.mu.Lock()
	p.state = Idle
	p.idx = 0
	p.local = 0
	p.mu.Unlock()
}

// Next jumps to the following clip, wrapping regardless of Loop.
func (p *Player) Next() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.prog.Clips) == 0 {
		return
	}
	p.enter((p.idx + 1) % len(p.prog.Clips))
}

func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Status{State: p.state, Clip: p.idx, LocalS: p.local, Clips: len(p.prog.Clips)}
	if p.idx < len(p.prog.Clips) {
		c := p.prog.Clips[p.idx]
		s.ClipName, s.Drawer = c.Name, c.Drawer
	}
	return s
}

// Tick advances playback by dt seconds, applies envelopes for the current
// clip and moves on when the clip's duration has elapsed.
func (p *Player) Tick(dt float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Running || dt <= 0 {
		return
	}
	p.local += dt
	clip := p.prog.Clips[p.idx]
	if len(clip.Params) > 0 && p.hooks.UpdateSettings != nil {
		vals := make(map[string]float64, len(clip.Params))
		for name, env := range clip.Params {
			vals[name] = env.Eval(p.local)
		}
		if err := p.hooks.UpdateSettings(vals); err != nil {
			p.log.Debug().Err(err).Msg("envelope update")
		}
	}
	if p.local < clip.DurationS {
		return
	}
	next := p.idx + 1
	if next >= len(p.prog.Clips) {
		if !p.prog.Loop {
			p.state = Idle
			p.idx, p.local = 0, 0
			p.log.Info().Msg("playlist finished")
			return
		}
		next = 0
	}
	p.enter(next)
}

// enter activates clip i. Must hold mu.
func (p *Player) enter(i int) {
	p.idx = i
	p.local = 0
	c := p.prog.Clips[i]
	l := p.log.With().Str("clip", clipLabel(i, c)).Str("drawer", c.Drawer).Logger()

	if p.hooks.SetDrawer != nil {
		if err := p.hooks.SetDrawer(c.Drawer); err != nil {
			l.Warn().Err(err).Msg("clip drawer unavailable")
			return
		}
	}
	if c.Palette != nil && p.hooks.SetCurated != nil {
		p.hooks.SetCurated(*c.Palette)
	}
	if c.Randomize && p.hooks.Randomize != nil {
		if err := p.hooks.Randomize(); err != nil {
			l.Warn().Err(err).Msg("randomize")
		}
	}
	if len(c.Settings) > 0 && p.hooks.UpdateSettings != nil {
		if err := p.hooks.UpdateSettings(c.Settings); err != nil {
			l.Warn().Err(err).Msg("clip settings")
		}
	}
	l.Info().Float64("duration_s", c.DurationS).Msg("clip started")
}

func clipLabel(i int, c Clip) string {
	if c.Name != "" {
		return c.Name
	}
	return c.Drawer + "#" + strconv.Itoa(i)
}
