package render

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-aurora/internal/palette"
)

// Mode selects where frames come from.
type Mode string

const (
	// ModePaint passes externally supplied frames through.
	ModePaint Mode = "paint"
	// ModePattern renders the active drawer through the palette.
	ModePattern Mode = "pattern"
)

var (
	ErrUnknownDrawer  = errors.New("unknown drawer")
	ErrInvalidMode    = errors.New("invalid mode")
	ErrNoActiveDrawer = errors.New("no active drawer")
)

// DrawerInfo describes one registered drawer.
type DrawerInfo struct {
	Name     string                 `json:"name" msgpack:"name"`
	Settings map[string]SettingInfo `json:"settings" msgpack:"settings"`
}

// Status is the manager summary shown to control clients.
type Status struct {
	Mode    Mode     `json:"mode" msgpack:"mode"`
	Active  string   `json:"active_drawer,omitempty" msgpack:"active_drawer"`
	Drawers []string `json:"drawers" msgpack:"drawers"`
	Frame   uint64   `json:"frame" msgpack:"frame"`
	Curated int      `json:"curated_palette" msgpack:"curated_palette"`
}

// Manager owns the drawer registry, the palette and the active mode, and
// turns either an external frame or the active drawer into RGB bytes.
// All methods are safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	width, height int
	reg           *Registry
	pal           *palette.Palette
	active        Drawer
	mode          Mode
	rng           *rand.Rand

	// timing
	frame uint64
	t0    time.Time
	last  time.Time

	black []byte
	out   []byte

	// last draw duration in ms
	drawMS float64
}

// NewManager starts in paint mode with no active drawer.
func NewManager(width, height int, pal *palette.Palette) (*Manager, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid dimensions")
	}
	if pal == nil {
		return nil, errors.New("palette is nil")
	}
	now := time.Now()
	return &Manager{
		width:  width,
		height: height,
		reg:    NewRegistry(),
		pal:    pal,
		mode:   ModePaint,
		rng:    NewRNG(ClockSeed()),
		t0:     now,
		last:   now,
		black:  make([]byte, width*height*3),
		out:    make([]byte, width*height*3),
	}, nil
}

// Seed reseeds the randomizer used by RandomizeActive.
func (m *Manager) Seed(seed int64) {
	m.mu.Lock()
	m.rng = NewRNG(seed)
	m.mu.Unlock()
}

func (m *Manager) Size() (int, int) { return m.width, m.height }

// FrameBytes is the length of every frame Frame returns.
func (m *Manager) FrameBytes() int { return m.width * m.height * 3 }

func (m *Manager) Palette() *palette.Palette { return m.pal }

// Register inserts or replaces a drawer by name.
func (m *Manager) Register(d Drawer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reg.Register(d) {
		log.Debug().Str("drawer", d.Name()).Msg("drawer replaced")
		if m.active != nil && m.active.Name() == d.Name() {
			m.active = d
			d.Reset()
		}
	}
}

// ListDrawers returns every drawer with its settings, sorted by name.
func (m *Manager) ListDrawers() []DrawerInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := m.reg.List()
	out := make([]DrawerInfo, 0, len(names))
	for _, n := range names {
		d, _ := m.reg.Get(n)
		out = append(out, DrawerInfo{Name: n, Settings: d.Settings().Info()})
	}
	return out
}

// Drawer looks up a registered drawer.
func (m *Manager) Drawer(name string) (Drawer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.Get(name)
}

func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// SetMode accepts only paint or pattern.
func (m *Manager) SetMode(mode Mode) error {
	if mode != ModePaint && mode != ModePattern {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	m.mu.Lock()
	m.mode = mode
	m.mu.Unlock()
	return nil
}

// Active returns the active drawer name, or "".
func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return ""
	}
	return m.active.Name()
}

// SetActiveDrawer makes name active and resets it. On failure the previous
// active drawer is kept.
func (m *Manager) SetActiveDrawer(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.reg.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDrawer, name)
	}
	m.active = d
	d.Reset()
	return nil
}

// UpdateActiveSettings applies a partial settings update to the active drawer.
func (m *Manager) UpdateActiveSettings(partial map[string]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return ErrNoActiveDrawer
	}
	m.active.Settings().Update(partial)
	return nil
}

// RandomizeActive randomizes the active drawer's settings and resets it.
func (m *Manager) RandomizeActive() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return ErrNoActiveDrawer
	}
	Randomize(m.active, m.rng)
	return nil
}

func (m *Manager) SetPaletteColors(colors []palette.RGB) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pal.SetBaseColors(colors)
}

func (m *Manager) SetCuratedPalette(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pal.SetCurated(i)
}

// DrawMS is the duration of the last drawer call in milliseconds.
func (m *Manager) DrawMS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drawMS
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{
		Mode:    m.mode,
		Drawers: m.reg.List(),
		Frame:   m.frame,
		Curated: m.pal.CuratedIndex(),
	}
	if m.active != nil {
		st.Active = m.active.Name()
	}
	return st
}

// Frame produces the next RGB frame (width*height*3 bytes).
//
// In paint mode external is returned when it has the right size, black
// otherwise. In pattern mode the active drawer is drawn and mapped through
// the palette; with no active drawer the frame is black. The returned slice
// is owned by the manager and valid until the next call.
func (m *Manager) Frame(external []byte) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	dt := now.Sub(m.last).Seconds()
	m.last = now
	m.frame++

	switch {
	case m.mode == ModePaint:
		if external == nil {
			return m.black
		}
		if len(external) != len(m.out) {
			log.Warn().Int("got", len(external)).Int("want", len(m.out)).Msg("paint frame size mismatch")
			return m.black
		}
		return external

	case m.mode == ModePattern && m.active != nil:
		ctx := Context{
			Width:       m.width,
			Height:      m.height,
			Frame:       m.frame,
			Time:        now.Sub(m.t0).Seconds(),
			DeltaTime:   dt,
			PaletteSize: m.pal.Size(),
		}
		start := time.Now()
		g := m.active.Draw(ctx)
		if g == nil || len(g.Cells) != m.width*m.height {
			log.Warn().Str("drawer", m.active.Name()).Msg("drawer returned a malformed grid")
			return m.black
		}
		m.pal.IndicesToRGB(g.Cells, m.out)
		m.drawMS = float64(time.Since(start).Microseconds()) / 1000.0
		return m.out

	default:
		return m.black
	}
}
