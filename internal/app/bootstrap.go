package app

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-aurora/internal/diagnostics"
	"github.com/coreman2200/funtimes-aurora/internal/frame"
	"github.com/coreman2200/funtimes-aurora/internal/layout"
	"github.com/coreman2200/funtimes-aurora/internal/palette"
	"github.com/coreman2200/funtimes-aurora/internal/render"
	"github.com/coreman2200/funtimes-aurora/internal/render/scenes/blob"
	"github.com/coreman2200/funtimes-aurora/internal/render/post"
	"github.com/coreman2200/funtimes-aurora/internal/render/scenes/custom"
	"github.com/coreman2200/funtimes-aurora/internal/render/scenes/off"
	"github.com/coreman2200/funtimes-aurora/internal/render/scenes/rd"
	"github.com/coreman2200/funtimes-aurora/internal/sequence"
)

type Options struct {
	Width, Height int
	LeftToRight   bool
	FPS           int
	PaletteSize   int
	Curated       int
	Seed          int64 // 0 = clock
	StartMode     render.Mode
	StartDrawer   string
	CustomDir     string
	CustomTimeout time.Duration
	Playlist      *sequence.Program
	Power         post.Limiter
}

// RegisterBuiltins adds the stock drawers sized for a width x height matrix.
func RegisterBuiltins(m *render.Manager, seed int64) {
	w, h := m.Size()
	var (
		blobOpts []blob.Option
		rdOpts   []rd.Option
	)
	if seed != 0 {
		blobOpts = append(blobOpts, blob.WithSeed(seed))
		rdOpts = append(rdOpts, rd.WithSeed(seed))
	}
	m.Register(off.New())
	m.Register(blob.New(blobOpts...))
	m.Register(rd.NewGrayScott(w, h, rdOpts...))
	m.Register(rd.NewGinzburgLandau(w, h, rdOpts...))
	m.Register(rd.NewBZ(w, h, rdOpts...))
}

// LoadCustom registers every definition found in dir and returns the
// drawers so the caller can close them.
func LoadCustom(m *render.Manager, dir string, opts ...custom.Option) ([]*custom.Drawer, error) {
	if dir == "" {
		return nil, nil
	}
	ds, err := custom.LoadDir(dir, opts...)
	if err != nil {
		return nil, fmt.Errorf("custom drawers in %s: %w", dir, err)
	}
	for _, d := range ds {
		m.Register(d)
	}
	return ds, nil
}

// InitCore builds the manager, registers drawers, selects the start drawer
// and mode, and wires the playlist.
func InitCore(o Options) (*Core, error) {
	size := o.PaletteSize
	if size <= 0 {
		size = palette.DefaultSize
	}
	pal, err := palette.FromCurated(size, o.Curated)
	if err != nil {
		return nil, err
	}
	mgr, err := render.NewManager(o.Width, o.Height, pal)
	if err != nil {
		return nil, err
	}
	if o.Seed != 0 {
		mgr.Seed(o.Seed)
	}

	c := &Core{
		Mgr:    mgr,
		Ch:     frame.NewChannel(o.Width, o.Height),
		Diag:   diagnostics.NewHub(128),
		Layout: layout.Snake{Width: o.Width, Height: o.Height, LeftToRight: o.LeftToRight},
		fps:       o.FPS,
		limit:     o.Power,
		customDir: o.CustomDir,
	}

	RegisterBuiltins(mgr, o.Seed)
	customs, err := LoadCustom(mgr, o.CustomDir,
		custom.WithTimeout(o.CustomTimeout),
		custom.WithErrorHook(c.customFailed))
	if err != nil {
		log.Warn().Err(err).Msg("custom drawers not loaded")
	}
	c.customs = customs

	// Fall back to any drawer in the registry
	start := o.StartDrawer
	if _, ok := mgr.Drawer(start); !ok {
		names := mgr.Status().Drawers
		if len(names) == 0 {
			return nil, fmt.Errorf("no drawers registered")
		}
		log.Warn().Str("drawer", start).Str("fallback", names[0]).Msg("start drawer not found")
		start = names[0]
	}
	if err := mgr.SetActiveDrawer(start); err != nil {
		return nil, err
	}
	mode := o.StartMode
	if mode == "" {
		mode = render.ModePattern
	}
	if err := mgr.SetMode(mode); err != nil {
		return nil, err
	}

	c.Seq = sequence.NewPlayer(sequence.Hooks{
		SetDrawer:      mgr.SetActiveDrawer,
		UpdateSettings: mgr.UpdateActiveSettings,
		Randomize:      mgr.RandomizeActive,
		SetCurated:     mgr.SetCuratedPalette,
	})
	if o.Playlist != nil {
		if err := c.Seq.Load(*o.Playlist); err != nil {
			return nil, fmt.Errorf("playlist: %w", err)
		}
		c.Seq.Start()
	}
	log.Info().
		Int("width", o.Width).Int("height", o.Height).
		Str("mode", string(mode)).Str("drawer", start).
		Int("drawers", len(mgr.Status().Drawers)).
		Msg("core ready")
	return c, nil
}

func (c *Core) customFailed(name string, failures uint64, err error) {
	if failures%100 != 1 {
		return
	}
	c.Diag.Push(diagnostics.Diagnostic{
		Severity: diagnostics.Warn,
		Code:     "CUSTOM.DRAW_FAILED",
		Summary:  "Custom drawer failed; frame left blank",
		Detail:   err.Error(),
		Evidence: map[string]any{"drawer": name, "failures": failures},
	})
}
