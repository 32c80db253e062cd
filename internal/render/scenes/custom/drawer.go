// Package custom runs user-supplied Lua pattern code behind the Drawer
// contract. A definition is a YAML document carrying metadata, a settings
// schema and a code body that must define
//
//	function draw(width, height, ctx, settings, palette_size) ... end
//
// returning a table of rows (or a flat table) of palette indices.
package custom

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/coreman2200/funtimes-aurora/internal/render"
)

// DefaultTimeout bounds a single draw call. A call that overruns it yields
// an all-zero grid for that frame.
const DefaultTimeout = 50 * time.Millisecond

var errBadResult = errors.New("draw returned a non-table value")

type Drawer struct {
	def      *Definition
	settings *render.Settings
	L        *lua.LState
	draw     *lua.LFunction
	timeout  time.Duration
	log      zerolog.Logger
	errs     zerolog.Logger
	failures uint64
	onError  func(name string, failures uint64, err error)
}

type Option func(*Drawer)

// WithTimeout sets the per-call budget; zero or negative disables it.
func WithTimeout(d time.Duration) Option { return func(dr *Drawer) { dr.timeout = d } }

func WithLogger(l zerolog.Logger) Option { return func(dr *Drawer) { dr.log = l } }

// WithErrorHook is called after every failed draw call.
func WithErrorHook(fn func(name string, failures uint64, err error)) Option {
	return func(dr *Drawer) { dr.onError = fn }
}

// Load parses src and compiles it. See New.
func Load(src []byte, opts ...Option) (*Drawer, error) {
	def, err := ParseDefinition(src)
	if err != nil {
		return nil, err
	}
	return New(def, opts...)
}

// New compiles the definition's code once in a fresh sandbox. A compile
// error, a runtime error in the top-level chunk or a missing draw function
// all return ErrDefinitionInvalid.
func New(def *Definition, opts ...Option) (*Drawer, error) {
	d := &Drawer{
		def:      def,
		settings: def.BuildSettings(),
		timeout:  DefaultTimeout,
		log:      log.Logger,
	}
	for _, fn := range opts {
		fn(d)
	}
	d.log = d.log.With().Str("drawer", def.Name).Logger()
	d.errs = d.log.Sample(&zerolog.BasicSampler{N: 100})

	d.L = newSandbox(d.log)
	fn, err := d.L.LoadString(def.Code)
	if err != nil {
		d.L.Close()
		return nil, fmt.Errorf("%w: compile: %v", ErrDefinitionInvalid, err)
	}
	cancel := d.deadline()
	d.L.Push(fn)
	err = d.L.PCall(0, lua.MultRet, nil)
	cancel()
	if err != nil {
		d.L.Close()
		return nil, fmt.Errorf("%w: %v", ErrDefinitionInvalid, err)
	}
	draw, ok := d.L.GetGlobal("draw").(*lua.LFunction)
	if !ok {
		d.L.Close()
		return nil, fmt.Errorf("%w: code must define a draw function", ErrDefinitionInvalid)
	}
	d.draw = draw
	d.L.SetTop(0)
	d.Reset()
	return d, nil
}

func (d *Drawer) Name() string                { return d.def.Name }
func (d *Drawer) Settings() *render.Settings { return d.settings }
func (d *Drawer) Definition() *Definition    { return d.def }

// Failures counts draw calls that degraded to a zero grid.
func (d *Drawer) Failures() uint64 { return d.failures }

// Reset clears the persistent state table visible to the script.
func (d *Drawer) Reset() {
	d.L.SetGlobal("state", d.L.NewTable())
}

// Close releases the Lua state. The drawer must not be used afterwards.
func (d *Drawer) Close() { d.L.Close() }

func (d *Drawer) deadline() context.CancelFunc {
	if d.timeout <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	d.L.SetContext(ctx)
	return func() {
		d.L.RemoveContext()
		cancel()
	}
}

// Draw calls the script. Any Lua error, timeout or unusable result gives an
// all-zero grid for this frame only.
func (d *Drawer) Draw(ctx render.Context) *render.Grid {
	g := render.NewGrid(ctx.Width, ctx.Height)

	cancel := d.deadline()
	err := d.L.CallByParam(lua.P{Fn: d.draw, NRet: 1, Protect: true},
		lua.LNumber(g.W), lua.LNumber(g.H),
		d.contextTable(ctx), d.settingsTable(), lua.LNumber(ctx.PaletteSize))
	cancel()
	if err != nil {
		d.L.SetTop(0)
		d.fail(err)
		return g
	}
	ret := d.L.Get(-1)
	d.L.Pop(1)
	if err := coerce(ret, g); err != nil {
		d.fail(err)
		g.Fill(0)
		return g
	}
	g.Clamp(0, max(ctx.PaletteSize-1, 0))
	return g
}

func (d *Drawer) fail(err error) {
	d.failures++
	d.errs.Warn().Err(err).Uint64("failures", d.failures).Msg("draw failed")
	if d.onError != nil {
		d.onError(d.def.Name, d.failures, err)
	}
}

func (d *Drawer) contextTable(ctx render.Context) *lua.LTable {
	t := d.L.CreateTable(0, 6)
	t.RawSetString("width", lua.LNumber(ctx.Width))
	t.RawSetString("height", lua.LNumber(ctx.Height))
	t.RawSetString("frame_num", lua.LNumber(ctx.Frame))
	t.RawSetString("time", lua.LNumber(ctx.Time))
	t.RawSetString("delta_time", lua.LNumber(ctx.DeltaTime))
	t.RawSetString("palette_size", lua.LNumber(ctx.PaletteSize))
	return t
}

func (d *Drawer) settingsTable() *lua.LTable {
	vals := d.settings.Values()
	t := d.L.CreateTable(0, len(vals))
	for k, v := range vals {
		if d.settings.Kind(k) == render.ParamBool {
			t.RawSetString(k, lua.LBool(v != 0))
			continue
		}
		t.RawSetString(k, lua.LNumber(v))
	}
	return t
}

// coerce copies a Lua result into g. A table of rows with the exact shape is
// copied as is; any result whose element count equals W*H is reshaped row
// major; everything else is cropped or zero padded from the top-left.
func coerce(v lua.LValue, g *render.Grid) error {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return errBadResult
	}
	var rows [][]int
	if _, nested := tbl.RawGetInt(1).(*lua.LTable); nested {
		n := tbl.Len()
		rows = make([][]int, 0, n)
		for i := 1; i <= n; i++ {
			row, _ := tbl.RawGetInt(i).(*lua.LTable)
			rows = append(rows, cells(row))
		}
	} else {
		rows = [][]int{cells(tbl)}
	}

	total := 0
	exact := len(rows) == g.H
	for _, r := range rows {
		total += len(r)
		if len(r) != g.W {
			exact = false
		}
	}
	if !exact && total == len(g.Cells) {
		i := 0
		for _, r := range rows {
			i += copy(g.Cells[i:], r)
		}
		return nil
	}
	for y := 0; y < len(rows) && y < g.H; y++ {
		copy(g.Cells[y*g.W:(y+1)*g.W], rows[y])
	}
	return nil
}

// cells reads the array part of a table, truncating numbers toward zero.
// Non-numeric and NaN entries become 0.
func cells(t *lua.LTable) []int {
	if t == nil {
		return nil
	}
	n := t.Len()
	out := make([]int, n)
	for i := 1; i <= n; i++ {
		switch v := t.RawGetInt(i).(type) {
		case lua.LNumber:
			f := float64(v)
			if math.IsNaN(f) {
				continue
			}
			out[i-1] = int(math.Max(math.Min(f, math.MaxInt32), math.MinInt32))
		case lua.LBool:
			if v {
				out[i-1] = 1
			}
		}
	}
	return out
}
