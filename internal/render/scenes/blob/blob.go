// Package blob draws slowly morphing organic shapes from 3D noise, with
// time as the third axis.
package blob

import (
	"math"
	"math/rand/v2"

	"github.com/coreman2200/funtimes-aurora/internal/render"
)

const (
	increment  = 0.3125
	noiseMult  = 7.0
	speedMult  = 0.07
	frameScale = 60.0
)

var sineTable = func() [360]float64 {
	var t [360]float64
	for i := range t {
		t[i] = math.Sin(float64(i) * math.Pi / 180)
	}
	return t
}()

type Drawer struct {
	settings *render.Settings
	rng      *rand.Rand
	noise    *Noise
	pos      float64
	cycle    render.ColorCycle
}

type Option func(*Drawer)

func WithSeed(seed int64) Option { return func(d *Drawer) { d.rng = render.NewRNG(seed) } }

func New(opts ...Option) *Drawer {
	d := &Drawer{
		settings: render.NewSettings().
			Define("speed", render.ParamInt, 30, 0, 100).
			Define("colorSpeed", render.ParamInt, 0, 0, 50).
			Define("detail", render.ParamInt, 3, 1, 4).
			Define("zoom", render.ParamInt, 70, 0, 100),
	}
	for _, fn := range opts {
		fn(d)
	}
	if d.rng == nil {
		d.rng = render.NewRNG(render.ClockSeed())
	}
	d.Reset()
	return d
}

func (d *Drawer) Name() string                { return "AlienBlob" }
func (d *Drawer) Settings() *render.Settings { return d.settings }

// Reset picks a new noise lattice and a random start position.
func (d *Drawer) Reset() {
	d.pos = float64(d.rng.IntN(1000))
	d.noise = NewNoise(d.rng)
	d.cycle.Reset()
}

func (d *Drawer) Draw(ctx render.Context) *render.Grid {
	g := render.NewGrid(ctx.Width, ctx.Height)
	detail := d.settings.Int("detail")
	mult := (1 - d.settings.Get("zoom")/100) + 0.02

	for y := 0; y < g.H; y++ {
		ny := float64(y) * increment * mult
		for x := 0; x < g.W; x++ {
			nx := float64(x) * increment * mult
			n := d.noise.At(nx, ny, d.pos, detail, 0.5)
			deg := int((n*noiseMult + 4*math.Pi) * 180 / math.Pi)
			h := (sineTable[deg%360] + 1) / 2
			g.Set(x, y, int(h*float64(ctx.PaletteSize)))
		}
	}
	d.cycle.Apply(g, d.settings.Int("colorSpeed"), ctx.PaletteSize)

	d.pos += speedMult * d.settings.Get("speed") / 100 * ctx.DeltaTime * frameScale
	return g
}
