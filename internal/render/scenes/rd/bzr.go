package rd

import (
	"github.com/coreman2200/funtimes-aurora/internal/render"
)

// BZParams are the rate constants of the three-species reaction.
type BZParams struct{ Ka, Kb, Kc float64 }

var BZSets = []BZParams{
	{0.5, 0.5, 0.6},
	{1.1, 1.1, 0.9},
	{0.9, 1.0, 1.1},
	{0.9, 0.9, 1.1},
	{1.0, 1.0, 1.1},
	{1.0, 1.0, 1.0},
	{0.5, 0.5, 0.5},
	{0.75, 0.75, 0.75},
}

// BZ simulates a Belousov-Zhabotinsky style reaction on a grid of at least
// 192x96 cells and samples it down to the display. Slow speeds step the
// simulation every few frames and blend the two buffers in between.
type BZ struct {
	sim      *Sim
	settings *render.Settings
	w, h     int

	state     int
	numStates int
	blend     []float64
}

func NewBZ(w, h int, opts ...Option) *BZ {
	o := buildOptions(opts)
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	sw, sh := max(192, w), max(96, h)
	d := &BZ{
		sim: NewSim(sw, sh, 3, render.NewRNG(o.seed)),
		settings: render.NewSettings().
			Define("speed", render.ParamInt, 50, 10, 100).
			Define("colorSpeed", render.ParamInt, 0, 0, 50).
			Define("zoom", render.ParamInt, 70, 30, 100).
			Define("params", render.ParamInt, 0, 0, float64(len(BZSets)-1)),
		w:         w,
		h:         h,
		numStates: 1,
		blend:     make([]float64, w*h),
	}
	d.Reset()
	return d
}

func (d *BZ) Name() string                { return "Bzr" }
func (d *BZ) Settings() *render.Settings { return d.settings }
func (d *BZ) Sim() *Sim                  { return d.sim }

func (d *BZ) Reset() {
	s := d.sim
	s.Restart()
	s.Noise(0, 1)
	d.state = 0

	p := BZSets[d.settings.Int("params")]
	// mean9(x) + reaction, written as an Euler step with dt=1 and D=1
	s.Stepper = Stepper{
		Stencil:   Mean9,
		Diffusion: [3]float64{1, 1, 1},
		DT:        1,
		Clip:      true,
		React: func(x [3]float64) [3]float64 {
			a, b, c := x[0], x[1], x[2]
			return [3]float64{
				a * (p.Ka*b - p.Kc*c),
				b * (p.Kb*c - p.Ka*a),
				c * (p.Kc*a - p.Kb*b),
			}
		},
	}
}

// NumStates is the number of frames between simulation steps.
func NumStates(speed float64) int {
	return max(1, int(100-speed/100*99))
}

func (d *BZ) Draw(ctx render.Context) *render.Grid {
	s := d.sim
	d.numStates = NumStates(d.settings.Get("speed"))
	if d.state >= d.numStates {
		d.state = 0
	}
	if d.state == 0 {
		s.Step()
	}

	// zoom picks the fraction of the simulation shown
	zoom := d.settings.Get("zoom") / 100
	xs := float64(s.W) * zoom / float64(d.w)
	ys := float64(s.H) * zoom / float64(d.h)
	t := float64(d.state) / float64(d.numStates)
	cur, prev := s.Cur(0), s.Prev(0)
	for y := 0; y < d.h; y++ {
		sy := int(float64(y)*ys) % s.H
		for x := 0; x < d.w; x++ {
			sx := int(float64(x)*xs) % s.W
			j := sy*s.W + sx
			d.blend[y*d.w+x] = prev[j]*(1-t) + cur[j]*t
		}
	}
	d.state++

	g := render.NewGrid(d.w, d.h)
	s.Normalize(d.blend, g, ctx.PaletteSize)
	s.Cycle.Apply(g, d.settings.Int("colorSpeed"), ctx.PaletteSize)
	return g
}
