package rd

import (
	"github.com/coreman2200/funtimes-aurora/internal/render"
)

// GrayScottParams is one feed/kill pair with the scale range sampled at reset.
type GrayScottParams struct {
	F, K             float64
	ScaleLo, ScaleHi float64
}

// GrayScottSets are taken from the xmorphia catalogue. The last three tend
// to die out quickly and are only offered on larger matrices.
var GrayScottSets = []GrayScottParams{
	{0.022, 0.049, 0.5, 20}, // mitosis
	{0.026, 0.051, 0.5, 20}, // coral
	{0.026, 0.052, 0.5, 20}, // moving spots
	{0.022, 0.048, 0.5, 20}, // worms
	{0.018, 0.045, 0.5, 20}, // solitons
	{0.010, 0.033, 0.5, 10}, // pulsating solitons
	{0.014, 0.041, 0.5, 5},  // mazes
	{0.006, 0.045, 1, 5},    // holes
	{0.010, 0.047, 1, 5},    // chaos
}

const grayScottMaxSpeed = 40

// GrayScott grows V islands in a field of U.
type GrayScott struct {
	sim      *Sim
	settings *render.Settings
	params   GrayScottParams
}

func NewGrayScott(w, h int, opts ...Option) *GrayScott {
	o := buildOptions(opts)
	maxParams := len(GrayScottSets) - 1
	if w < 64 || h < 64 {
		maxParams = 5
	}
	d := &GrayScott{
		sim: NewSim(w, h, 2, render.NewRNG(o.seed)),
		settings: render.NewSettings().
			Define("speed", render.ParamInt, 10, 5, 10).
			Define("colorSpeed", render.ParamInt, 10, 5, 15).
			Define("params", render.ParamInt, 1, 0, float64(maxParams)),
	}
	d.Reset()
	return d
}

func (d *GrayScott) Name() string                { return "GrayScott" }
func (d *GrayScott) Settings() *render.Settings { return d.settings }

// Sim exposes the underlying fields for inspection.
func (d *GrayScott) Sim() *Sim { return d.sim }

func (d *GrayScott) Reset() {
	s := d.sim
	s.Restart()
	s.Islands([2]float64{1, 0}, [2]float64{0.5, 0.25}, 5)

	d.params = GrayScottSets[d.settings.Int("params")]
	s.Scale = s.LogUniform(d.params.ScaleLo, d.params.ScaleHi)
	f, k := d.params.F, d.params.K
	s.Stepper = Stepper{
		Stencil:   Laplace5,
		Diffusion: [3]float64{0.08 * s.Scale, 0.04 * s.Scale},
		DT:        1 / s.Scale,
		Clip:      true,
		React: func(x [3]float64) [3]float64 {
			u, v := x[0], x[1]
			uvv := u * v * v
			return [3]float64{-uvv + f*(1-u), uvv - (f+k)*v}
		},
	}
}

func (d *GrayScott) Draw(ctx render.Context) *render.Grid {
	s := d.sim
	steps := StepsPerFrame(d.settings.Get("speed"), s.Scale, grayScottMaxSpeed)
	for i := 0; i < steps; i++ {
		s.Step()
	}
	g := render.NewGrid(s.W, s.H)
	s.Normalize(s.Cur(1), g, ctx.PaletteSize)
	s.Cycle.Apply(g, d.settings.Int("colorSpeed"), ctx.PaletteSize)
	return g
}
