package rd

import (
	"math"

	"github.com/coreman2200/funtimes-aurora/internal/render"
)

// GinzburgLandauParams are the coefficients of the real-valued complex
// Ginzburg-Landau equation with u=Re, v=Im.
type GinzburgLandauParams struct {
	Alpha, Beta, Gamma, Delta float64
	ScaleLo, ScaleHi          float64
}

var GinzburgLandauSets = []GinzburgLandauParams{
	{0.0625, 1, 0.0625, 1, 1, 1},
	{0.0625, 1, 0.0625, 1, 0.5, 20},
}

const ginzburgMaxSpeed = 7

// GinzburgLandau draws the phase of an oscillating field: spirals and
// turbulence. Fields are not clipped; only atan2(v,u) is shown.
type GinzburgLandau struct {
	sim      *Sim
	settings *render.Settings
}

func NewGinzburgLandau(w, h int, opts ...Option) *GinzburgLandau {
	o := buildOptions(opts)
	d := &GinzburgLandau{
		sim: NewSim(w, h, 2, render.NewRNG(o.seed)),
		settings: render.NewSettings().
			Define("speed", render.ParamInt, 10, 5, 10).
			Define("colorSpeed", render.ParamInt, 0, 0, 10).
			Define("params", render.ParamInt, 1, 0, float64(len(GinzburgLandauSets)-1)),
	}
	d.Reset()
	return d
}

func (d *GinzburgLandau) Name() string                { return "GinzburgLandau" }
func (d *GinzburgLandau) Settings() *render.Settings { return d.settings }
func (d *GinzburgLandau) Sim() *Sim                  { return d.sim }

func (d *GinzburgLandau) Reset() {
	s := d.sim
	s.Restart()
	s.Noise(-0.25, 0.25)

	p := GinzburgLandauSets[d.settings.Int("params")]
	s.Scale = s.LogUniform(p.ScaleLo, p.ScaleHi)
	s.Stepper = Stepper{
		Stencil:   Laplace5,
		Diffusion: [3]float64{0.2 * s.Scale, 0.2 * s.Scale},
		DT:        0.2 / s.Scale,
		React: func(x [3]float64) [3]float64 {
			u, v := x[0], x[1]
			m := u*u + v*v
			return [3]float64{
				p.Alpha*u - p.Gamma*v + (-p.Beta*u+p.Delta*v)*m,
				p.Alpha*v + p.Gamma*u + (-p.Beta*v-p.Delta*u)*m,
			}
		},
	}
}

func (d *GinzburgLandau) Draw(ctx render.Context) *render.Grid {
	s := d.sim
	steps := StepsPerFrame(d.settings.Get("speed"), s.Scale, ginzburgMaxSpeed)
	for i := 0; i < steps; i++ {
		s.Step()
	}
	u, v := s.Cur(0), s.Cur(1)
	top := float64(ctx.PaletteSize - 1)
	g := render.NewGrid(s.W, s.H)
	for j := range g.Cells {
		phase := (math.Atan2(v[j], u[j]) + math.Pi) / (2 * math.Pi)
		if math.IsNaN(phase) {
			phase = 0
		}
		g.Cells[j] = int(phase * top)
	}
	s.Cycle.Apply(g, d.settings.Int("colorSpeed"), ctx.PaletteSize)
	return g
}
