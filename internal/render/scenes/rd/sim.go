// Package rd implements reaction-diffusion drawers on a shared stepping
// engine. Models differ only in their reaction term, stencil, constants and
// output mapping, all supplied as data and closures to Stepper and Sim.
package rd

import (
	"math"
	"math/rand/v2"

	"github.com/coreman2200/funtimes-aurora/internal/render"
)

// Stencil selects the neighbourhood operator used for diffusion.
type Stencil int

const (
	// Laplace5 is the 5-point discrete Laplacian.
	Laplace5 Stencil = iota
	// Mean9 is the 3x3 neighbourhood mean minus the centre cell.
	Mean9
)

// Reaction returns the local reaction term for each species given the
// current concentrations at one cell. Unused species are zero.
type Reaction func(x [3]float64) [3]float64

// Stepper integrates one explicit Euler step:
// next = cur + DT*(D*stencil(cur) + react(cur)).
type Stepper struct {
	Stencil   Stencil
	Diffusion [3]float64
	DT        float64
	Clip      bool // clamp every species to [0,1]
	React     Reaction
}

// Sim holds double-buffered concentration fields with periodic boundaries.
// Exactly one buffer index Q is current; the other holds the previous step.
type Sim struct {
	W, H    int
	Species int
	Q       int
	fields  [3][2][]float64

	Stepper    Stepper
	Scale      float64
	RunningMax float64
	Cycle      render.ColorCycle

	rng *rand.Rand
}

func NewSim(w, h, species int, rng *rand.Rand) *Sim {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	s := &Sim{W: w, H: h, Species: species, Scale: 1, rng: rng}
	for i := 0; i < species; i++ {
		s.fields[i][0] = make([]float64, w*h)
		s.fields[i][1] = make([]float64, w*h)
	}
	return s
}

// Cur returns the current buffer of species i.
func (s *Sim) Cur(i int) []float64 { return s.fields[i][s.Q] }

// Prev returns the buffer written by the step before the current one.
func (s *Sim) Prev(i int) []float64 { return s.fields[i][1-s.Q] }

// Snapshot copies the current buffer of species i.
func (s *Sim) Snapshot(i int) []float64 { return append([]float64(nil), s.Cur(i)...) }

// Fill sets both buffers of species i to v.
func (s *Sim) Fill(i int, v float64) {
	for q := 0; q < 2; q++ {
		buf := s.fields[i][q]
		for j := range buf {
			buf[j] = v
		}
	}
}

// Restart clears the bookkeeping shared by every model.
func (s *Sim) Restart() {
	s.Q = 0
	s.RunningMax = 0
	s.Cycle.Reset()
}

// Noise fills both buffers of every species with uniform values in [lo, hi).
func (s *Sim) Noise(lo, hi float64) {
	for i := 0; i < s.Species; i++ {
		for j := range s.fields[i][0] {
			v := lo + s.rng.Float64()*(hi-lo)
			s.fields[i][0][j] = v
			s.fields[i][1][j] = v
		}
	}
}

// Islands fills species 0 and 1 with bg and stamps n square islands of fg.
// Island side is min(20, min(W,H)/4); grids too small for a side of at
// least 2 get no islands.
func (s *Sim) Islands(bg, fg [2]float64, n int) {
	s.Fill(0, bg[0])
	s.Fill(1, bg[1])

	size := min(20, min(s.W, s.H)/4)
	half := size / 2
	if half == 0 {
		return
	}
	for k := 0; k < n; k++ {
		cx := s.randCentre(size, s.W)
		cy := s.randCentre(size, s.H)
		for y := max(0, cy-half); y < min(s.H, cy+half); y++ {
			for x := max(0, cx-half); x < min(s.W, cx+half); x++ {
				j := y*s.W + x
				for q := 0; q < 2; q++ {
					s.fields[0][q][j] = fg[0]
					s.fields[1][q][j] = fg[1]
				}
			}
		}
	}
}

// randCentre draws from [size, dim-size), falling back to the middle when
// the grid is too small for that interval.
func (s *Sim) randCentre(size, dim int) int {
	lo, hi := size, dim-size
	if hi <= lo {
		return dim / 2
	}
	return lo + s.rng.IntN(hi-lo)
}

// LogUniform samples exp(U(log lo, log hi)).
func (s *Sim) LogUniform(lo, hi float64) float64 {
	if lo <= 0 || hi <= 0 {
		return 1
	}
	if hi == lo {
		return lo
	}
	return math.Exp(math.Log(lo) + s.rng.Float64()*(math.Log(hi)-math.Log(lo)))
}

// StepsPerFrame is clamp(round(user*scale), 1, maxSpeed).
func StepsPerFrame(user, scale float64, maxSpeed int) int {
	n := int(math.Round(user * scale))
	if n > maxSpeed {
		n = maxSpeed
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Step advances the simulation once and flips Q.
func (s *Sim) Step() {
	st := &s.Stepper
	nq := 1 - s.Q
	w, h := s.W, s.H
	var x, lap [3]float64

	for yy := 0; yy < h; yy++ {
		up := ((yy-1+h)%h) * w
		row := yy * w
		down := ((yy + 1) % h) * w
		for xx := 0; xx < w; xx++ {
			left := (xx - 1 + w) % w
			right := (xx + 1) % w
			j := row + xx
			for i := 0; i < s.Species; i++ {
				f := s.fields[i][s.Q]
				c := f[j]
				x[i] = c
				switch st.Stencil {
				case Mean9:
					sum := f[up+left] + f[up+xx] + f[up+right] +
						f[row+left] + c + f[row+right] +
						f[down+left] + f[down+xx] + f[down+right]
					lap[i] = sum/9 - c
				default:
					lap[i] = f[up+xx] + f[down+xx] + f[row+left] + f[row+right] - 4*c
				}
			}
			r := st.React(x)
			for i := 0; i < s.Species; i++ {
				v := x[i] + st.DT*(st.Diffusion[i]*lap[i]+r[i])
				if st.Clip {
					v = clamp01(v)
				}
				s.fields[i][nq][j] = v
			}
		}
	}
	s.Q = nq
}

// Normalize maps values to palette indices against the decaying running
// maximum, max(runningMax*0.99, max(values)).
func (s *Sim) Normalize(values []float64, g *render.Grid, paletteSize int) {
	cur := 0.0
	for _, v := range values {
		if v > cur {
			cur = v
		}
	}
	if cur > 0 {
		s.RunningMax = math.Max(s.RunningMax*0.99, cur)
	}
	top := float64(paletteSize - 1)
	for j, v := range values {
		if s.RunningMax > 0 {
			v /= s.RunningMax
		}
		g.Cells[j] = int(clamp01(v) * top)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Option configures a reaction-diffusion drawer.
type Option func(*options)

type options struct {
	seed int64
}

// WithSeed fixes the random stream so runs are reproducible.
func WithSeed(seed int64) Option { return func(o *options) { o.seed = seed } }

func buildOptions(opts []Option) options {
	o := options{seed: render.ClockSeed()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
