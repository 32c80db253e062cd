package render

import (
	"math/rand/v2"
	"sort"
	"time"
)

// Context is the per-frame snapshot handed to a Drawer. It is built fresh by
// the Manager every tick and passed by value.
type Context struct {
	Width, Height int
	Frame         uint64
	Time          float64 // seconds since the manager started
	DeltaTime     float64 // seconds since the previous frame
	PaletteSize   int
}

// Grid is a row-major H x W grid of palette indices.
type Grid struct {
	W, H  int
	Cells []int
}

func NewGrid(w, h int) *Grid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Grid{W: w, H: h, Cells: make([]int, w*h)}
}

func (g *Grid) Index(x, y int) int { return y*g.W + x }
func (g *Grid) At(x, y int) int    { return g.Cells[y*g.W+x] }
func (g *Grid) Set(x, y, v int)    { g.Cells[y*g.W+x] = v }

// Fill sets every cell to v.
func (g *Grid) Fill(v int) {
	for i := range g.Cells {
		g.Cells[i] = v
	}
}

// Clamp limits every cell to [lo, hi].
func (g *Grid) Clamp(lo, hi int) {
	for i, v := range g.Cells {
		if v < lo {
			g.Cells[i] = lo
		} else if v > hi {
			g.Cells[i] = hi
		}
	}
}

// Drawer produces one grid of palette indices per frame.
type Drawer interface {
	Name() string
	// Reset reinitializes all internal state. Called whenever the drawer
	// becomes active.
	Reset()
	// Draw returns a ctx.Height x ctx.Width grid. Values are expected in
	// [0, ctx.PaletteSize); each drawer wraps or clamps its own output.
	Draw(ctx Context) *Grid
	Settings() *Settings
}

// Randomize draws every ranged setting uniformly within its bounds and then
// resets the drawer.
func Randomize(d Drawer, rng *rand.Rand) {
	d.Settings().Randomize(rng)
	d.Reset()
}

// NewRNG returns a deterministic PCG source for the given seed.
func NewRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// ClockSeed is the default seed for drawers constructed without one.
func ClockSeed() int64 { return time.Now().UnixNano() }

// ColorCycle rotates palette indices by an offset that advances every frame.
type ColorCycle struct {
	Offset int
}

// Apply adds the current offset to every cell, wraps into [0, size) and then
// advances the offset by speed.
func (c *ColorCycle) Apply(g *Grid, speed, size int) {
	if size <= 0 {
		return
	}
	for i, v := range g.Cells {
		v = (v + c.Offset) % size
		if v < 0 {
			v += size
		}
		g.Cells[i] = v
	}
	c.Offset = (c.Offset + speed) % size
	if c.Offset < 0 {
		c.Offset += size
	}
}

func (c *ColorCycle) Reset() { c.Offset = 0 }

// Registry owns drawers by name. Registering an existing name replaces it.
type Registry struct{ m map[string]Drawer }

func NewRegistry() *Registry { return &Registry{m: map[string]Drawer{}} }

// Register inserts d and reports whether an earlier drawer was replaced.
func (r *Registry) Register(d Drawer) bool {
	if d == nil {
		return false
	}
	_, existed := r.m[d.Name()]
	r.m[d.Name()] = d
	return existed
}

func (r *Registry) Get(name string) (Drawer, bool) { d, ok := r.m[name]; return d, ok }

// List returns registered names in sorted order.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int { return len(r.m) }
