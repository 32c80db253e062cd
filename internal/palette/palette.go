// Package palette maps integer palette indices to RGB colors through a
// precomputed lookup table built from a handful of control colors.
package palette

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultSize is the number of entries in a palette table.
const DefaultSize = 4096

// RGB is one 8-bit color triple.
type RGB struct{ R, G, B uint8 }

// Color converts to go-colorful's float representation.
func (c RGB) Color() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Rainbow is the default set of control colors. The last stop repeats the
// first so cycling through the table wraps without a seam.
var Rainbow = []RGB{
	{255, 0, 0},
	{255, 127, 0},
	{255, 255, 0},
	{0, 255, 0},
	{0, 255, 255},
	{0, 0, 255},
	{127, 0, 255},
	{255, 0, 255},
	{255, 0, 0},
}

var ErrNoColors = errors.New("palette: no control colors")

// Palette is a fixed-length lookup table. Rebuilding swaps the whole table,
// so readers either see the old or the new table, never a mix.
type Palette struct {
	mu    sync.RWMutex
	size  int
	lut   []RGB
	base  []RGB
	index int // curated index, -1 when built from custom colors
}

// New builds a palette of size entries. A nil colors slice selects Rainbow.
func New(size int, colors []RGB) (*Palette, error) {
	if size <= 0 {
		return nil, fmt.Errorf("palette: invalid size %d", size)
	}
	if colors == nil {
		colors = Rainbow
	}
	p := &Palette{size: size, index: -1}
	if err := p.SetBaseColors(colors); err != nil {
		return nil, err
	}
	return p, nil
}

// FromCurated builds a palette from the curated bank; i wraps.
func FromCurated(size, i int) (*Palette, error) {
	p, err := New(size, nil)
	if err != nil {
		return nil, err
	}
	p.SetCurated(i)
	return p, nil
}

// Build interpolates colors into a table of exactly size entries.
// N colors give N-1 segments of size/(N-1) entries each; the last segment
// absorbs the remainder. One color fills the table.
func Build(size int, colors []RGB) []RGB {
	lut := make([]RGB, size)
	if len(colors) == 0 || size == 0 {
		return lut
	}
	if len(colors) == 1 {
		for i := range lut {
			lut[i] = colors[0]
		}
		return lut
	}

	segments := len(colors) - 1
	perSegment := size / segments
	idx := 0
	for s := 0; s < segments; s++ {
		c1 := colors[s].Color()
		c2 := colors[s+1].Color()
		n := perSegment
		if s == segments-1 {
			n = size - idx
		}
		for j := 0; j < n; j++ {
			t := 0.0
			if n > 1 {
				t = float64(j) / float64(n-1)
			}
			r, g, b := c1.BlendRgb(c2, t).Clamped().RGB255()
			lut[idx] = RGB{r, g, b}
			idx++
		}
	}
	return lut
}

// SetBaseColors rebuilds the table from new control colors.
func (p *Palette) SetBaseColors(colors []RGB) error {
	if len(colors) == 0 {
		return ErrNoColors
	}
	base := append([]RGB(nil), colors...)
	lut := Build(p.size, base)

	p.mu.Lock()
	p.lut = lut
	p.base = base
	p.index = -1
	p.mu.Unlock()
	return nil
}

// SetCurated rebuilds the table from curated preset i (wrapping).
func (p *Palette) SetCurated(i int) {
	n := CuratedCount()
	i = ((i % n) + n) % n
	base := Curated(i)
	lut := Build(p.size, base)

	p.mu.Lock()
	p.lut = lut
	p.base = base
	p.index = i
	p.mu.Unlock()
}

func (p *Palette) Size() int { return p.size }

// CuratedIndex reports the active curated preset, or -1.
func (p *Palette) CuratedIndex() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.index
}

// BaseColors returns a copy of the current control colors.
func (p *Palette) BaseColors() []RGB {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]RGB(nil), p.base...)
}

// Color returns entry i mod size. Negative indices wrap too.
func (p *Palette) Color(i int) RGB {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lut[wrap(i, p.size)]
}

// IndicesToRGB gathers each index through the table into dst, which must
// hold 3*len(indices) bytes. It returns dst.
func (p *Palette) IndicesToRGB(indices []int, dst []byte) []byte {
	if len(dst) < len(indices)*3 {
		dst = make([]byte, len(indices)*3)
	}
	p.mu.RLock()
	lut, size := p.lut, p.size
	p.mu.RUnlock()

	for i, v := range indices {
		c := lut[wrap(v, size)]
		dst[i*3+0] = c.R
		dst[i*3+1] = c.G
		dst[i*3+2] = c.B
	}
	return dst
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// ParseHex converts "#rrggbb" strings into control colors.
func ParseHex(hex []string) ([]RGB, error) {
	out := make([]RGB, 0, len(hex))
	for _, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette: %q: %w", h, err)
		}
		r, g, b := c.RGB255()
		out = append(out, RGB{r, g, b})
	}
	return out, nil
}
