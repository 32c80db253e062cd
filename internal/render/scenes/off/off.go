// Package off provides a scrolling palette ramp, useful for checking
// wiring and palette output.
package off

import "github.com/coreman2200/funtimes-aurora/internal/render"

type Drawer struct {
	settings *render.Settings
	pos      float64
}

func New() *Drawer {
	return &Drawer{
		settings: render.NewSettings().Define("speed", render.ParamInt, 5, 1, 20),
	}
}

func (d *Drawer) Name() string                { return "Off" }
func (d *Drawer) Settings() *render.Settings { return d.settings }
func (d *Drawer) Reset()                      { d.pos = 0 }

// Draw fills each column with a ramp index shifted by the scroll position.
func (d *Drawer) Draw(ctx render.Context) *render.Grid {
	w, h := ctx.Width, ctx.Height
	g := render.NewGrid(w, h)
	den := max(1, w-1)
	shift := int(d.pos)
	for x := 0; x < g.W; x++ {
		v := ((x + shift) % g.W) * (ctx.PaletteSize - 1) / den
		for y := 0; y < g.H; y++ {
			g.Set(x, y, v)
		}
	}
	d.pos += d.settings.Get("speed") * ctx.DeltaTime * 10
	return g
}
