package off

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-aurora/internal/render"
)

func TestRampAndScroll(t *testing.T) {
	d := New()
	ctx := render.Context{Width: 4, Height: 2, DeltaTime: 0.1, PaletteSize: 4}
	g := d.Draw(ctx)
	assert.Equal(t, []int{0, 1, 2, 3, 0, 1, 2, 3}, g.Cells)

	// speed 5 * 0.1 * 10 = 5 columns; 5 mod 4 = 1
	g = d.Draw(ctx)
	assert.Equal(t, []int{1, 2, 3, 0, 1, 2, 3, 0}, g.Cells)

	d.Reset()
	g = d.Draw(ctx)
	assert.Equal(t, 0, g.At(0, 0))
}

func TestSingleColumn(t *testing.T) {
	d := New()
	assert.NotPanics(t, func() {
		d.Draw(render.Context{Width: 1, Height: 3, DeltaTime: 1, PaletteSize: 16})
	})
}

func TestSpeedClamp(t *testing.T) {
	d := New()
	d.Settings().Update(map[string]float64{"speed": 100})
	assert.Equal(t, 20.0, d.Settings().Get("speed"))
	d.Settings().Update(map[string]float64{"speed": 0})
	assert.Equal(t, 1.0, d.Settings().Get("speed"))
}
