package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-aurora/internal/render"
)

func TestNoiseRange(t *testing.T) {
	n := NewNoise(render.NewRNG(1))
	for i := 0; i < 500; i++ {
		v := n.At(float64(i)*0.37, float64(i)*0.11, float64(i)*0.05, 4, 0.5)
		// amplitudes sum to 0.5+0.25+0.125+0.0625
		require.True(t, v >= 0 && v <= 0.9375, "noise %v", v)
	}
}

func TestNoiseIsSmooth(t *testing.T) {
	n := NewNoise(render.NewRNG(2))
	a := n.At(1.0, 1.0, 1.0, 1, 0.5)
	b := n.At(1.001, 1.0, 1.0, 1, 0.5)
	assert.InDelta(t, a, b, 0.01)
}

func TestDrawStaysInPalette(t *testing.T) {
	d := New(WithSeed(3))
	d.Settings().Update(map[string]float64{"colorSpeed": 50})
	ctx := render.Context{Width: 32, Height: 18, DeltaTime: 1.0 / 40, PaletteSize: 4096}
	for i := 0; i < 20; i++ {
		g := d.Draw(ctx)
		for _, v := range g.Cells {
			require.True(t, v >= 0 && v < 4096)
		}
	}
}

func TestSeededRunsMatch(t *testing.T) {
	ctx := render.Context{Width: 8, Height: 4, DeltaTime: 1.0 / 40, PaletteSize: 256}
	a, b := New(WithSeed(11)), New(WithSeed(11))
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Draw(ctx).Cells, b.Draw(ctx).Cells)
	}
}

func TestPositionAdvancesWithSpeed(t *testing.T) {
	d := New(WithSeed(5))
	start := d.pos
	d.Settings().Update(map[string]float64{"speed": 100})
	d.Draw(render.Context{Width: 2, Height: 2, DeltaTime: 1, PaletteSize: 16})
	assert.InDelta(t, start+0.07*60, d.pos, 1e-9)

	d.Settings().Update(map[string]float64{"speed": 0})
	p := d.pos
	d.Draw(render.Context{Width: 2, Height: 2, DeltaTime: 1, PaletteSize: 16})
	assert.Equal(t, p, d.pos)
}
