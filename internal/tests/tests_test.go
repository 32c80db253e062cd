package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-aurora/internal/layout"
)

func TestIndexSweepFollowsWiring(t *testing.T) {
	l := layout.Snake{Width: 3, Height: 2, LeftToRight: true}
	r, err := NewRunner(Plan{Kind: IndexSweep})
	require.NoError(t, err)

	rgb := make([]byte, l.Count()*3)
	for wire := 0; wire < l.Count(); wire++ {
		require.True(t, r.Step(l, rgb))
		lit := -1
		for i := 0; i < len(rgb); i += 3 {
			if rgb[i] == 255 {
				lit = i / 3
			}
		}
		x, y := lit%l.Width, lit/l.Width
		assert.Equal(t, wire, l.Index(x, y))
	}
	assert.False(t, r.Step(l, rgb))
}

func TestRGBChannelsHold(t *testing.T) {
	l := layout.Snake{Width: 2, Height: 1}
	r, err := NewRunner(Plan{Kind: RGBTest, Hold: 2})
	require.NoError(t, err)
	rgb := make([]byte, 6)

	want := [][]byte{
		{255, 0, 0, 255, 0, 0},
		{255, 0, 0, 255, 0, 0},
		{0, 255, 0, 0, 255, 0},
		{0, 255, 0, 0, 255, 0},
		{0, 0, 255, 0, 0, 255},
		{0, 0, 255, 0, 0, 255},
	}
	for _, w := range want {
		require.True(t, r.Step(l, rgb))
		assert.Equal(t, w, rgb)
	}
	assert.False(t, r.Step(l, rgb))
}

func TestRowSweep(t *testing.T) {
	l := layout.Snake{Width: 1, Height: 2}
	r, _ := NewRunner(Plan{Kind: RowSweep})
	rgb := make([]byte, 6)
	require.True(t, r.Step(l, rgb))
	assert.Equal(t, []byte{0, 255, 255, 0, 0, 0}, rgb)
	require.True(t, r.Step(l, rgb))
	assert.Equal(t, []byte{0, 0, 0, 0, 255, 255}, rgb)
	assert.False(t, r.Step(l, rgb))
}

func TestUnknownPlan(t *testing.T) {
	_, err := NewRunner(Plan{Kind: "plane_z"})
	assert.Error(t, err)
}
