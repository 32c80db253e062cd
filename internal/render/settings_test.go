package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingsUpdateClamps(t *testing.T) {
	s := NewSettings().
		Define("speed", ParamInt, 10, 5, 10).
		Define("zoom", ParamFloat, 0.5, 0, 1).
		Literal("free", 42)

	s.Update(map[string]float64{"speed": 500})
	assert.Equal(t, 10.0, s.Get("speed"))

	s.Update(map[string]float64{"speed": -3})
	assert.Equal(t, 5.0, s.Get("speed"))

	s.Update(map[string]float64{"speed": 7.6, "zoom": 0.25})
	assert.Equal(t, 8.0, s.Get("speed"))
	assert.Equal(t, 0.25, s.Get("zoom"))

	s.Update(map[string]float64{"free": 1234, "unknown": 1})
	assert.Equal(t, 1234.0, s.Get("free"))
	assert.False(t, s.Has("unknown"))
}

func TestSettingsInfoDefaultsRange(t *testing.T) {
	s := NewSettings().Define("speed", ParamInt, 3, 1, 20).Literal("free", 5)
	info := s.Info()
	assert.Equal(t, SettingInfo{Value: 3, Min: 1, Max: 20}, info["speed"])
	assert.Equal(t, SettingInfo{Value: 5, Min: 0, Max: 100}, info["free"])
	assert.Equal(t, []string{"speed", "free"}, s.Keys())
}

func TestSettingsRandomizeStaysInRange(t *testing.T) {
	s := NewSettings().
		Define("n", ParamInt, 1, 1, 4).
		Define("f", ParamFloat, 0, -1, 1).
		Define("b", ParamBool, 0, 0, 1).
		Literal("free", 77)
	rng := NewRNG(42)
	seen := map[float64]bool{}
	for i := 0; i < 200; i++ {
		s.Randomize(rng)
		n := s.Get("n")
		assert.True(t, n >= 1 && n <= 4)
		assert.Equal(t, n, float64(int(n)))
		f := s.Get("f")
		assert.True(t, f >= -1 && f <= 1)
		b := s.Get("b")
		assert.True(t, b == 0 || b == 1)
		seen[n] = true
	}
	assert.Len(t, seen, 4, "every integer in range should be drawn")
	assert.Equal(t, 77.0, s.Get("free"))
}

func TestDefineClampsDefault(t *testing.T) {
	s := NewSettings().Define("x", ParamInt, 50, 0, 10)
	assert.Equal(t, 10.0, s.Get("x"))
}
