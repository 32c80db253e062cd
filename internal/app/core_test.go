package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-aurora/internal/render"
	"github.com/coreman2200/funtimes-aurora/internal/render/post"
	"github.com/coreman2200/funtimes-aurora/internal/render/scenes/custom"
	"github.com/coreman2200/funtimes-aurora/internal/sequence"
	"github.com/coreman2200/funtimes-aurora/internal/tests"
)

func testOptions() Options {
	return Options{
		Width: 8, Height: 4, LeftToRight: true, FPS: 40,
		PaletteSize: 256, Seed: 7,
		StartMode: render.ModePattern, StartDrawer: "AlienBlob",
	}
}

func TestInitCoreRegistersBuiltins(t *testing.T) {
	c, err := InitCore(testOptions())
	require.NoError(t, err)
	defer c.Close()

	st := c.Mgr.Status()
	assert.Equal(t, []string{"AlienBlob", "Bzr", "GinzburgLandau", "GrayScott", "Off"}, st.Drawers)
	assert.Equal(t, "AlienBlob", st.Active)
	assert.Equal(t, render.ModePattern, st.Mode)
}

func TestUnknownStartDrawerFallsBack(t *testing.T) {
	o := testOptions()
	o.StartDrawer = "Video"
	c, err := InitCore(o)
	require.NoError(t, err)
	assert.Equal(t, "AlienBlob", c.Mgr.Active())
}

func TestStepPublishesFrames(t *testing.T) {
	c, err := InitCore(testOptions())
	require.NoError(t, err)

	assert.EqualValues(t, 1, c.Step(0.025))
	assert.EqualValues(t, 2, c.Step(0.025))
	buf, seq := c.Ch.Read()
	assert.EqualValues(t, 2, seq)
	assert.Len(t, buf, 8*4*3)
}

func TestPaintFeed(t *testing.T) {
	o := testOptions()
	o.StartMode = render.ModePaint
	c, err := InitCore(o)
	require.NoError(t, err)

	c.Step(0)
	buf, _ := c.Ch.Read()
	assert.Equal(t, make([]byte, len(buf)), buf)

	assert.Error(t, c.SetPaint([]byte{1, 2, 3}))
	paint := make([]byte, c.Ch.Size())
	paint[0] = 200
	require.NoError(t, c.SetPaint(paint))
	c.Step(0)
	buf, _ = c.Ch.Read()
	assert.EqualValues(t, 200, buf[0])
}

func TestPowerLimitLeavesPaintIntact(t *testing.T) {
	o := testOptions()
	o.StartMode = render.ModePaint
	o.Power = post.Limiter{WhiteCap: 1}
	c, err := InitCore(o)
	require.NoError(t, err)

	paint := make([]byte, c.Ch.Size())
	paint[0], paint[1], paint[2] = 255, 255, 255
	require.NoError(t, c.SetPaint(paint))
	c.Step(0)
	buf, _ := c.Ch.Read()
	assert.LessOrEqual(t, int(buf[0])+int(buf[1])+int(buf[2]), 255)

	c.mu.Lock()
	stored := c.paint[0]
	c.mu.Unlock()
	assert.EqualValues(t, 255, stored)
}

func TestWiringTestRestoresMode(t *testing.T) {
	c, err := InitCore(testOptions())
	require.NoError(t, err)

	require.NoError(t, c.RunTest(tests.RGBTest, 1))
	assert.Equal(t, render.ModePaint, c.Mgr.Mode())
	for i := 0; i < 3; i++ {
		c.Step(0)
		buf, _ := c.Ch.Read()
		assert.EqualValues(t, 255, buf[i])
	}
	c.Step(0)
	assert.Equal(t, render.ModePattern, c.Mgr.Mode())

	codes := []string{}
	for _, d := range c.Diag.Recent() {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []string{"TEST.RUNNING", "TEST.DONE"}, codes)

	assert.Error(t, c.RunTest("plane_z", 1))
}

func TestPlaylistDrivesManager(t *testing.T) {
	o := testOptions()
	o.Playlist = &sequence.Program{Loop: true, Clips: []sequence.Clip{
		{Drawer: "Off", DurationS: 1},
		{Drawer: "Bzr", DurationS: 1},
	}}
	c, err := InitCore(o)
	require.NoError(t, err)
	assert.Equal(t, "Off", c.Mgr.Active())
	c.Step(1)
	assert.Equal(t, "Bzr", c.Mgr.Active())
	c.Step(1)
	assert.Equal(t, "Off", c.Mgr.Active())
}

func TestCustomDrawersLoadAndReportFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "waves.yaml"), []byte(custom.ExampleYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(`name: Broken
code: |
  function draw() error("nope") end
`), 0o644))

	o := testOptions()
	o.CustomDir = dir
	o.CustomTimeout = 100 * time.Millisecond
	o.StartDrawer = "Broken"
	c, err := InitCore(o)
	require.NoError(t, err)
	defer c.Close()

	assert.Contains(t, c.Mgr.Status().Drawers, "Sine Waves")
	c.Step(0.025)
	c.Step(0.025)

	recent := c.Diag.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "CUSTOM.DRAW_FAILED", recent[0].Code)
}

func TestCustomWithoutDrawIsNotRegistered(t *testing.T) {
	c, err := InitCore(testOptions())
	require.NoError(t, err)
	defer c.Close()
	before := c.Mgr.Status().Drawers

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "paint.yaml"), []byte(`name: NoDraw
code: |
  function paint() return {} end
`), 0o644))

	ds, err := LoadCustom(c.Mgr, dir)
	require.NoError(t, err)
	assert.Empty(t, ds)
	assert.Equal(t, before, c.Mgr.Status().Drawers)
	_, ok := c.Mgr.Drawer("NoDraw")
	assert.False(t, ok)
}
