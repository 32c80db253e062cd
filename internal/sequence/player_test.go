package sequence

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEnvelopeEval(t *testing.T) {
	env := Envelope{Keys: []Keyframe{
		{T: 0, V: 0, Ease: "linear"},
		{T: 10, V: 10, Ease: "linear"},
	}}
	if v := env.Eval(-1); v != 0 {
		t.Fatalf("expected 0 before start, got %v", v)
	}
	if v := env.Eval(0); v != 0 {
		t.Fatalf("expected 0 at t=0, got %v", v)
	}
	if v := env.Eval(5); v != 5 {
		t.Fatalf("expected 5 at t=5, got %v", v)
	}
	if v := env.Eval(10); v != 10 {
		t.Fatalf("expected 10 at t=10, got %v", v)
	}
	if v := env.Eval(11); v != 10 {
		t.Fatalf("expected 10 after end, got %v", v)
	}
}

func TestEnvelopeEasing(t *testing.T) {
	env := Envelope{Keys: []Keyframe{{T: 0, V: 0, Ease: "smooth"}, {T: 1, V: 1}, {T: 2, V: 3}}}
	if v := env.Eval(0.25); v != 0.15625 {
		t.Fatalf("smoothstep at 0.25: got %v", v)
	}
	if v := env.Eval(1.5); v != 2 {
		t.Fatalf("second segment linear: got %v", v)
	}
}

type recorder struct {
	log      []string
	settings []map[string]float64
	curated  []int
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		SetDrawer: func(name string) error {
			r.log = append(r.log, "Set:"+name)
			if name == "missing" {
				return errors.New("unknown drawer")
			}
			return nil
		},
		UpdateSettings: func(p map[string]float64) error {
			r.settings = append(r.settings, p)
			return nil
		},
		Randomize: func() error {
			r.log = append(r.log, "Randomize")
			return nil
		},
		SetCurated: func(i int) { r.curated = append(r.curated, i) },
	}
}

func TestPlaylistSwitchesClips(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(rec.hooks())
	pal := 3
	prog := Program{
		Loop: true,
		Clips: []Clip{
			{Name: "A", Drawer: "GrayScott", DurationS: 2, Randomize: true},
			{Name: "B", Drawer: "AlienBlob", DurationS: 1, Palette: &pal, Settings: map[string]float64{"speed": 10}},
		},
	}
	if err := p.Load(prog); err != nil {
		t.Fatalf("load: %v", err)
	}
	p.Start()
	p.Tick(1.0)
	if s := p.Status(); s.Clip != 0 || s.Drawer != "GrayScott" {
		t.Fatalf("still expected clip A, got %+v", s)
	}
	p.Tick(1.0) // A ends
	p.Tick(1.0) // B ends, loops
	want := []string{"Set:GrayScott", "Randomize", "Set:AlienBlob", "Set:GrayScott", "Randomize"}
	if len(rec.log) != len(want) {
		t.Fatalf("unexpected log: %#v", rec.log)
	}
	for i := range want {
		if rec.log[i] != want[i] {
			t.Fatalf("unexpected log: %#v", rec.log)
		}
	}
	if len(rec.curated) != 1 || rec.curated[0] != 3 {
		t.Fatalf("curated palette not applied: %v", rec.curated)
	}
	if len(rec.settings) != 1 || rec.settings[0]["speed"] != 10 {
		t.Fatalf("clip settings not applied: %v", rec.settings)
	}
}

func TestPlaylistEndsWithoutLoop(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(rec.hooks())
	if err := p.Load(Program{Clips: []Clip{{Drawer: "Off", DurationS: 1}}}); err != nil {
		t.Fatal(err)
	}
	p.Start()
	p.Tick(1.5)
	if s := p.Status(); s.State != Idle {
		t.Fatalf("expected idle after last clip, got %s", s.State)
	}
	p.Tick(1)
	if len(rec.log) != 1 {
		t.Fatalf("no clip changes expected after finish: %#v", rec.log)
	}
}

func TestPlaylistEnvelopesDriveSettings(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(rec.hooks())
	prog := Program{Clips: []Clip{{
		Drawer:    "AlienBlob",
		DurationS: 10,
		Params: map[string]Envelope{
			"zoom": {Keys: []Keyframe{{T: 10, V: 100}, {T: 0, V: 0}}},
		},
	}}}
	if err := p.Load(prog); err != nil {
		t.Fatal(err)
	}
	p.Start()
	p.Tick(5)
	if len(rec.settings) != 1 || rec.settings[0]["zoom"] != 50 {
		t.Fatalf("expected zoom 50 from sorted keys, got %v", rec.settings)
	}
}

func TestPauseHoldsTime(t *testing.T) {
	p := NewPlayer((&recorder{}).hooks())
	if err := p.Load(Program{Clips: []Clip{{Drawer: "Off", DurationS: 5}}}); err != nil {
		t.Fatal(err)
	}
	p.Start()
	p.Tick(1)
	p.Pause()
	p.Tick(10)
	if s := p.Status(); s.State != Paused || s.LocalS != 1 {
		t.Fatalf("paused player advanced: %+v", s)
	}
	p.Start()
	if s := p.Status(); s.State != Running || s.LocalS != 1 {
		t.Fatalf("resume should keep position: %+v", s)
	}
}

func TestMissingDrawerKeepsPlaying(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(rec.hooks())
	_ = p.Load(Program{Clips: []Clip{
		{Drawer: "missing", DurationS: 1, Settings: map[string]float64{"x": 1}},
		{Drawer: "Off", DurationS: 1},
	}})
	p.Start()
	if len(rec.settings) != 0 {
		t.Fatalf("settings must not apply to a missing drawer")
	}
	p.Tick(1)
	if s := p.Status(); s.Drawer != "Off" {
		t.Fatalf("expected to move on, got %+v", s)
	}
}

func TestLoadRejects(t *testing.T) {
	p := NewPlayer(Hooks{})
	if err := p.Load(Program{}); !errors.Is(err, ErrEmptyProgram) {
		t.Fatalf("expected ErrEmptyProgram, got %v", err)
	}
	if err := p.Load(Program{Clips: []Clip{{Drawer: "Off"}}}); err == nil {
		t.Fatal("expected zero-duration clip to be rejected")
	}
}

func TestProgramFromYAML(t *testing.T) {
	src := `
loop: true
clips:
  - drawer: Bzr
    duration_s: 30
    randomize: true
  - name: slow blob
    drawer: AlienBlob
    duration_s: 20
    palette: 12
    params:
      zoom:
        keys:
          - {t: 0, v: 20}
          - {t: 20, v: 80, ease: smooth}
`
	var prog Program
	if err := yaml.Unmarshal([]byte(src), &prog); err != nil {
		t.Fatal(err)
	}
	if !prog.Loop || len(prog.Clips) != 2 {
		t.Fatalf("bad program: %+v", prog)
	}
	c := prog.Clips[1]
	if c.Palette == nil || *c.Palette != 12 || len(c.Params["zoom"].Keys) != 2 {
		t.Fatalf("bad clip: %+v", c)
	}
}
